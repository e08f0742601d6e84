package conform

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/GoCodeAlone/conform/config"
	"github.com/GoCodeAlone/conform/conformance"
	"github.com/GoCodeAlone/conform/dynamic"
	"github.com/GoCodeAlone/conform/registry"
	"github.com/GoCodeAlone/conform/signature"
)

// Builder provides a fluent API for assembling a registry from contracts
// and classes declared in code, in configuration, or in interpreted Go
// source.
//
//	reg, err := conform.NewBuilder().
//	    WithConfigPath("conform.yaml").
//	    Build()
type Builder struct {
	logger   *slog.Logger
	cfg      *config.Config
	source   config.ConfigSource
	loader   *dynamic.Loader
	registry *registry.Registry

	contracts []*conformance.Contract
	classes   []classBinding
}

type classBinding struct {
	key      string
	contract string
	class    *signature.Class
	opts     []conformance.Option
}

// NewBuilder creates a Builder with nothing configured.
func NewBuilder() *Builder {
	return &Builder{
		contracts: make([]*conformance.Contract, 0),
		classes:   make([]classBinding, 0),
	}
}

// WithLogger sets the logger handed to the registry and loader.
// If not called, Build uses slog.Default().
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithConfig adds declarations from an already loaded config. Relative
// implementation sources resolve against its ConfigDir.
func (b *Builder) WithConfig(cfg *config.Config) *Builder {
	b.cfg = cfg
	return b
}

// WithConfigPath reads declarations from a YAML file during Build.
func (b *Builder) WithConfigPath(path string) *Builder {
	return b.WithConfigSource(config.NewFileSource(path))
}

// WithConfigSource reads declarations from src during Build. They override
// declarations from WithConfig with the same contract name or key.
func (b *Builder) WithConfigSource(src config.ConfigSource) *Builder {
	b.source = src
	return b
}

// WithContract registers a contract declared in code.
func (b *Builder) WithContract(c *conformance.Contract) *Builder {
	b.contracts = append(b.contracts, c)
	return b
}

// WithClass registers a class under key. When contract is not empty the
// class must implement the named contract.
func (b *Builder) WithClass(key, contract string, class *signature.Class, opts ...conformance.Option) *Builder {
	b.classes = append(b.classes, classBinding{key: key, contract: contract, class: class, opts: opts})
	return b
}

// WithLoader sets the loader used for implementation sources.
// If not called, Build creates one with the default interpreter pool.
func (b *Builder) WithLoader(l *dynamic.Loader) *Builder {
	b.loader = l
	return b
}

// WithRegistry makes Build populate reg instead of a new registry.
func (b *Builder) WithRegistry(reg *registry.Registry) *Builder {
	b.registry = reg
	return b
}

// Build is BuildContext with a background context.
func (b *Builder) Build() (*registry.Registry, error) {
	return b.BuildContext(context.Background())
}

// BuildContext registers every contract, then loads, validates and
// registers every class. Contracts declared in code come first, classes
// declared in configuration before classes declared in code. The first
// failure aborts the build.
func (b *Builder) BuildContext(ctx context.Context) (*registry.Registry, error) {
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := b.registry
	if reg == nil {
		reg = registry.New(registry.WithLogger(logger))
	}

	cfg := b.cfg
	if b.source != nil {
		loaded, err := b.source.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("conform: load %s: %w", b.source.Name(), err)
		}
		if hash, err := b.source.Hash(ctx); err == nil {
			logger.Debug("config loaded", "source", b.source.Name(), "hash", hash)
		}
		cfg = config.DeepMergeConfigs(cfg, loaded)
	}

	for _, c := range b.contracts {
		if err := reg.RegisterContract(c); err != nil {
			return nil, fmt.Errorf("conform: %w", err)
		}
	}

	if cfg != nil {
		if err := b.applyConfig(ctx, reg, cfg, logger); err != nil {
			return nil, err
		}
	}

	for _, cb := range b.classes {
		if err := bind(reg, cb); err != nil {
			return nil, fmt.Errorf("conform: %w", err)
		}
	}
	return reg, nil
}

func (b *Builder) applyConfig(ctx context.Context, reg *registry.Registry, cfg *config.Config, logger *slog.Logger) error {
	contracts, err := cfg.BuildContracts()
	if err != nil {
		return fmt.Errorf("conform: %w", err)
	}
	for _, c := range contracts {
		if err := reg.RegisterContract(c); err != nil {
			return fmt.Errorf("conform: %w", err)
		}
	}

	loader := b.loader
	if loader == nil && len(cfg.Implementations) > 0 {
		loader = dynamic.NewLoader(nil, dynamic.WithLogger(logger))
	}
	for _, impl := range cfg.Implementations {
		if err := ctx.Err(); err != nil {
			return err
		}
		if impl.Key == "" || impl.Source == "" {
			return fmt.Errorf("conform: implementation %q: key and source are required", impl.Key)
		}
		path := impl.Source
		if !filepath.IsAbs(path) && cfg.ConfigDir != "" {
			path = filepath.Join(cfg.ConfigDir, path)
		}
		class, err := loader.LoadFile(impl.Class, path)
		if err != nil {
			return fmt.Errorf("conform: implementation %q: %w", impl.Key, err)
		}
		var opts []conformance.Option
		if impl.CheckMethodArgTypes {
			opts = append(opts, conformance.WithMethodTypeChecks())
		}
		if err := bind(reg, classBinding{key: impl.Key, contract: impl.Contract, class: class, opts: opts}); err != nil {
			return fmt.Errorf("conform: %w", err)
		}
	}
	return nil
}

func bind(reg *registry.Registry, cb classBinding) error {
	if cb.contract == "" {
		_, err := reg.Register(cb.key, cb.class)
		return err
	}
	_, err := reg.Implement(cb.key, cb.contract, cb.class, cb.opts...)
	return err
}
