// Package config declares contracts and their implementations in YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ParamConfig declares one contract method parameter.
type ParamConfig struct {
	Name string `json:"name" yaml:"name"`
	// Kind is positional, varargs, keyword or varkw. Empty means positional.
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`
	// Type names the constraint: a builtin type name or a declared contract.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
	// Default is present only when the parameter declares a default,
	// which may itself be null.
	Default yaml.Node `json:"-" yaml:"default,omitempty"`
	// Expr is an expr-lang predicate over the bound value, named value.
	Expr string `json:"expr,omitempty" yaml:"expr,omitempty"`
}

// HasDefault reports whether the parameter declares a default.
func (p ParamConfig) HasDefault() bool { return p.Default.Kind != 0 }

// MethodConfig declares one contract method.
type MethodConfig struct {
	Name    string        `json:"name" yaml:"name"`
	Params  []ParamConfig `json:"params,omitempty" yaml:"params,omitempty"`
	Returns string        `json:"returns,omitempty" yaml:"returns,omitempty"`
}

// ContractConfig declares a contract.
type ContractConfig struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Methods     []MethodConfig `json:"methods" yaml:"methods"`
}

// ImplementationConfig binds a class loaded from Go source to a contract.
type ImplementationConfig struct {
	Key      string `json:"key" yaml:"key"`
	Contract string `json:"contract,omitempty" yaml:"contract,omitempty"`
	// Source is a path to a Go file, relative to the declaring config file.
	Source string `json:"source" yaml:"source"`
	// Class names the loaded class. Defaults to the source file name
	// without its extension.
	Class               string `json:"class,omitempty" yaml:"class,omitempty"`
	CheckMethodArgTypes bool   `json:"checkMethodArgTypes,omitempty" yaml:"checkMethodArgTypes,omitempty"`
}

// Config is the top-level declaration file.
type Config struct {
	Imports         []string               `json:"imports,omitempty" yaml:"imports,omitempty"`
	Contracts       []ContractConfig       `json:"contracts,omitempty" yaml:"contracts,omitempty"`
	Implementations []ImplementationConfig `json:"implementations,omitempty" yaml:"implementations,omitempty"`

	// ConfigDir is the directory of the loaded file. Empty for parsed data.
	ConfigDir string `json:"-" yaml:"-"`
}

// NewEmptyConfig creates a config with no declarations.
func NewEmptyConfig() *Config {
	return &Config{
		Contracts:       make([]ContractConfig, 0),
		Implementations: make([]ImplementationConfig, 0),
	}
}

// Parse decodes a config document. Imports are left unresolved.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// LoadFromFile loads a config file and everything it imports. Import paths
// and implementation sources are resolved relative to the file that
// declares them. Declarations in the importing file win over imported ones.
func LoadFromFile(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	cfg, err := loadFile(abs, map[string]bool{})
	if err != nil {
		return nil, err
	}
	cfg.ConfigDir = filepath.Dir(abs)
	return cfg, nil
}

func loadFile(path string, loading map[string]bool) (*Config, error) {
	if loading[path] {
		return nil, fmt.Errorf("circular import of %s", path)
	}
	loading[path] = true
	defer delete(loading, path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	dir := filepath.Dir(path)
	cfg.Implementations = resolveSources(cfg.Implementations, dir)

	imports := cfg.Imports
	cfg.Imports = nil
	for _, imp := range imports {
		if !filepath.IsAbs(imp) {
			imp = filepath.Join(dir, imp)
		}
		fragment, err := loadFile(imp, loading)
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", imp, err)
		}
		MergeConfigs(cfg, fragment)
	}
	return cfg, nil
}

// resolveSources returns a copy of impls with relative sources joined to
// dir. An empty dir leaves sources as they are.
func resolveSources(impls []ImplementationConfig, dir string) []ImplementationConfig {
	out := make([]ImplementationConfig, len(impls))
	copy(out, impls)
	if dir == "" {
		return out
	}
	for i := range out {
		if src := out[i].Source; src != "" && !filepath.IsAbs(src) {
			out[i].Source = filepath.Join(dir, src)
		}
	}
	return out
}
