package dynamic

import (
	"fmt"
	"sync"

	"github.com/GoCodeAlone/yaegi/interp"
	"github.com/GoCodeAlone/yaegi/stdlib"
)

// Option configures an InterpreterPool.
type Option func(*InterpreterPool)

// WithAllowedPackages overrides the default import allow-list.
func WithAllowedPackages(pkgs map[string]bool) Option {
	return func(p *InterpreterPool) {
		p.allowedPackages = pkgs
	}
}

// WithGoPath sets the GOPATH for interpreters.
func WithGoPath(path string) Option {
	return func(p *InterpreterPool) {
		p.goPath = path
	}
}

// InterpreterPool hands out yaegi interpreters sharing one configuration.
type InterpreterPool struct {
	mu              sync.Mutex
	allowedPackages map[string]bool
	goPath          string
}

// NewInterpreterPool creates a new pool with optional configuration.
func NewInterpreterPool(opts ...Option) *InterpreterPool {
	p := &InterpreterPool{
		allowedPackages: AllowedPackages,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewInterpreter creates an interpreter with the standard library symbols
// loaded. Imports are restricted before evaluation by ValidateSource, not
// by the interpreter itself.
func (p *InterpreterPool) NewInterpreter() (*interp.Interpreter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	opts := interp.Options{}
	if p.goPath != "" {
		opts.GoPath = p.goPath
	}

	i := interp.New(opts)
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("failed to load stdlib symbols: %w", err)
	}
	return i, nil
}

// IsPackageAllowed checks an import path against the pool's allow-list.
// Blocked packages are refused even when the allow-list names them.
func (p *InterpreterPool) IsPackageAllowed(pkg string) bool {
	if BlockedPackages[pkg] {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.allowedPackages[pkg]
}
