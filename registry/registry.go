// Package registry maps string keys to classes, optionally validating each
// class against a registered contract before it becomes visible.
//
// Registration is meant to happen while the program initialises, either on
// a Registry passed around explicitly or on the process-wide Default:
//
//	func init() {
//	    registry.Register("fight", fightCommand)
//	}
package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GoCodeAlone/conform/conformance"
	"github.com/GoCodeAlone/conform/signature"
)

// Entry describes one registered class.
type Entry struct {
	// ID uniquely identifies this registration. Re-registering a key
	// produces a new ID.
	ID uuid.UUID

	// Key is the lookup key.
	Key string

	// Contract is the name of the contract the class was validated against,
	// empty for plain registrations.
	Contract string

	// Class is the registered class. For validated registrations this is the
	// class returned by conformance.Implements.
	Class *signature.Class

	// RegisteredAt is when the entry was stored.
	RegisteredAt time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry's logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// Registry manages contracts and the classes registered under string keys.
// It is safe for concurrent use. Keys are last-write-wins and entries are
// never removed.
type Registry struct {
	mu        sync.RWMutex
	contracts map[string]*conformance.Contract
	entries   map[string]Entry
	logger    *slog.Logger
	now       func() time.Time
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		contracts: make(map[string]*conformance.Contract),
		entries:   make(map[string]Entry),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterContract adds a contract to the registry. Registering the same
// contract again is a no-op; registering a different contract under an
// existing name is an error.
func (r *Registry) RegisterContract(c *conformance.Contract) error {
	if c == nil {
		return fmt.Errorf("registry: contract is nil")
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("registry: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.contracts[c.Name]; ok {
		if existing != c {
			return fmt.Errorf("registry: contract %q already registered", c.Name)
		}
		return nil
	}
	r.contracts[c.Name] = c
	r.logger.Debug("contract registered", "contract", c.Name, "methods", len(c.Methods))
	return nil
}

// ContractFor returns a registered contract by name.
func (r *Registry) ContractFor(name string) (*conformance.Contract, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contracts[name]
	return c, ok
}

// Contracts returns the sorted names of all registered contracts.
func (r *Registry) Contracts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.contracts))
	for name := range r.contracts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register stores k under key, replacing any earlier registration.
func (r *Registry) Register(key string, k *signature.Class) (Entry, error) {
	return r.store(key, "", k)
}

// Implement validates k against the named contract and stores the
// resulting class under key. A class that does not conform is never
// stored.
func (r *Registry) Implement(key, contract string, k *signature.Class, opts ...conformance.Option) (Entry, error) {
	c, ok := r.ContractFor(contract)
	if !ok {
		return Entry{}, fmt.Errorf("registry: %q is not a registered contract", contract)
	}
	opts = append([]conformance.Option{conformance.WithLogger(r.logger)}, opts...)
	checked, err := conformance.Implements(c, k, opts...)
	if err != nil {
		return Entry{}, fmt.Errorf("registry: %s: %w", key, err)
	}
	return r.store(key, contract, checked)
}

func (r *Registry) store(key, contract string, k *signature.Class) (Entry, error) {
	if key == "" {
		return Entry{}, fmt.Errorf("registry: key is required")
	}
	if k == nil {
		return Entry{}, fmt.Errorf("registry: class for %q is nil", key)
	}

	e := Entry{
		ID:           uuid.New(),
		Key:          key,
		Contract:     contract,
		Class:        k,
		RegisteredAt: r.now(),
	}

	r.mu.Lock()
	_, replaced := r.entries[key]
	r.entries[key] = e
	r.mu.Unlock()

	r.logger.Info("class registered", "key", key, "class", k.Name(), "contract", contract, "replaced", replaced)
	return e, nil
}

// Lookup returns the class registered under key.
func (r *Registry) Lookup(key string) (*signature.Class, bool) {
	e, ok := r.Entry(key)
	return e.Class, ok
}

// Entry returns the full entry registered under key.
func (r *Registry) Entry(key string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[key]
	return e, ok
}

// Keys returns all registered keys, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of registered keys.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Decorator returns a function that registers a class under key and hands
// it back unchanged, so registration can be attached where the class is
// declared. It panics if the class cannot be stored.
//
//	var fight = commands.Decorator("fight")(newFightCommand())
func (r *Registry) Decorator(key string) func(*signature.Class) *signature.Class {
	return func(k *signature.Class) *signature.Class {
		if _, err := r.Register(key, k); err != nil {
			panic(err)
		}
		return k
	}
}

// Default is the process-wide registry used by the package-level helpers.
var Default = New()

// Register stores k under key in Default.
func Register(key string, k *signature.Class) (Entry, error) {
	return Default.Register(key, k)
}

// Lookup returns the class registered under key in Default.
func Lookup(key string) (*signature.Class, bool) {
	return Default.Lookup(key)
}
