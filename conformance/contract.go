// Package conformance checks that a class structurally implements a
// contract: every public contract method must exist on the class with a
// compatible signature. Conformance is checked once, when the class is
// bound to the contract, and can optionally install per-call type checks
// on the conforming class.
//
// Go interfaces already give compile-time conformance for Go types. This
// package is for classes that only exist at runtime, such as plugins
// loaded from interpreted source or declared in configuration.
package conformance

import (
	"fmt"
	"reflect"

	"github.com/GoCodeAlone/conform/signature"
)

// Contract is a named set of method signatures with no implementation.
// It is only ever introspected.
type Contract struct {
	// Name identifies the contract (e.g. "Printer").
	Name string

	// Description is a human-readable explanation of the contract.
	Description string

	// InterfaceType is the Go interface the contract mirrors, if any. Values
	// implementing it satisfy Conforms without a structural check.
	InterfaceType reflect.Type

	// Methods lists the required methods in declaration order.
	Methods []MethodSignature
}

// MethodSignature describes a single contract method. Signatures never
// include the receiver.
type MethodSignature struct {
	Name      string
	Signature signature.Signature
}

// Method declares a contract method.
func Method(name string, ret signature.Constraint, params ...signature.Param) (MethodSignature, error) {
	sig, err := signature.New(ret, params...)
	if err != nil {
		return MethodSignature{}, fmt.Errorf("method %s: %w", name, err)
	}
	return MethodSignature{Name: name, Signature: sig}, nil
}

// MustMethod is like Method but panics on an invalid declaration.
func MustMethod(name string, ret signature.Constraint, params ...signature.Param) MethodSignature {
	m, err := Method(name, ret, params...)
	if err != nil {
		panic(err)
	}
	return m
}

// NewContract builds and validates a contract.
func NewContract(name string, methods ...MethodSignature) (*Contract, error) {
	c := &Contract{Name: name, Methods: methods}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// MustContract is like NewContract but panics on an invalid declaration. It
// is meant for package-level contract variables.
func MustContract(name string, methods ...MethodSignature) *Contract {
	c, err := NewContract(name, methods...)
	if err != nil {
		panic(err)
	}
	return c
}

// ContractOf mirrors the Go interface I as a contract. Each interface
// method becomes a contract method whose parameters are constrained by
// their Go types.
func ContractOf[I any]() (*Contract, error) {
	t := reflect.TypeOf((*I)(nil)).Elem()
	if t.Kind() != reflect.Interface {
		return nil, fmt.Errorf("conformance: %s is not an interface type", t)
	}
	c := &Contract{Name: t.Name(), InterfaceType: t}
	if c.Name == "" {
		c.Name = t.String()
	}
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		sig, err := signature.OfType(m.Type)
		if err != nil {
			return nil, fmt.Errorf("conformance: %s.%s: %w", c.Name, m.Name, err)
		}
		c.Methods = append(c.Methods, MethodSignature{Name: m.Name, Signature: sig})
	}
	return c, nil
}

// Validate checks that the contract is well formed: it has a name and no
// duplicate method names.
func (c *Contract) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("conformance: contract name is required")
	}
	seen := make(map[string]bool, len(c.Methods))
	for _, m := range c.Methods {
		if m.Name == "" {
			return fmt.Errorf("conformance: contract %q declares a method without a name", c.Name)
		}
		if seen[m.Name] {
			return fmt.Errorf("conformance: contract %q declares method %q twice", c.Name, m.Name)
		}
		seen[m.Name] = true
	}
	return nil
}

// Method looks a contract method up by name.
func (c *Contract) Method(name string) (MethodSignature, bool) {
	for _, m := range c.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return MethodSignature{}, false
}

// PublicMethods returns the methods a candidate must provide, that is every
// method whose name does not start with an underscore.
func (c *Contract) PublicMethods() []MethodSignature {
	out := make([]MethodSignature, 0, len(c.Methods))
	for _, m := range c.Methods {
		if !signature.IsPrivate(m.Name) {
			out = append(out, m)
		}
	}
	return out
}
