package conformance

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/GoCodeAlone/conform/signature"
	"github.com/GoCodeAlone/conform/typecheck"
)

// Option configures Implements.
type Option func(*options)

type options struct {
	checkTypes bool
	logger     *slog.Logger
}

// WithMethodTypeChecks makes Implements wrap every method shared with the
// contract so that each call is checked against the contract's constraints.
func WithMethodTypeChecks() Option {
	return func(o *options) {
		o.checkTypes = true
	}
}

// WithLogger sets the logger used to report validation. Defaults to
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Validate checks that k provides every public method of c with a
// compatible signature. All missing methods are reported together in a
// *MissingMethodError; otherwise the first incompatible method in contract
// order is reported as a *SignatureMismatchError.
func Validate(c *Contract, k *signature.Class) error {
	if c == nil {
		return fmt.Errorf("conformance: nil contract")
	}
	if k == nil {
		return fmt.Errorf("conformance: nil candidate for contract %q", c.Name)
	}
	if err := c.Validate(); err != nil {
		return err
	}

	required := c.PublicMethods()
	var missing []string
	for _, m := range required {
		if _, ok := k.Method(m.Name); !ok {
			missing = append(missing, m.Name)
		}
	}
	if len(missing) > 0 {
		return &MissingMethodError{Contract: c.Name, Candidate: k.Name(), Missing: missing}
	}

	for _, m := range required {
		impl, _ := k.Method(m.Name)
		got := typecheck.Original(impl).Signature()
		if err := signature.Compare(m.Signature, got); err != nil {
			return &SignatureMismatchError{
				Contract:  c.Name,
				Candidate: k.Name(),
				Method:    m.Name,
				Want:      m.Signature,
				Got:       got,
				Reason:    err.Error(),
			}
		}
	}
	return nil
}

// Implements validates k against c in a single pass and returns the class
// to use from then on. Without options that is k itself. With
// WithMethodTypeChecks it is a copy of k whose shared methods check every
// call against the contract's constraints; each wrapper sits directly
// around the original method. On failure the returned class is nil, so a
// rejected candidate can never be used.
func Implements(c *Contract, k *signature.Class, opts ...Option) (*signature.Class, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := Validate(c, k); err != nil {
		logger.Debug("candidate rejected", "contract", contractName(c), "candidate", className(k), "error", err)
		return nil, err
	}

	if !o.checkTypes {
		logger.Debug("candidate conforms", "contract", c.Name, "candidate", k.Name())
		return k, nil
	}

	required := c.PublicMethods()
	wrapped := make([]*signature.Func, 0, len(required))
	for _, m := range required {
		impl, _ := k.Method(m.Name)
		wrapped = append(wrapped, typecheck.Against(m.Signature, impl))
	}
	logger.Debug("candidate conforms with method type checks",
		"contract", c.Name, "candidate", k.Name(), "methods", len(wrapped))
	return k.With(wrapped...), nil
}

// MustImplements is like Implements but panics when k does not conform.
// Use it in package-level variable declarations so that a non-conforming
// class stops the program while it initialises.
func MustImplements(c *Contract, k *signature.Class, opts ...Option) *signature.Class {
	out, err := Implements(c, k, opts...)
	if err != nil {
		panic(err)
	}
	return out
}

// Satisfies reports whether v conforms to c: either nominally, through the
// contract's Go interface type, or structurally.
func Satisfies(c *Contract, v any) bool {
	if v == nil || c == nil {
		return false
	}
	if c.InterfaceType != nil && reflect.TypeOf(v).Implements(c.InterfaceType) {
		return true
	}
	k, err := signature.ClassOf(v)
	if err != nil {
		return false
	}
	return Validate(c, k) == nil
}

type conforms struct {
	c *Contract
}

// Conforms is a constraint satisfied by values that conform to c, see
// Satisfies. It lets a method declare that it returns another contract.
func Conforms(c *Contract) signature.Constraint {
	return conforms{c: c}
}

func (x conforms) Check(v any) bool { return Satisfies(x.c, v) }
func (x conforms) String() string {
	if x.c == nil {
		return "<nil contract>"
	}
	return x.c.Name
}

func contractName(c *Contract) string {
	if c == nil {
		return ""
	}
	return c.Name
}

func className(k *signature.Class) string {
	if k == nil {
		return ""
	}
	return k.Name()
}
