package typecheck

import (
	"errors"
	"fmt"

	"github.com/GoCodeAlone/conform/signature"
)

// ErrUnsupported is returned by Typecheck for values that are neither a
// *signature.Func nor a *signature.Class.
var ErrUnsupported = errors.New("typecheck: can only typecheck classes and functions")

// ArgumentTypeError is returned when a bound argument fails its declared
// constraint.
type ArgumentTypeError struct {
	// Func is the name of the checked callable.
	Func string

	// Param is the parameter whose value was rejected.
	Param string

	// Value is the offending value.
	Value any

	// Expected is the constraint the value failed.
	Expected signature.Constraint
}

// Error implements the error interface.
func (e *ArgumentTypeError) Error() string {
	return fmt.Sprintf("%s(): argument %s=%v is not of type %s", e.Func, e.Param, e.Value, e.Expected)
}

// ReturnTypeError is returned when a callable's result fails its declared
// return constraint. The callable has already run when this is reported.
type ReturnTypeError struct {
	// Func is the name of the checked callable.
	Func string

	// Expected is the declared return constraint.
	Expected signature.Constraint

	// Value is the value the callable returned.
	Value any
}

// Actual names the dynamic type of the returned value.
func (e *ReturnTypeError) Actual() string { return signature.TypeName(e.Value) }

// Error implements the error interface.
func (e *ReturnTypeError) Error() string {
	return fmt.Sprintf("%s(): return value must be of type %s, not %s", e.Func, e.Expected, e.Actual())
}
