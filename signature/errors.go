package signature

import "fmt"

// SignatureError is returned when a callable cannot be introspected or a
// declared signature is malformed.
type SignatureError struct {
	// Callable names the value that was inspected, if any.
	Callable string

	// Reason describes what is wrong.
	Reason string
}

// Error implements the error interface.
func (e *SignatureError) Error() string {
	if e.Callable != "" {
		return fmt.Sprintf("signature: %s: %s", e.Callable, e.Reason)
	}
	return "signature: " + e.Reason
}

// BindingRule names the rule a call violated when it could not be bound.
type BindingRule string

const (
	TooManyPositional BindingRule = "too many positional arguments"
	DuplicateArgument BindingRule = "multiple values for argument"
	UnexpectedKeyword BindingRule = "unexpected keyword argument"
	MissingArgument   BindingRule = "missing required argument"
)

// ArgumentBindingError is returned when a call's arguments cannot be mapped
// onto a signature.
type ArgumentBindingError struct {
	// Func is the name of the callable, empty when binding a bare signature.
	Func string

	// Rule is the first rule the call violated.
	Rule BindingRule

	// Param is the offending parameter or keyword name. Empty for
	// TooManyPositional.
	Param string

	// Want and Got are the accepted and supplied positional counts for
	// TooManyPositional.
	Want, Got int
}

// Error implements the error interface.
func (e *ArgumentBindingError) Error() string {
	prefix := "call"
	if e.Func != "" {
		prefix = e.Func + "()"
	}
	if e.Rule == TooManyPositional {
		return fmt.Sprintf("%s: %s: takes %d but %d were given", prefix, e.Rule, e.Want, e.Got)
	}
	return fmt.Sprintf("%s: %s %q", prefix, e.Rule, e.Param)
}
