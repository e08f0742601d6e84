package conformance

import (
	"fmt"
	"strings"

	"github.com/GoCodeAlone/conform/signature"
)

// MissingMethodError is returned when a candidate lacks methods declared by
// a contract. Missing lists every absent method in contract order.
type MissingMethodError struct {
	Contract  string
	Candidate string
	Missing   []string
}

// Error implements the error interface.
func (e *MissingMethodError) Error() string {
	return fmt.Sprintf("%s is missing methods [%s] from %s",
		e.Candidate, strings.Join(e.Missing, ", "), e.Contract)
}

// SignatureMismatchError is returned when a method shared by a candidate and
// a contract has an incompatible signature.
type SignatureMismatchError struct {
	Contract  string
	Candidate string
	Method    string

	// Want is the contract's signature, Got the candidate's.
	Want signature.Signature
	Got  signature.Signature

	// Reason is the first structural difference found.
	Reason string
}

// Error implements the error interface.
func (e *SignatureMismatchError) Error() string {
	return fmt.Sprintf("%s method %q does not conform to %s: %s; signature should be %s, got %s",
		e.Candidate, e.Method, e.Contract, e.Reason, e.Want, e.Got)
}
