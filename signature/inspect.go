package signature

import (
	"fmt"
	"reflect"
)

// Signer is implemented by callables that declare their own signature.
type Signer interface {
	Signature() Signature
}

// Inspect returns the signature of a callable. Values implementing Signer
// report their declared signature; native Go functions are introspected
// through reflect, with parameters named arg0, arg1, and so on. Anything
// else fails with a *SignatureError.
func Inspect(v any) (Signature, error) {
	switch c := v.(type) {
	case nil:
		return Signature{}, &SignatureError{Reason: "cannot inspect nil"}
	case *Func:
		if c == nil {
			return Signature{}, &SignatureError{Reason: "cannot inspect a nil *Func"}
		}
		return c.Signature(), nil
	case Signer:
		if isNil(c) {
			return Signature{}, &SignatureError{Callable: fmt.Sprintf("%T", v), Reason: "cannot inspect a nil Signer"}
		}
		return c.Signature(), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func {
		return Signature{}, &SignatureError{
			Callable: fmt.Sprintf("%T", v),
			Reason:   "value is not callable",
		}
	}
	if rv.IsNil() {
		return Signature{}, &SignatureError{
			Callable: rv.Type().String(),
			Reason:   "function has no accessible declaration",
		}
	}
	return reflectSignature(rv.Type(), nil)
}

// OfType derives a signature from a Go function type, naming parameters
// after names and falling back to arg0, arg1, and so on. It follows the
// same rules as FromFunc.
func OfType(t reflect.Type, names ...string) (Signature, error) {
	if t == nil || t.Kind() != reflect.Func {
		return Signature{}, &SignatureError{Callable: fmt.Sprint(t), Reason: "not a function type"}
	}
	return reflectSignature(t, names)
}
