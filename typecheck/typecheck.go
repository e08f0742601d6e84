// Package typecheck wraps callables so that every call validates its
// arguments and result against declared constraints.
//
// Only constrained parameters are checked; a parameter without a constraint
// accepts any value. Errors returned by the wrapped callable itself are
// passed through untouched.
package typecheck

import (
	"errors"
	"sort"
	"strings"

	"github.com/GoCodeAlone/conform/signature"
)

// Tag marks Funcs produced by this package, see signature.Func.Tag.
const Tag = "typecheck"

// Func wraps f with the constraints of its own signature.
func Func(f *signature.Func) *signature.Func {
	inner := Original(f)
	return Against(inner.Signature(), inner)
}

// Against wraps f so that calls are bound to sig and checked against sig's
// constraints before and after f runs. The wrapper reports f's own name,
// doc and signature. If f was already produced by this package, its
// original is wrapped instead, so checks are never stacked.
func Against(sig signature.Signature, f *signature.Func) *signature.Func {
	inner := Original(f)
	name := inner.Name()
	return signature.Wrap(inner, Tag, func(args []any, kwargs map[string]any) (any, error) {
		call, err := signature.Bind(sig, args, kwargs)
		if err != nil {
			var be *signature.ArgumentBindingError
			if errors.As(err, &be) {
				be.Func = name
			}
			return nil, err
		}
		if err := checkArguments(name, sig, call); err != nil {
			return nil, err
		}

		ret, err := inner.Call(args, kwargs)
		if err != nil {
			return ret, err
		}
		if c, ok := sig.Return(); ok && !c.Check(ret) {
			return nil, &ReturnTypeError{Func: name, Expected: c, Value: ret}
		}
		return ret, nil
	})
}

// checkArguments tests every constrained parameter. A constraint on a
// variadic parameter applies to each collected value.
func checkArguments(name string, sig signature.Signature, call *signature.BoundCall) error {
	for _, p := range sig.Params() {
		if p.Constraint == nil {
			continue
		}
		switch p.Kind {
		case signature.VarPositional:
			for _, v := range call.Varargs {
				if !p.Constraint.Check(v) {
					return &ArgumentTypeError{Func: name, Param: p.Name, Value: v, Expected: p.Constraint}
				}
			}
		case signature.VarKeyword:
			keys := make([]string, 0, len(call.Kwargs))
			for k := range call.Kwargs {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if v := call.Kwargs[k]; !p.Constraint.Check(v) {
					return &ArgumentTypeError{Func: name, Param: p.Name + "[" + k + "]", Value: v, Expected: p.Constraint}
				}
			}
		default:
			v := call.Value(p.Name)
			if !p.Constraint.Check(v) {
				return &ArgumentTypeError{Func: name, Param: p.Name, Value: v, Expected: p.Constraint}
			}
		}
	}
	return nil
}

// Original strips the layers added by this package and returns the
// callable they wrap.
func Original(f *signature.Func) *signature.Func {
	for f.Tag() == Tag && f.Unwrap() != nil {
		f = f.Unwrap()
	}
	return f
}

// IsChecked reports whether f was produced by this package.
func IsChecked(f *signature.Func) bool {
	return f.Tag() == Tag
}

// Class returns a copy of c whose methods are type checked against their
// own signatures. Special methods, named with a double underscore prefix,
// are left alone; single underscore helpers are checked.
func Class(c *signature.Class) *signature.Class {
	var wrapped []*signature.Func
	for _, m := range c.Methods() {
		if isSpecial(m.Name()) {
			continue
		}
		wrapped = append(wrapped, Func(m))
	}
	return c.With(wrapped...)
}

func isSpecial(name string) bool {
	return strings.HasPrefix(name, "__")
}

// Typecheck wraps a *signature.Func or every non-special method of a
// *signature.Class. Any other value fails with ErrUnsupported.
func Typecheck(item any) (any, error) {
	switch v := item.(type) {
	case *signature.Func:
		if v != nil {
			return Func(v), nil
		}
	case *signature.Class:
		if v != nil {
			return Class(v), nil
		}
	}
	return nil, ErrUnsupported
}
