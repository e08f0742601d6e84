package signature

import (
	"fmt"
	"reflect"
)

// CallFunc is the calling convention shared by every dynamic callable:
// positional arguments in order plus keyword arguments by name.
type CallFunc func(args []any, kwargs map[string]any) (any, error)

// Func is a named callable with an explicit Signature.
type Func struct {
	name  string
	doc   string
	sig   Signature
	call  CallFunc
	inner *Func
	tag   string
}

// FuncOption configures a Func.
type FuncOption func(*Func)

// WithDoc attaches documentation to a Func.
func WithDoc(doc string) FuncOption {
	return func(f *Func) {
		f.doc = doc
	}
}

// NewFunc creates a Func. fn receives the raw arguments; use Bound when the
// body wants them bound to parameter names.
func NewFunc(name string, sig Signature, fn CallFunc, opts ...FuncOption) *Func {
	f := &Func{name: name, sig: sig, call: fn}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Bound creates a Func whose body receives the call already bound to sig.
func Bound(name string, sig Signature, fn func(call *BoundCall) (any, error), opts ...FuncOption) *Func {
	return NewFunc(name, sig, func(args []any, kwargs map[string]any) (any, error) {
		call, err := bind(name, sig, args, kwargs)
		if err != nil {
			return nil, err
		}
		return fn(call)
	}, opts...)
}

// Wrap returns a Func that keeps the name, doc and signature of inner but
// runs fn instead. tag identifies the wrapping layer, see Tag and Unwrap.
func Wrap(inner *Func, tag string, fn CallFunc) *Func {
	return &Func{
		name:  inner.name,
		doc:   inner.doc,
		sig:   inner.sig,
		call:  fn,
		inner: inner,
		tag:   tag,
	}
}

// Name returns the callable's name.
func (f *Func) Name() string { return f.name }

// Doc returns the callable's documentation.
func (f *Func) Doc() string { return f.doc }

// Signature returns the declared signature.
func (f *Func) Signature() Signature { return f.sig }

// Unwrap returns the Func this one wraps, or nil.
func (f *Func) Unwrap() *Func { return f.inner }

// Tag names the wrapping layer that produced f. Empty for unwrapped funcs.
func (f *Func) Tag() string { return f.tag }

// Call invokes the callable. Errors from the body are returned unchanged.
func (f *Func) Call(args []any, kwargs map[string]any) (any, error) {
	return f.call(args, kwargs)
}

// Invoke calls f with positional arguments only.
func (f *Func) Invoke(args ...any) (any, error) {
	return f.call(args, nil)
}

func (f *Func) String() string {
	return f.name + f.sig.String()
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// FromFunc adapts a native Go function. Its parameters become positional
// parameters named after names (arg0, arg1, ... where names run out), each
// constrained by its Go type; a trailing Go variadic becomes the
// VarPositional bucket. A trailing error result becomes the call's error and
// the remaining result, if any, the return value constrained by its type. A
// function without results declares a None return constraint.
func FromFunc(name string, fn any, names ...string) (*Func, error) {
	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, &SignatureError{Callable: name, Reason: fmt.Sprintf("%T is not a function", fn)}
	}
	sig, err := reflectSignature(rv.Type(), names)
	if err != nil {
		if se, ok := err.(*SignatureError); ok {
			se.Callable = name
		}
		return nil, err
	}
	return NewFunc(name, sig, reflectCall(name, sig, rv)), nil
}

func reflectSignature(t reflect.Type, names []string) (Signature, error) {
	params := make([]Param, t.NumIn())
	for i := range params {
		pname := fmt.Sprintf("arg%d", i)
		if i < len(names) && names[i] != "" {
			pname = names[i]
		}
		in := t.In(i)
		if t.IsVariadic() && i == t.NumIn()-1 {
			params[i] = Star(pname).Is(InstanceOf(in.Elem()))
			continue
		}
		params[i] = Pos(pname).Is(InstanceOf(in))
	}

	var ret Constraint
	outs := t.NumOut()
	if outs > 0 && t.Out(outs-1) == errorType {
		outs--
	}
	switch outs {
	case 0:
		ret = None
	case 1:
		ret = InstanceOf(t.Out(0))
	default:
		ret = Type[[]any]()
	}
	return New(ret, params...)
}

// reflectCall binds the dynamic call then converts it into a reflect call.
func reflectCall(name string, sig Signature, rv reflect.Value) CallFunc {
	t := rv.Type()
	return func(args []any, kwargs map[string]any) (any, error) {
		call, err := bind(name, sig, args, kwargs)
		if err != nil {
			return nil, err
		}
		in := make([]reflect.Value, 0, t.NumIn())
		for i, p := range sig.params {
			if p.Kind == VarPositional {
				for j, v := range call.Varargs {
					arg, err := convertArg(name, p.Name, v, t.In(i).Elem())
					if err != nil {
						return nil, fmt.Errorf("%w (variadic index %d)", err, j)
					}
					in = append(in, arg)
				}
				continue
			}
			arg, err := convertArg(name, p.Name, call.values[p.Name], t.In(i))
			if err != nil {
				return nil, err
			}
			in = append(in, arg)
		}
		return splitResults(rv.Call(in))
	}
}

func convertArg(fn, param string, v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("%s(): cannot use nil as %s for %q", fn, t, param)
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("%s(): cannot use %T as %s for %q", fn, v, t, param)
	}
	return rv, nil
}

func splitResults(out []reflect.Value) (any, error) {
	var err error
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if !out[n-1].IsNil() {
			err = out[n-1].Interface().(error)
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return nil, err
	case 1:
		return out[0].Interface(), err
	}
	vals := make([]any, len(out))
	for i, v := range out {
		vals[i] = v.Interface()
	}
	return vals, err
}
