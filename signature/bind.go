package signature

import "sort"

// BoundCall maps one invocation's arguments onto a signature's parameters.
// It lives for a single call.
type BoundCall struct {
	sig    Signature
	values map[string]any

	// Varargs holds positional arguments collected by the VarPositional
	// parameter, Kwargs the keyword arguments collected by VarKeyword.
	Varargs []any
	Kwargs  map[string]any
}

// Signature returns the signature the call was bound to.
func (b *BoundCall) Signature() Signature { return b.sig }

// Get returns the value bound to a named parameter. For the variadic
// parameters it returns the collected []any or map[string]any.
func (b *BoundCall) Get(name string) (any, bool) {
	v, ok := b.values[name]
	return v, ok
}

// Value is Get without the presence flag.
func (b *BoundCall) Value(name string) any {
	return b.values[name]
}

// Arguments returns a copy of the name to value mapping, variadic buckets
// included under their parameter names.
func (b *BoundCall) Arguments() map[string]any {
	out := make(map[string]any, len(b.values))
	for k, v := range b.values {
		out[k] = v
	}
	return out
}

// Bind assigns args and kwargs to the parameters of sig. Positional
// arguments fill positional parameters in order, the rest go to the
// variadic bucket. Keyword arguments fill parameters by name, the unknown
// ones go to the variadic keyword bucket. Omitted parameters take their
// defaults. The first violated rule is reported as an *ArgumentBindingError.
func Bind(sig Signature, args []any, kwargs map[string]any) (*BoundCall, error) {
	return bind("", sig, args, kwargs)
}

func bind(fn string, sig Signature, args []any, kwargs map[string]any) (*BoundCall, error) {
	b := &BoundCall{
		sig:    sig,
		values: make(map[string]any, len(sig.params)),
	}

	var positional []Param
	for _, p := range sig.params {
		if p.Kind == Positional {
			positional = append(positional, p)
		}
	}

	star, hasStar := sig.has(VarPositional)
	starstar, hasStarStar := sig.has(VarKeyword)

	n := len(args)
	if n > len(positional) {
		if !hasStar {
			return nil, &ArgumentBindingError{Func: fn, Rule: TooManyPositional, Want: len(positional), Got: n}
		}
		n = len(positional)
	}
	for i := 0; i < n; i++ {
		b.values[positional[i].Name] = args[i]
	}
	if hasStar {
		b.Varargs = append([]any{}, args[n:]...)
		b.values[star.Name] = b.Varargs
	}
	if hasStarStar {
		b.Kwargs = make(map[string]any)
		b.values[starstar.Name] = b.Kwargs
	}

	// Sorted so the reported keyword is deterministic.
	keys := make([]string, 0, len(kwargs))
	for k := range kwargs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p, ok := sig.Param(k)
		if ok && (p.Kind == Positional || p.Kind == KeywordOnly) {
			if _, dup := b.values[k]; dup {
				return nil, &ArgumentBindingError{Func: fn, Rule: DuplicateArgument, Param: k}
			}
			b.values[k] = kwargs[k]
			continue
		}
		if !hasStarStar {
			return nil, &ArgumentBindingError{Func: fn, Rule: UnexpectedKeyword, Param: k}
		}
		b.Kwargs[k] = kwargs[k]
	}

	for _, p := range sig.params {
		if p.Kind != Positional && p.Kind != KeywordOnly {
			continue
		}
		if _, ok := b.values[p.Name]; ok {
			continue
		}
		if !p.HasDefault {
			return nil, &ArgumentBindingError{Func: fn, Rule: MissingArgument, Param: p.Name}
		}
		b.values[p.Name] = p.Default
	}
	return b, nil
}
