// Package signature describes callables whose parameters and return values
// carry declared constraints, and binds concrete calls onto them.
//
// A Signature is an ordered list of parameters in four kinds: positional
// (which may also be passed by keyword), a variadic positional bucket,
// keyword-only parameters and a variadic keyword bucket. Each parameter may
// carry a default value and a Constraint. Signatures are immutable once
// built; every accessor hands out a copy.
//
//	sig := signature.MustNew(signature.None,
//	    signature.Pos("i").Is(signature.Type[int]()),
//	)
package signature

import (
	"fmt"
	"strings"
)

// ReturnKey is the key under which Constraints reports the return constraint.
const ReturnKey = "return"

// Kind identifies how a parameter receives its argument.
type Kind int

const (
	// Positional parameters are filled in order and may also be named.
	Positional Kind = iota
	// VarPositional collects positional arguments left over after all
	// positional parameters are filled.
	VarPositional
	// KeywordOnly parameters can only be supplied by name.
	KeywordOnly
	// VarKeyword collects keyword arguments that match no parameter.
	VarKeyword
)

func (k Kind) String() string {
	switch k {
	case Positional:
		return "positional"
	case VarPositional:
		return "varargs"
	case KeywordOnly:
		return "keyword"
	case VarKeyword:
		return "varkw"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps the names produced by Kind.String back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "positional":
		return Positional, nil
	case "varargs", "var_positional":
		return VarPositional, nil
	case "keyword", "keyword_only", "kwonly":
		return KeywordOnly, nil
	case "varkw", "var_keyword", "kwargs":
		return VarKeyword, nil
	}
	return 0, fmt.Errorf("unknown parameter kind %q", s)
}

// Param describes one formal parameter.
type Param struct {
	Name       string
	Kind       Kind
	HasDefault bool
	Default    any

	// Constraint is checked against the bound value when the callable is
	// type checked. Nil means the parameter is not checked.
	Constraint Constraint
}

// Pos declares a required positional parameter.
func Pos(name string) Param { return Param{Name: name, Kind: Positional} }

// PosDefault declares a positional parameter with a default value.
func PosDefault(name string, def any) Param {
	return Param{Name: name, Kind: Positional, HasDefault: true, Default: def}
}

// Star declares the variadic positional bucket.
func Star(name string) Param { return Param{Name: name, Kind: VarPositional} }

// Kw declares a required keyword-only parameter.
func Kw(name string) Param { return Param{Name: name, Kind: KeywordOnly} }

// KwDefault declares a keyword-only parameter with a default value.
func KwDefault(name string, def any) Param {
	return Param{Name: name, Kind: KeywordOnly, HasDefault: true, Default: def}
}

// StarStar declares the variadic keyword bucket.
func StarStar(name string) Param { return Param{Name: name, Kind: VarKeyword} }

// Is returns a copy of p constrained by c.
func (p Param) Is(c Constraint) Param {
	p.Constraint = c
	return p
}

func (p Param) String() string {
	var b strings.Builder
	switch p.Kind {
	case VarPositional:
		b.WriteString("*")
	case VarKeyword:
		b.WriteString("**")
	}
	b.WriteString(p.Name)
	if p.Constraint != nil {
		b.WriteString(": ")
		b.WriteString(p.Constraint.String())
	}
	if p.HasDefault {
		fmt.Fprintf(&b, "=%v", p.Default)
	}
	return b.String()
}

// Signature is an ordered parameter list plus an optional return constraint.
// The zero value takes no arguments and declares no return constraint.
type Signature struct {
	params []Param
	ret    Constraint
}

// New validates params and builds a Signature. ret may be nil when the
// return value is not constrained.
func New(ret Constraint, params ...Param) (Signature, error) {
	if err := validateParams(params); err != nil {
		return Signature{}, err
	}
	ps := make([]Param, len(params))
	copy(ps, params)
	return Signature{params: ps, ret: ret}, nil
}

// MustNew is like New but panics on an invalid declaration. It is meant for
// package-level declarations.
func MustNew(ret Constraint, params ...Param) Signature {
	sig, err := New(ret, params...)
	if err != nil {
		panic(err)
	}
	return sig
}

func validateParams(params []Param) error {
	seen := make(map[string]bool, len(params))
	var (
		sawDefault bool
		sawStar    bool
		sawKwOnly  bool
		sawKwargs  bool
	)
	for i, p := range params {
		if p.Name == "" {
			return &SignatureError{Reason: fmt.Sprintf("parameter %d has no name", i)}
		}
		if seen[p.Name] {
			return &SignatureError{Reason: fmt.Sprintf("duplicate parameter %q", p.Name)}
		}
		seen[p.Name] = true
		if sawKwargs {
			return &SignatureError{Reason: fmt.Sprintf("parameter %q follows the variadic keyword parameter", p.Name)}
		}
		switch p.Kind {
		case Positional:
			if sawStar || sawKwOnly {
				return &SignatureError{Reason: fmt.Sprintf("positional parameter %q follows a variadic or keyword-only parameter", p.Name)}
			}
			if p.HasDefault {
				sawDefault = true
			} else if sawDefault {
				return &SignatureError{Reason: fmt.Sprintf("required parameter %q follows a parameter with a default", p.Name)}
			}
		case VarPositional:
			if sawStar || sawKwOnly {
				return &SignatureError{Reason: fmt.Sprintf("variadic parameter %q is misplaced", p.Name)}
			}
			if p.HasDefault {
				return &SignatureError{Reason: fmt.Sprintf("variadic parameter %q cannot have a default", p.Name)}
			}
			sawStar = true
		case KeywordOnly:
			sawKwOnly = true
		case VarKeyword:
			if p.HasDefault {
				return &SignatureError{Reason: fmt.Sprintf("variadic keyword parameter %q cannot have a default", p.Name)}
			}
			sawKwargs = true
		default:
			return &SignatureError{Reason: fmt.Sprintf("parameter %q has unknown kind %v", p.Name, p.Kind)}
		}
	}
	return nil
}

// Params returns a copy of the parameter list in declaration order.
func (s Signature) Params() []Param {
	ps := make([]Param, len(s.params))
	copy(ps, s.params)
	return ps
}

// Len returns the number of declared parameters.
func (s Signature) Len() int { return len(s.params) }

// Param looks up a parameter by name.
func (s Signature) Param(name string) (Param, bool) {
	for _, p := range s.params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Return returns the return constraint, if one is declared.
func (s Signature) Return() (Constraint, bool) {
	return s.ret, s.ret != nil
}

// WithReturn returns a copy of s with the return constraint replaced.
func (s Signature) WithReturn(ret Constraint) Signature {
	return Signature{params: s.Params(), ret: ret}
}

// Constraints returns every declared constraint keyed by parameter name. The
// return constraint, if any, is stored under ReturnKey.
func (s Signature) Constraints() map[string]Constraint {
	out := make(map[string]Constraint, len(s.params)+1)
	for _, p := range s.params {
		if p.Constraint != nil {
			out[p.Name] = p.Constraint
		}
	}
	if s.ret != nil {
		out[ReturnKey] = s.ret
	}
	return out
}

func (s Signature) has(kind Kind) (Param, bool) {
	for _, p := range s.params {
		if p.Kind == kind {
			return p, true
		}
	}
	return Param{}, false
}

// String renders the signature as "(a: int, *args, *, reverse=false) -> none".
func (s Signature) String() string {
	parts := make([]string, 0, len(s.params)+1)
	_, star := s.has(VarPositional)
	marked := false
	for _, p := range s.params {
		if p.Kind == KeywordOnly && !star && !marked {
			parts = append(parts, "*")
			marked = true
		}
		parts = append(parts, p.String())
	}
	out := "(" + strings.Join(parts, ", ") + ")"
	if s.ret != nil {
		out += " -> " + s.ret.String()
	}
	return out
}
