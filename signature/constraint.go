package signature

import (
	"fmt"
	"reflect"
	"strings"
)

// Constraint is a predicate over a value. Checking never modifies the value.
type Constraint interface {
	Check(v any) bool
	String() string
}

type anyConstraint struct{}

func (anyConstraint) Check(any) bool { return true }
func (anyConstraint) String() string { return "any" }

type noneConstraint struct{}

func (noneConstraint) Check(v any) bool { return isNil(v) }
func (noneConstraint) String() string { return "none" }

var (
	// Any accepts every value.
	Any Constraint = anyConstraint{}

	// None accepts only nil, the result of a callable that returns nothing.
	None Constraint = noneConstraint{}
)

type instanceOf struct {
	t reflect.Type
}

// InstanceOf accepts values whose dynamic type is assignable to t. For an
// interface type that means "implements t". Nil values are rejected,
// except by the empty interface which is the same as Any.
func InstanceOf(t reflect.Type) Constraint {
	if t == nil {
		return None
	}
	if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
		return Any
	}
	return instanceOf{t: t}
}

// Type is InstanceOf for the static type T.
func Type[T any]() Constraint {
	return InstanceOf(reflect.TypeOf((*T)(nil)).Elem())
}

func (c instanceOf) Check(v any) bool {
	if v == nil {
		return false
	}
	return reflect.TypeOf(v).AssignableTo(c.t)
}

func (c instanceOf) String() string { return c.t.String() }

// Type returns the type the constraint checks against.
func (c instanceOf) Type() reflect.Type { return c.t }

// TypeOf reports the Go type behind a constraint built by InstanceOf or Type.
func TypeOf(c Constraint) (reflect.Type, bool) {
	if ic, ok := c.(instanceOf); ok {
		return ic.t, true
	}
	return nil, false
}

type predicate struct {
	name string
	fn   func(any) bool
}

// Predicate wraps an arbitrary check. name is used in error messages.
func Predicate(name string, fn func(v any) bool) Constraint {
	return predicate{name: name, fn: fn}
}

func (p predicate) Check(v any) bool { return p.fn(v) }
func (p predicate) String() string { return p.name }

type oneOf []Constraint

// OneOf accepts values satisfying at least one of cs.
func OneOf(cs ...Constraint) Constraint {
	out := make(oneOf, 0, len(cs))
	for _, c := range cs {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

func (o oneOf) Check(v any) bool {
	for _, c := range o {
		if c.Check(v) {
			return true
		}
	}
	return false
}

func (o oneOf) String() string {
	names := make([]string, len(o))
	for i, c := range o {
		names[i] = c.String()
	}
	return strings.Join(names, " | ")
}

type allOf []Constraint

// AllOf accepts values satisfying every one of cs.
func AllOf(cs ...Constraint) Constraint {
	out := make(allOf, 0, len(cs))
	for _, c := range cs {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

func (a allOf) Check(v any) bool {
	for _, c := range a {
		if !c.Check(v) {
			return false
		}
	}
	return true
}

func (a allOf) String() string {
	names := make([]string, len(a))
	for i, c := range a {
		names[i] = c.String()
	}
	return strings.Join(names, " & ")
}

// TypeName describes the dynamic type of v the way constraints name types.
func TypeName(v any) string {
	if isNil(v) {
		return "none"
	}
	return fmt.Sprintf("%T", v)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
