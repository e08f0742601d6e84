package signature

import (
	"fmt"
	"reflect"
	"strings"
)

// Class is a named, ordered set of methods. Methods are already bound to
// their receiver, so their signatures never include it.
type Class struct {
	name    string
	doc     string
	order   []string
	methods map[string]*Func
}

// NewClass creates a Class. A later method with the same name as an earlier
// one replaces it in place.
func NewClass(name string, methods ...*Func) *Class {
	c := &Class{name: name, methods: make(map[string]*Func, len(methods))}
	for _, m := range methods {
		c.set(m)
	}
	return c
}

func (c *Class) set(m *Func) {
	if _, ok := c.methods[m.Name()]; !ok {
		c.order = append(c.order, m.Name())
	}
	c.methods[m.Name()] = m
}

// WithClassDoc returns a copy of c carrying doc.
func (c *Class) WithClassDoc(doc string) *Class {
	out := c.clone()
	out.doc = doc
	return out
}

// Name returns the class name.
func (c *Class) Name() string { return c.name }

// Doc returns the class documentation.
func (c *Class) Doc() string { return c.doc }

// Method looks a method up by name.
func (c *Class) Method(name string) (*Func, bool) {
	m, ok := c.methods[name]
	return m, ok
}

// Methods returns the methods in declaration order.
func (c *Class) Methods() []*Func {
	out := make([]*Func, len(c.order))
	for i, name := range c.order {
		out[i] = c.methods[name]
	}
	return out
}

// MethodNames returns the method names in declaration order.
func (c *Class) MethodNames() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// With returns a copy of c with the given methods added or replaced. c is
// left untouched.
func (c *Class) With(methods ...*Func) *Class {
	out := c.clone()
	for _, m := range methods {
		out.set(m)
	}
	return out
}

func (c *Class) clone() *Class {
	out := &Class{
		name:    c.name,
		doc:     c.doc,
		order:   make([]string, len(c.order)),
		methods: make(map[string]*Func, len(c.methods)),
	}
	copy(out.order, c.order)
	for k, v := range c.methods {
		out.methods[k] = v
	}
	return out
}

// Call invokes a method by name.
func (c *Class) Call(method string, args []any, kwargs map[string]any) (any, error) {
	m, ok := c.methods[method]
	if !ok {
		return nil, fmt.Errorf("%s has no method %q", c.name, method)
	}
	return m.Call(args, kwargs)
}

// IsPrivate reports whether a method name is private by convention, that
// is, starts with an underscore.
func IsPrivate(name string) bool {
	return strings.HasPrefix(name, "_")
}

// ClassOf derives a Class from the exported method set of a Go value. A
// *Class is returned as is.
func ClassOf(v any) (*Class, error) {
	if c, ok := v.(*Class); ok {
		if c == nil {
			return nil, &SignatureError{Reason: "nil class"}
		}
		return c, nil
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, &SignatureError{Reason: "cannot derive a class from nil"}
	}
	t := rv.Type()
	name := t.Name()
	if t.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, &SignatureError{Callable: t.String(), Reason: "nil receiver"}
		}
		name = t.Elem().Name()
	}
	if name == "" {
		name = t.String()
	}

	c := NewClass(name)
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		f, err := FromFunc(m.Name, rv.Method(i).Interface())
		if err != nil {
			return nil, err
		}
		c.set(f)
	}
	return c, nil
}
