// Package dynamic loads classes from Go source interpreted at runtime.
//
// Every exported top-level function of the source file becomes a method of
// the loaded class. Parameter names and doc comments come from the source,
// parameter and result types from the interpreted functions, so the class
// can be validated against a contract like any other.
package dynamic

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/GoCodeAlone/conform/signature"
)

// Tag marks the panic-recovering layer the loader puts around every
// interpreted method.
const Tag = "dynamic"

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the loader's logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) LoaderOption {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// Loader turns Go source into classes.
type Loader struct {
	pool   *InterpreterPool
	logger *slog.Logger
}

// NewLoader creates a Loader backed by pool. A nil pool gets the defaults.
func NewLoader(pool *InterpreterPool, opts ...LoaderOption) *Loader {
	if pool == nil {
		pool = NewInterpreterPool()
	}
	l := &Loader{pool: pool, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ValidateSource performs a syntax check and verifies that only allowed
// packages are imported, using the default lists.
func ValidateSource(source string) error {
	return validateImports(source, IsPackageAllowed)
}

func validateImports(source string, allowed func(string) bool) error {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "dynamic.go", source, parser.ImportsOnly)
	if err != nil {
		return fmt.Errorf("syntax error: %w", err)
	}
	for _, imp := range f.Imports {
		pkg := strings.Trim(imp.Path.Value, `"`)
		if !allowed(pkg) {
			return fmt.Errorf("import %q is not allowed in dynamic classes", pkg)
		}
	}
	return nil
}

// funcDecl is what the loader needs from a top-level function declaration.
type funcDecl struct {
	name   string
	params []string
	doc    string
}

// declarations parses source and returns the package name, its doc comment
// and the exported top-level functions in source order.
func declarations(source string) (string, string, []funcDecl, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "dynamic.go", source, parser.ParseComments)
	if err != nil {
		return "", "", nil, fmt.Errorf("syntax error: %w", err)
	}

	var decls []funcDecl
	for _, d := range f.Decls {
		fd, ok := d.(*ast.FuncDecl)
		if !ok || fd.Recv != nil || !fd.Name.IsExported() {
			continue
		}
		decl := funcDecl{name: fd.Name.Name, doc: strings.TrimSpace(fd.Doc.Text())}
		for _, field := range fd.Type.Params.List {
			if len(field.Names) == 0 {
				decl.params = append(decl.params, "")
				continue
			}
			for _, n := range field.Names {
				name := n.Name
				if name == "_" {
					name = ""
				}
				decl.params = append(decl.params, name)
			}
		}
		decls = append(decls, decl)
	}
	return f.Name.Name, strings.TrimSpace(f.Doc.Text()), decls, nil
}

// LoadClass validates and evaluates source, then builds a class whose
// methods are the exported top-level functions of the file. The class is
// named name, or after the package when name is empty.
func (l *Loader) LoadClass(name, source string) (*signature.Class, error) {
	if err := validateImports(source, l.pool.IsPackageAllowed); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	pkg, doc, decls, err := declarations(source)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if name == "" {
		name = pkg
	}

	i, err := l.pool.NewInterpreter()
	if err != nil {
		return nil, fmt.Errorf("failed to create interpreter: %w", err)
	}
	if _, err := i.Eval(source); err != nil {
		return nil, fmt.Errorf("failed to evaluate source: %w", err)
	}

	methods := make([]*signature.Func, 0, len(decls))
	for _, d := range decls {
		v, err := i.Eval(pkg + "." + d.name)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to resolve %s: %w", name, d.name, err)
		}
		fn, err := signature.FromFunc(d.name, v.Interface(), d.params...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if d.doc != "" {
			fn = signature.NewFunc(fn.Name(), fn.Signature(), fn.Call, signature.WithDoc(d.doc))
		}
		methods = append(methods, recovering(name, fn))
	}

	class := signature.NewClass(name, methods...)
	if doc != "" {
		class = class.WithClassDoc(doc)
	}
	l.logger.Info("dynamic class loaded", "class", name, "package", pkg, "methods", len(methods))
	return class, nil
}

// LoadFile reads a .go file and loads it as a class. The class is named
// name, or after the file when name is empty.
func (l *Loader) LoadFile(name, path string) (*signature.Class, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return l.LoadClass(name, string(data))
}

// recovering turns panics raised by interpreted code into errors.
func recovering(class string, fn *signature.Func) *signature.Func {
	return signature.Wrap(fn, Tag, func(args []any, kwargs map[string]any) (ret any, err error) {
		defer func() {
			if r := recover(); r != nil {
				ret = nil
				err = fmt.Errorf("panic in %s.%s: %v", class, fn.Name(), r)
			}
		}()
		return fn.Call(args, kwargs)
	})
}
