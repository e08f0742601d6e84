package config

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/GoCodeAlone/conform/conformance"
	"github.com/GoCodeAlone/conform/signature"
)

// builtinTypes maps the type names accepted in declarations to constraints.
var builtinTypes = map[string]signature.Constraint{
	"string": signature.Type[string](),
	"str":    signature.Type[string](),
	"int":    signature.Type[int](),
	"float":  signature.Type[float64](),
	"bool":   signature.Type[bool](),
	"bytes":  signature.Type[[]byte](),
	"list":   signature.Type[[]any](),
	"map":    signature.Type[map[string]any](),
	"dict":   signature.Type[map[string]any](),
	"none":   signature.None,
	"any":    signature.Any,
}

// predicateEnv is the environment expr predicates are evaluated in.
type predicateEnv struct {
	Value any `expr:"value"`
}

// BuildContracts turns the contract declarations into contracts, in
// declaration order. Contracts may refer to each other, and to themselves,
// by name in parameter and return types.
func (c *Config) BuildContracts() ([]*conformance.Contract, error) {
	byName := make(map[string]*conformance.Contract, len(c.Contracts))
	contracts := make([]*conformance.Contract, 0, len(c.Contracts))
	for _, cc := range c.Contracts {
		if cc.Name == "" {
			return nil, fmt.Errorf("contract declared without a name")
		}
		if _, dup := byName[cc.Name]; dup {
			return nil, fmt.Errorf("contract %q declared twice", cc.Name)
		}
		if _, builtin := builtinTypes[strings.ToLower(cc.Name)]; builtin {
			return nil, fmt.Errorf("contract %q shadows a builtin type", cc.Name)
		}
		ct := &conformance.Contract{Name: cc.Name, Description: cc.Description}
		byName[cc.Name] = ct
		contracts = append(contracts, ct)
	}

	for i, cc := range c.Contracts {
		ct := contracts[i]
		for _, mc := range cc.Methods {
			m, err := buildMethod(mc, byName)
			if err != nil {
				return nil, fmt.Errorf("contract %s: %w", cc.Name, err)
			}
			ct.Methods = append(ct.Methods, m)
		}
		if err := ct.Validate(); err != nil {
			return nil, err
		}
	}
	return contracts, nil
}

func buildMethod(mc MethodConfig, contracts map[string]*conformance.Contract) (conformance.MethodSignature, error) {
	params := make([]signature.Param, 0, len(mc.Params))
	for _, pc := range mc.Params {
		p, err := buildParam(pc, contracts)
		if err != nil {
			return conformance.MethodSignature{}, fmt.Errorf("method %s: %w", mc.Name, err)
		}
		params = append(params, p)
	}
	ret, err := lookupType(mc.Returns, contracts)
	if err != nil {
		return conformance.MethodSignature{}, fmt.Errorf("method %s: returns: %w", mc.Name, err)
	}
	return conformance.Method(mc.Name, ret, params...)
}

func buildParam(pc ParamConfig, contracts map[string]*conformance.Contract) (signature.Param, error) {
	kind, err := signature.ParseKind(pc.Kind)
	if err != nil {
		return signature.Param{}, fmt.Errorf("param %s: %w", pc.Name, err)
	}
	p := signature.Param{Name: pc.Name, Kind: kind}

	if pc.HasDefault() {
		var def any
		if err := pc.Default.Decode(&def); err != nil {
			return signature.Param{}, fmt.Errorf("param %s: default: %w", pc.Name, err)
		}
		p.HasDefault = true
		p.Default = def
	}

	typ, err := lookupType(pc.Type, contracts)
	if err != nil {
		return signature.Param{}, fmt.Errorf("param %s: %w", pc.Name, err)
	}
	if pc.Expr == "" {
		p.Constraint = typ
		return p, nil
	}
	pred, err := Predicate(pc.Expr)
	if err != nil {
		return signature.Param{}, fmt.Errorf("param %s: %w", pc.Name, err)
	}
	if typ == nil {
		p.Constraint = pred
	} else {
		p.Constraint = signature.AllOf(typ, pred)
	}
	return p, nil
}

// lookupType resolves a declared type name. An empty name is no constraint.
func lookupType(name string, contracts map[string]*conformance.Contract) (signature.Constraint, error) {
	if name == "" {
		return nil, nil
	}
	if c, ok := builtinTypes[strings.ToLower(name)]; ok {
		return c, nil
	}
	if ct, ok := contracts[name]; ok {
		return conformance.Conforms(ct), nil
	}
	return nil, fmt.Errorf("unknown type %q", name)
}

// Predicate compiles an expr-lang boolean expression over value into a
// constraint. Values the expression fails to evaluate on are rejected.
func Predicate(src string) (signature.Constraint, error) {
	program, err := expr.Compile(src, expr.Env(predicateEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid expression %q: %w", src, err)
	}
	return signature.Predicate(src, evaluator(program)), nil
}

func evaluator(program *vm.Program) func(any) bool {
	return func(v any) bool {
		out, err := expr.Run(program, predicateEnv{Value: v})
		if err != nil {
			return false
		}
		ok, _ := out.(bool)
		return ok
	}
}
