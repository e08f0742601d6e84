package signature

import (
	"errors"
	"reflect"
	"testing"
)

var oldFuncSig = MustNew(nil,
	Pos("positional_arg"),
	PosDefault("arg_with_default", nil),
	Star("varargs"),
	StarStar("kwargs"),
)

func TestBind_OldStyleSignature(t *testing.T) {
	call, err := Bind(oldFuncSig, []any{1, 2, 3, 4}, map[string]any{"a": 5, "b": 6})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if got := call.Value("positional_arg"); got != 1 {
		t.Errorf("positional_arg = %v, want 1", got)
	}
	if got := call.Value("arg_with_default"); got != 2 {
		t.Errorf("arg_with_default = %v, want 2", got)
	}
	if !reflect.DeepEqual(call.Varargs, []any{3, 4}) {
		t.Errorf("varargs = %v, want [3 4]", call.Varargs)
	}
	if !reflect.DeepEqual(call.Kwargs, map[string]any{"a": 5, "b": 6}) {
		t.Errorf("kwargs = %v", call.Kwargs)
	}
	if got, _ := call.Get("varargs"); !reflect.DeepEqual(got, []any{3, 4}) {
		t.Errorf("Get(varargs) = %v", got)
	}
}

func TestBind_AppliesDefaults(t *testing.T) {
	call, err := Bind(oldFuncSig, []any{"x"}, nil)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	v, ok := call.Get("arg_with_default")
	if !ok || v != nil {
		t.Errorf("arg_with_default = %v (present %v), want nil default", v, ok)
	}
	if len(call.Varargs) != 0 || len(call.Kwargs) != 0 {
		t.Errorf("expected empty buckets, got %v and %v", call.Varargs, call.Kwargs)
	}
}

func TestBind_VarargsWithKeywordOnlyDefault(t *testing.T) {
	sig := MustNew(nil, Star("args"), KwDefault("reverse", false))

	call, err := Bind(sig, []any{1, 2, 3}, nil)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if call.Value("reverse") != false {
		t.Errorf("reverse = %v, want false", call.Value("reverse"))
	}

	call, err = Bind(sig, []any{1, 2, 3}, map[string]any{"reverse": true})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if call.Value("reverse") != true {
		t.Errorf("reverse = %v, want true", call.Value("reverse"))
	}
	if len(call.Varargs) != 3 {
		t.Errorf("varargs = %v, want 3 values", call.Varargs)
	}
}

func TestBind_Errors(t *testing.T) {
	single := MustNew(nil, Pos("i"))
	makeList := MustNew(nil, Star("args"), KwDefault("reverse", false))
	kwOnly := MustNew(nil, KwDefault("a", nil), Kw("b"))

	tests := []struct {
		name   string
		sig    Signature
		args   []any
		kwargs map[string]any
		rule   BindingRule
		param  string
	}{
		{"too many positional", single, []any{1, 2}, nil, TooManyPositional, ""},
		{"unexpected keyword", makeList, []any{1, 2, 3}, map[string]any{"donut": true}, UnexpectedKeyword, "donut"},
		{"duplicate", single, []any{1}, map[string]any{"i": 2}, DuplicateArgument, "i"},
		{"missing positional", single, nil, nil, MissingArgument, "i"},
		{"missing keyword-only", kwOnly, nil, map[string]any{"a": 1}, MissingArgument, "b"},
		{"keyword-only passed positionally", kwOnly, []any{1}, map[string]any{"b": 2}, TooManyPositional, ""},
		{"variadic bucket by name", makeList, nil, map[string]any{"args": 1}, UnexpectedKeyword, "args"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Bind(tt.sig, tt.args, tt.kwargs)
			var be *ArgumentBindingError
			if !errors.As(err, &be) {
				t.Fatalf("expected *ArgumentBindingError, got %v", err)
			}
			if be.Rule != tt.rule {
				t.Errorf("rule = %q, want %q", be.Rule, tt.rule)
			}
			if be.Param != tt.param {
				t.Errorf("param = %q, want %q", be.Param, tt.param)
			}
		})
	}
}

func TestBind_TooManyPositionalCounts(t *testing.T) {
	_, err := Bind(MustNew(nil, Pos("a"), Pos("b")), []any{1, 2, 3}, nil)
	var be *ArgumentBindingError
	if !errors.As(err, &be) {
		t.Fatalf("expected *ArgumentBindingError, got %v", err)
	}
	if be.Want != 2 || be.Got != 3 {
		t.Errorf("want/got = %d/%d, expected 2/3", be.Want, be.Got)
	}
	if be.Error() != "call: too many positional arguments: takes 2 but 3 were given" {
		t.Errorf("unexpected message %q", be.Error())
	}
}

func TestBind_KeywordOnlyAllByName(t *testing.T) {
	sig := MustNew(nil, KwDefault("a", nil), Kw("b"))
	call, err := Bind(sig, nil, map[string]any{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	want := map[string]any{"a": 1, "b": 2}
	if got := call.Arguments(); !reflect.DeepEqual(got, want) {
		t.Errorf("Arguments() = %v, want %v", got, want)
	}
}

func TestBind_DoesNotAliasCallerSlices(t *testing.T) {
	args := []any{1, 2, 3}
	call, err := Bind(MustNew(nil, Star("args")), args, nil)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	call.Varargs[0] = "changed"
	if args[0] != 1 {
		t.Error("binding must not share the caller's argument slice")
	}
}
