package conform

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GoCodeAlone/conform/config"
	"github.com/GoCodeAlone/conform/conformance"
	"github.com/GoCodeAlone/conform/dynamic"
	"github.com/GoCodeAlone/conform/registry"
	"github.com/GoCodeAlone/conform/signature"
	"github.com/GoCodeAlone/conform/typecheck"
)

const stdoutSource = `package stdout

import "strings"

// Print shouts s n times.
func Print(s string, n int) string {
	return strings.Repeat(strings.ToUpper(s), n)
}
`

const conformYAML = `
contracts:
  - name: Printer
    methods:
      - name: Print
        params:
          - {name: s, type: string}
          - {name: n, type: int, expr: "value > 0"}
        returns: string
implementations:
  - key: stdout
    contract: Printer
    source: plugins/stdout.go
    checkMethodArgTypes: true
  - key: raw
    source: plugins/stdout.go
    class: RawPrinter
`

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "plugins"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "plugins", "stdout.go"), []byte(stdoutSource), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "conform.yaml")
	if err := os.WriteFile(path, []byte(conformYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

type fightCommand struct{}

func (fightCommand) Fight() string { return "I'M FIGHTING" }

var commandContract = conformance.MustContract("Command",
	conformance.MustMethod("Fight", signature.Type[string]()))

func TestBuilder_Empty(t *testing.T) {
	reg, err := NewBuilder().WithLogger(quietLogger()).Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if reg == nil || reg.Len() != 0 {
		t.Fatalf("expected an empty registry, got %v", reg)
	}
}

func TestBuilder_CodeDeclarations(t *testing.T) {
	fight, err := signature.ClassOf(fightCommand{})
	if err != nil {
		t.Fatal(err)
	}
	reg, err := NewBuilder().
		WithLogger(quietLogger()).
		WithContract(commandContract).
		WithClass("fight", "Command", fight, conformance.WithMethodTypeChecks()).
		WithClass("plain", "", fight).
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	entry, ok := reg.Entry("fight")
	if !ok || entry.Contract != "Command" {
		t.Fatalf("expected fight registered against Command, got %+v", entry)
	}
	out, err := entry.Class.Call("Fight", nil, nil)
	if err != nil || out != "I'M FIGHTING" {
		t.Fatalf("Fight() = %v, %v", out, err)
	}
	if plain, _ := reg.Lookup("plain"); plain != fight {
		t.Error("expected plain registration to store the class unchanged")
	}
}

func TestBuilder_RejectsNonConformingClass(t *testing.T) {
	flee := signature.NewClass("FleeCommand",
		signature.NewFunc("Flee", signature.MustNew(nil), func([]any, map[string]any) (any, error) { return nil, nil }))

	_, err := NewBuilder().
		WithLogger(quietLogger()).
		WithContract(commandContract).
		WithClass("flee", "Command", flee).
		Build()
	var mme *conformance.MissingMethodError
	if !errors.As(err, &mme) {
		t.Fatalf("expected missing method error, got %v", err)
	}
	if len(mme.Missing) != 1 || mme.Missing[0] != "Fight" {
		t.Errorf("unexpected missing methods %v", mme.Missing)
	}
}

func TestBuilder_UnknownContract(t *testing.T) {
	fight, _ := signature.ClassOf(fightCommand{})
	_, err := NewBuilder().WithLogger(quietLogger()).WithClass("fight", "Command", fight).Build()
	if err == nil || !strings.Contains(err.Error(), "not a registered contract") {
		t.Fatalf("expected unknown contract error, got %v", err)
	}
}

func TestBuilder_ConfigPath(t *testing.T) {
	path := writeProject(t)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	reg, err := NewBuilder().WithLogger(logger).WithConfigPath(path).Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if got := strings.Join(reg.Contracts(), ","); got != "Printer" {
		t.Errorf("expected Printer contract, got %s", got)
	}
	if got := strings.Join(reg.Keys(), ","); got != "raw,stdout" {
		t.Errorf("expected raw and stdout, got %s", got)
	}

	stdout, _ := reg.Lookup("stdout")
	if stdout.Name() != "stdout" {
		t.Errorf("expected class named after the source file, got %q", stdout.Name())
	}
	out, err := stdout.Call("Print", []any{"hi", 2}, nil)
	if err != nil || out != "HIHI" {
		t.Fatalf("Print() = %v, %v", out, err)
	}
	printFn, _ := stdout.Method("Print")
	if !typecheck.IsChecked(printFn) {
		t.Error("expected checkMethodArgTypes to install type checks")
	}

	_, err = stdout.Call("Print", []any{"hi", 0}, nil)
	var ate *typecheck.ArgumentTypeError
	if !errors.As(err, &ate) || ate.Param != "n" {
		t.Fatalf("expected argument type error for n, got %v", err)
	}

	raw, _ := reg.Lookup("raw")
	if raw.Name() != "RawPrinter" {
		t.Errorf("expected explicit class name, got %q", raw.Name())
	}
	if out, err := raw.Call("Print", []any{"hi", 0}, nil); err != nil || out != "" {
		t.Errorf("expected unchecked call to pass through, got %v, %v", out, err)
	}

	for _, msg := range []string{"config loaded", "dynamic class loaded", "class registered"} {
		if !strings.Contains(logs.String(), msg) {
			t.Errorf("expected %q in logs", msg)
		}
	}
}

func TestBuilder_ConfigOverridesCode(t *testing.T) {
	path := writeProject(t)
	base := &config.Config{
		Contracts: []config.ContractConfig{{Name: "Printer", Methods: []config.MethodConfig{{Name: "Other"}}}},
	}
	reg, err := NewBuilder().WithLogger(quietLogger()).WithConfig(base).WithConfigPath(path).Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	c, _ := reg.ContractFor("Printer")
	if _, ok := c.Method("Print"); !ok {
		t.Error("expected the file's Printer to replace the one from WithConfig")
	}
}

func TestBuilder_ConfigAndConfigPathInDifferentDirs(t *testing.T) {
	path := writeProject(t)

	extraDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(extraDir, "plugins"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(extraDir, "plugins", "extra.go"), []byte(stdoutSource), 0o644); err != nil {
		t.Fatal(err)
	}
	extra := &config.Config{
		Implementations: []config.ImplementationConfig{{Key: "extra", Source: "plugins/extra.go"}},
		ConfigDir:       extraDir,
	}

	reg, err := NewBuilder().WithLogger(quietLogger()).WithConfig(extra).WithConfigPath(path).Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if got := strings.Join(reg.Keys(), ","); got != "extra,raw,stdout" {
		t.Errorf("expected extra, raw and stdout, got %s", got)
	}
	k, _ := reg.Lookup("extra")
	if out, err := k.Call("Print", []any{"a", 3}, nil); err != nil || out != "AAA" {
		t.Errorf("Print() = %v, %v", out, err)
	}
}

func TestBuilder_ConfigRelativeToConfigDir(t *testing.T) {
	path := writeProject(t)
	cfg, err := config.Parse([]byte(conformYAML))
	if err != nil {
		t.Fatal(err)
	}
	cfg.ConfigDir = filepath.Dir(path)

	reg, err := NewBuilder().
		WithLogger(quietLogger()).
		WithConfig(cfg).
		WithLoader(dynamic.NewLoader(dynamic.NewInterpreterPool(), dynamic.WithLogger(quietLogger()))).
		WithRegistry(registry.New(registry.WithLogger(quietLogger()))).
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if reg.Len() != 2 {
		t.Errorf("expected 2 classes, got %d", reg.Len())
	}
}

func TestBuilder_ConfigErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing source file",
			yaml:    "implementations:\n  - key: x\n    source: missing.go\n",
			wantErr: `implementation "x"`,
		},
		{
			name:    "missing source",
			yaml:    "implementations:\n  - key: x\n",
			wantErr: "key and source are required",
		},
		{
			name:    "bad contract",
			yaml:    "contracts:\n  - name: C\n    methods: [{name: m, returns: Widget}]\n",
			wantErr: "unknown type",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := NewBuilder().WithLogger(quietLogger()).WithConfigPath(path).Build()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}

	_, err := NewBuilder().WithLogger(quietLogger()).WithConfigPath(filepath.Join(dir, "none.yaml")).Build()
	if err == nil || !strings.Contains(err.Error(), "file:") {
		t.Fatalf("expected load error naming the source, got %v", err)
	}
}

func TestBuilder_CanceledContext(t *testing.T) {
	path := writeProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBuilder().WithLogger(quietLogger()).WithConfigPath(path).BuildContext(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
