package conform_test

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/GoCodeAlone/conform"
	"github.com/GoCodeAlone/conform/conformance"
	"github.com/GoCodeAlone/conform/signature"
)

type stdoutPrinter struct{}

func (stdoutPrinter) Print(s string) { fmt.Println(s) }

type wrongArgsPrinter struct{}

func (wrongArgsPrinter) Print(s string, n int) {}

func ExampleBuilder() {
	printer := conformance.MustContract("Printer",
		conformance.MustMethod("Print", signature.None, signature.Pos("s").Is(signature.Type[string]())))

	good, _ := signature.ClassOf(stdoutPrinter{})
	reg, err := conform.NewBuilder().
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))).
		WithContract(printer).
		WithClass("stdout", "Printer", good, conformance.WithMethodTypeChecks()).
		Build()
	if err != nil {
		fmt.Println(err)
		return
	}
	k, _ := reg.Lookup("stdout")
	_, _ = k.Call("Print", []any{"hello"}, nil)
	_, err = k.Call("Print", []any{42}, nil)
	fmt.Println(err)

	bad, _ := signature.ClassOf(wrongArgsPrinter{})
	_, err = conform.NewBuilder().
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))).
		WithContract(printer).
		WithClass("wrong", "Printer", bad).
		Build()
	fmt.Println(err != nil)
	// Output:
	// hello
	// Print(): argument s=42 is not of type string
	// true
}
