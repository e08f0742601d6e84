// Package conform assembles registries of runtime-checked classes.
//
// The pieces live in sub-packages:
//
//   - signature describes callables: parameters, constraints, argument
//     binding, and classes as ordered sets of methods.
//   - typecheck wraps a callable so every call checks its bound arguments
//     and its return value against the declared constraints.
//   - conformance validates that a class structurally implements a
//     contract, optionally installing per-call type checks.
//   - registry maps string keys to classes.
//   - dynamic loads classes from interpreted Go source.
//   - config declares contracts and implementations in YAML.
//
// Builder wires them together:
//
//	reg, err := conform.NewBuilder().
//	    WithContract(printerContract).
//	    WithClass("stdout", "Printer", stdoutPrinter, conformance.WithMethodTypeChecks()).
//	    WithConfigPath("conform.yaml").
//	    Build()
package conform
