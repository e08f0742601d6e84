package signature

import "fmt"

// Compare reports the first structural difference between want and got, or
// nil when they are compatible. Two signatures are compatible when they
// have the same number of parameters and, position by position, the same
// kind and the same default presence. Keyword-only parameters are passed by
// name, so their names must match as well. Constraints and default values
// are not compared.
func Compare(want, got Signature) error {
	if len(want.params) != len(got.params) {
		return fmt.Errorf("want %d parameters, got %d", len(want.params), len(got.params))
	}
	for i := range want.params {
		w, g := want.params[i], got.params[i]
		if w.Kind != g.Kind {
			return fmt.Errorf("parameter %d (%s): want %s, got %s", i, w.Name, w.Kind, g.Kind)
		}
		if w.HasDefault != g.HasDefault {
			if w.HasDefault {
				return fmt.Errorf("parameter %d (%s): want a default value", i, w.Name)
			}
			return fmt.Errorf("parameter %d (%s): unexpected default value", i, w.Name)
		}
		if w.Kind == KeywordOnly && w.Name != g.Name {
			return fmt.Errorf("parameter %d: want keyword %q, got %q", i, w.Name, g.Name)
		}
	}
	return nil
}
