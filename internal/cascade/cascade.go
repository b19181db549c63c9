// Package cascade evaluates ordered predicate/constructor rules. Rule order
// is priority order: the first rule whose Match reports true builds the result.
package cascade

// Rule is one tier of a fallback cascade.
type Rule[In, Out any] struct {
	Name  string
	Match func(In) bool
	Build func(In) Out
}

// First returns the result of the first matching rule, or fallback when no
// rule matches.
func First[In, Out any](rules []Rule[In, Out], in In, fallback Out) Out {
	out, _ := Resolve(rules, in, fallback)
	return out
}

// Resolve is First that also reports the name of the rule that matched.
// The name is empty when the fallback was used.
func Resolve[In, Out any](rules []Rule[In, Out], in In, fallback Out) (Out, string) {
	for _, r := range rules {
		if r.Match(in) {
			return r.Build(in), r.Name
		}
	}
	return fallback, ""
}

// Optional evaluates rules and reports whether any matched. Restoration
// cascades that end in "no result" use it instead of a fallback value.
func Optional[In, Out any](rules []Rule[In, Out], in In) (Out, bool) {
	for _, r := range rules {
		if r.Match(in) {
			return r.Build(in), true
		}
	}
	var zero Out
	return zero, false
}
