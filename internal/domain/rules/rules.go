// Package rules evaluates ordered classification chains: the first rule
// whose predicate holds decides the label.
package rules

// Rule pairs a predicate with the label it assigns.
type Rule[T any] struct {
	Label string
	When  func(T) bool
}

// Chain is an ordered list of rules. The zero value matches nothing.
type Chain[T any] []Rule[T]

// First returns the label of the first matching rule. ok is false when no
// rule matches; callers decide whether that means "no label".
func (c Chain[T]) First(v T) (label string, ok bool) {
	for _, r := range c {
		if r.When(v) {
			return r.Label, true
		}
	}
	return "", false
}

// Otherwise returns a predicate that always holds. Use it as the last rule of
// a chain that must always produce a label.
func Otherwise[T any]() func(T) bool {
	return func(T) bool { return true }
}
