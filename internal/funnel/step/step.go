// Package step defines the static, ordered registry of funnel steps. The
// table is read-only; the flow controller dispatches on Kind rather than on
// ad hoc slug comparisons.
package step

// Kind tags the input schema a step renders and validates.
type Kind string

const (
	KindChoice  Kind = "choice"
	KindDate    Kind = "date"
	KindAddress Kind = "address"
	KindName    Kind = "name"
	KindContact Kind = "contact"
)

// Step describes one entry of the funnel sequence.
type Step struct {
	Slug        string
	Title       string
	Kind        Kind
	Field       string   // single answer field for choice steps
	Options     []string // enumerated options for choice steps
	AutoAdvance bool
}

// table order is significant: it defines both visual progress and navigation.
var table = []Step{
	{Slug: "p1", Title: "Have you had a car on finance?", Kind: KindChoice, Field: "has_car_finance", Options: []string{"Yes", "No"}, AutoAdvance: true},
	{Slug: "p2", Title: "Have you financed more than one vehicle since 2007?", Kind: KindChoice, Field: "multiple_vehicles", Options: []string{"Yes", "No"}, AutoAdvance: true},
	{Slug: "p3", Title: "What's your date of birth?", Kind: KindDate},
	{Slug: "p4", Title: "Your current address", Kind: KindAddress},
	{Slug: "p5", Title: "What's your name?", Kind: KindName},
	{Slug: "p6", Title: "Where should we send your potential compensation details?", Kind: KindContact},
}

var bySlug = func() map[string]int {
	m := make(map[string]int, len(table))
	for i, s := range table {
		m[s.Slug] = i
	}
	return m
}()

// Ordered returns the full step sequence.
func Ordered() []Step {
	out := make([]Step, len(table))
	copy(out, table)
	return out
}

// Count returns the number of steps in the sequence.
func Count() int { return len(table) }

// First returns the entry step.
func First() Step { return table[0] }

// Lookup finds a step by slug.
func Lookup(slug string) (Step, bool) {
	i, ok := bySlug[slug]
	if !ok {
		return Step{}, false
	}
	return table[i], true
}

// Index returns the zero-based position of a step, or -1 if unknown.
func Index(slug string) int {
	i, ok := bySlug[slug]
	if !ok {
		return -1
	}
	return i
}

// Next returns the step after slug. ok is false at the final step or for an
// unknown slug.
func Next(slug string) (Step, bool) {
	i, found := bySlug[slug]
	if !found || i+1 >= len(table) {
		return Step{}, false
	}
	return table[i+1], true
}

// Prev returns the step before slug. ok is false at the first step or for an
// unknown slug.
func Prev(slug string) (Step, bool) {
	i, found := bySlug[slug]
	if !found || i == 0 {
		return Step{}, false
	}
	return table[i-1], true
}

// IsFinal reports whether slug is the last linear step.
func IsFinal(slug string) bool {
	i, ok := bySlug[slug]
	return ok && i == len(table)-1
}
