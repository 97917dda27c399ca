package shift

import (
	"cmp"
	"slices"
)

// Merger consolidates shifts into the smallest equivalent set of intervals.
//
// Shifts of the same name that overlap or touch are joined. Unless
// containByName is set, a shift lying entirely inside a single shift of
// another name is dropped as well.
type Merger struct {
	containByName bool
}

func NewMerger(containByName bool) *Merger {
	return &Merger{containByName: containByName}
}

// Merge runs the default merger, which drops contained shifts regardless of name.
func Merge(shifts []Shift) []Shift {
	return NewMerger(false).Run(shifts)
}

// Run returns the consolidated shifts sorted by begin. The input slice is not modified.
func (m *Merger) Run(shifts []Shift) []Shift {
	groups := make(map[string][]Shift)
	var names []string

	for _, s := range shifts {
		if !s.Valid() {
			continue
		}
		if _, ok := groups[s.Name]; !ok {
			names = append(names, s.Name)
		}
		groups[s.Name] = append(groups[s.Name], s)
	}

	if len(names) == 0 {
		return nil
	}

	var records []Shift
	if !m.containByName {
		for _, name := range names {
			records = append(records, groups[name]...)
		}
	}

	merged := make([]Shift, 0, len(shifts))
	for _, name := range names {
		merged = append(merged, m.consolidate(groups[name])...)
	}

	slices.SortFunc(merged, compareShifts)

	if m.containByName {
		return merged
	}

	return m.dropContained(merged, records)
}

// consolidate sweeps shifts of a single name.
func (m *Merger) consolidate(group []Shift) []Shift {
	slices.SortStableFunc(group, func(a, b Shift) int {
		return a.Begin.Compare(b.Begin)
	})

	result := make([]Shift, 0, len(group))
	current := group[0]

	for _, s := range group[1:] {
		if current.Contains(s) {
			continue
		}
		if !s.Begin.After(current.End) {
			current.End = s.End
			continue
		}
		result = append(result, current)
		current = s
	}

	return append(result, current)
}

// dropContained removes every merged shift that lies inside a single input
// record of another name. Shifts covered only by a join of several records
// are kept. For identical ranges the smallest name wins.
func (m *Merger) dropContained(merged, records []Shift) []Shift {
	result := make([]Shift, 0, len(merged))
	for _, s := range merged {
		if !containedByOther(s, records) {
			result = append(result, s)
		}
	}
	return result
}

func containedByOther(s Shift, records []Shift) bool {
	for _, r := range records {
		if r.Name == s.Name || !r.Contains(s) {
			continue
		}
		if !r.Begin.Equal(s.Begin) || !r.End.Equal(s.End) || r.Name < s.Name {
			return true
		}
	}
	return false
}

func compareShifts(a, b Shift) int {
	return cmp.Or(
		a.Begin.Compare(b.Begin),
		b.End.Compare(a.End),
		cmp.Compare(a.Name, b.Name),
	)
}
