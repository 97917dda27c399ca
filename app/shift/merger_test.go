package shift

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var testLoc = time.FixedZone("CET", 3600)

func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 10, hour, minute, 0, 0, testLoc)
}

func sh(name string, beginH, beginM, endH, endM int) Shift {
	return Shift{Name: name, Begin: at(beginH, beginM), End: at(endH, endM)}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name  string
		input []Shift
		want  []Shift
	}{
		{
			name:  "empty input",
			input: nil,
			want:  nil,
		},
		{
			name:  "single shift",
			input: []Shift{sh("A", 10, 0, 11, 0)},
			want:  []Shift{sh("A", 10, 0, 11, 0)},
		},
		{
			name:  "all identical",
			input: []Shift{sh("A", 10, 0, 11, 0), sh("A", 10, 0, 11, 0), sh("A", 10, 0, 11, 0)},
			want:  []Shift{sh("A", 10, 0, 11, 0)},
		},
		{
			name:  "adjacent same name joins",
			input: []Shift{sh("A", 10, 0, 11, 0), sh("A", 11, 0, 12, 0)},
			want:  []Shift{sh("A", 10, 0, 12, 0)},
		},
		{
			name:  "adjacent out of order joins",
			input: []Shift{sh("A", 11, 0, 12, 0), sh("A", 9, 0, 10, 0), sh("A", 10, 0, 11, 0)},
			want:  []Shift{sh("A", 9, 0, 12, 0)},
		},
		{
			name:  "contained shift dropped",
			input: []Shift{sh("A", 10, 0, 12, 0), sh("A", 10, 30, 11, 0)},
			want:  []Shift{sh("A", 10, 0, 12, 0)},
		},
		{
			name:  "different names stay apart when touching",
			input: []Shift{sh("A", 10, 0, 11, 0), sh("B", 11, 0, 12, 0)},
			want:  []Shift{sh("A", 10, 0, 11, 0), sh("B", 11, 0, 12, 0)},
		},
		{
			name:  "partial overlap same name joins",
			input: []Shift{sh("A", 10, 0, 12, 0), sh("A", 11, 0, 13, 0)},
			want:  []Shift{sh("A", 10, 0, 13, 0)},
		},
		{
			name:  "disjoint shifts kept",
			input: []Shift{sh("A", 14, 0, 15, 0), sh("A", 10, 0, 11, 0)},
			want:  []Shift{sh("A", 10, 0, 11, 0), sh("A", 14, 0, 15, 0)},
		},
		{
			name:  "interleaved names still join per name",
			input: []Shift{sh("A", 10, 0, 11, 0), sh("B", 10, 30, 14, 0), sh("A", 11, 0, 13, 0)},
			want:  []Shift{sh("A", 10, 0, 13, 0), sh("B", 10, 30, 14, 0)},
		},
		{
			name:  "contained shift of other name dropped",
			input: []Shift{sh("B", 10, 30, 11, 0), sh("A", 10, 0, 12, 0)},
			want:  []Shift{sh("A", 10, 0, 12, 0)},
		},
		{
			name:  "other name across a join point kept",
			input: []Shift{sh("A", 10, 0, 11, 0), sh("B", 10, 30, 11, 30), sh("A", 11, 0, 12, 0)},
			want:  []Shift{sh("A", 10, 0, 12, 0), sh("B", 10, 30, 11, 30)},
		},
		{
			name:  "other name inside one joined record dropped",
			input: []Shift{sh("A", 10, 0, 12, 0), sh("A", 12, 0, 13, 0), sh("B", 10, 30, 11, 0)},
			want:  []Shift{sh("A", 10, 0, 13, 0)},
		},
		{
			name:  "other name block covered by one record dropped",
			input: []Shift{sh("B", 10, 30, 11, 0), sh("B", 11, 0, 11, 30), sh("A", 10, 0, 12, 0)},
			want:  []Shift{sh("A", 10, 0, 12, 0)},
		},
		{
			name:  "identical ranges keep first name",
			input: []Shift{sh("B", 10, 0, 11, 0), sh("A", 10, 0, 11, 0)},
			want:  []Shift{sh("A", 10, 0, 11, 0)},
		},
		{
			name:  "invalid shifts ignored",
			input: []Shift{{}, sh("A", 12, 0, 11, 0), sh("A", 10, 0, 10, 0), sh("A", 8, 0, 9, 0)},
			want:  []Shift{sh("A", 8, 0, 9, 0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeContainByName(t *testing.T) {
	input := []Shift{sh("A", 10, 0, 12, 0), sh("B", 10, 30, 11, 0), sh("A", 10, 30, 11, 0)}
	want := []Shift{sh("A", 10, 0, 12, 0), sh("B", 10, 30, 11, 0)}

	got := NewMerger(true).Run(input)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Run() mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeDoesNotModifyInput(t *testing.T) {
	input := []Shift{sh("A", 11, 0, 12, 0), sh("A", 10, 0, 11, 0)}
	original := append([]Shift(nil), input...)

	Merge(input)

	if diff := cmp.Diff(original, input); diff != "" {
		t.Errorf("input modified (-want +got):\n%s", diff)
	}
}

func TestMergeAcrossTimezones(t *testing.T) {
	utc := Shift{Name: "A", Begin: at(11, 0).UTC(), End: at(12, 0).UTC()}
	local := sh("A", 10, 0, 11, 0)

	got := Merge([]Shift{utc, local})
	if len(got) != 1 {
		t.Fatalf("Expected 1 shift, got %d: %v", len(got), got)
	}
	if !got[0].Begin.Equal(at(10, 0)) || !got[0].End.Equal(at(12, 0)) {
		t.Errorf("Expected 10:00-12:00, got %s", got[0])
	}
}

func randomShifts(r *rand.Rand, n int) []Shift {
	names := []string{"A", "B", "C"}
	shifts := make([]Shift, 0, n)
	for i := 0; i < n; i++ {
		begin := r.Intn(48) * 30
		length := (r.Intn(6) + 1) * 30
		shifts = append(shifts, Shift{
			Name:  names[r.Intn(len(names))],
			Begin: at(0, 0).Add(time.Duration(begin) * time.Minute),
			End:   at(0, 0).Add(time.Duration(begin+length) * time.Minute),
		})
	}
	return shifts
}

func TestMergeProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for _, containByName := range []bool{false, true} {
		merger := NewMerger(containByName)

		for i := 0; i < 500; i++ {
			input := randomShifts(r, r.Intn(12)+1)
			got := merger.Run(input)

			if len(got) == 0 {
				t.Fatalf("Expected non-empty result for %v", input)
			}

			for j := 1; j < len(got); j++ {
				if got[j].Begin.Before(got[j-1].Begin) {
					t.Fatalf("Result not sorted by begin: %v", got)
				}
			}

			for j := range got {
				for k := j + 1; k < len(got); k++ {
					if got[j].Name != got[k].Name {
						continue
					}
					if !got[k].Begin.After(got[j].End) && !got[j].Begin.After(got[k].End) {
						t.Fatalf("Same-name shifts overlap or touch: %s and %s", got[j], got[k])
					}
				}
			}

			// a cross-name shift kept across a join point can be absorbed by
			// the joined block on a second pass, after which the result is stable
			again := merger.Run(got)
			if containByName {
				if diff := cmp.Diff(got, again); diff != "" {
					t.Fatalf("Merge not idempotent for %v (-once +twice):\n%s", input, diff)
				}
			} else if diff := cmp.Diff(again, merger.Run(again)); diff != "" {
				t.Fatalf("Merge not stable for %v (-twice +thrice):\n%s", input, diff)
			}

			for _, s := range input {
				sameName := false
				for _, m := range got {
					if m.Name == s.Name && m.Contains(s) {
						sameName = true
						break
					}
				}
				if sameName {
					continue
				}
				if containByName {
					t.Fatalf("Shift %s lost from result %v", s, got)
				}

				// dropped only when a single record of another name holds it
				held := false
				for _, rec := range input {
					if rec.Name != s.Name && rec.Contains(s) {
						held = true
						break
					}
				}
				if !held {
					t.Fatalf("Shift %s dropped without a containing record in %v", s, input)
				}

				covered := false
				for _, m := range got {
					if m.Contains(s) {
						covered = true
						break
					}
				}
				if !covered {
					t.Fatalf("Shift %s not covered by result %v", s, got)
				}
			}
		}
	}
}
