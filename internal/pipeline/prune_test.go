package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fyrsmithlabs/geoextract/internal/extraction"
	"github.com/fyrsmithlabs/geoextract/internal/location"
)

func TestPruneOverlapping(t *testing.T) {
	tests := []struct {
		name string
		in   []extraction.Candidate
		want []string
	}{
		{"empty", nil, nil},
		{
			"disjoint",
			[]extraction.Candidate{
				candidate(4, 2, location.Location{"name": "b"}),
				candidate(0, 2, location.Location{"name": "a"}),
			},
			[]string{"a", "b"},
		},
		{
			"contained",
			[]extraction.Candidate{
				candidate(2, 2, location.Location{"name": "inner"}),
				candidate(0, 6, location.Location{"name": "outer"}),
			},
			[]string{"outer"},
		},
		{
			"same start prefers longer",
			[]extraction.Candidate{
				candidate(0, 3, location.Location{"name": "short"}),
				candidate(0, 5, location.Location{"name": "long"}),
			},
			[]string{"long"},
		},
		{
			"equal spans keep first",
			[]extraction.Candidate{
				candidate(1, 3, location.Location{"name": "first"}),
				candidate(1, 3, location.Location{"name": "second"}),
			},
			[]string{"first"},
		},
		{
			"partial overlap kept",
			[]extraction.Candidate{
				candidate(0, 4, location.Location{"name": "left"}),
				candidate(2, 4, location.Location{"name": "right"}),
			},
			[]string{"left", "right"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PruneOverlapping(tt.in)
			var gotNames []string
			for _, c := range got {
				n, _ := c.Attrs.Name()
				gotNames = append(gotNames, n)
			}
			assert.Equal(t, tt.want, gotNames)
		})
	}
}

// subsets returns every subset of items, each in input order.
func subsets(items []string) [][]string {
	out := [][]string{{}}
	for _, item := range items {
		n := len(out)
		for i := 0; i < n; i++ {
			s := append(append([]string{}, out[i]...), item)
			out = append(out, s)
		}
	}
	return out
}

func TestDeduplicate(t *testing.T) {
	keys := []string{"street", "house_number", "postcode", "city"}

	for _, sub := range subsets(keys) {
		sub = append(sub, "name")

		loc1 := location.Location{}
		for _, k := range sub {
			loc1[k] = k
		}
		loc2 := loc1.Clone()
		loc3 := loc1.Clone()
		loc3["foo"] = "bar"
		loc4 := loc1.Clone()
		loc4[sub[0]] = "x"

		got := Deduplicate([]location.Location{loc1, loc2, loc3, loc4})
		assert.Equal(t, []location.Location{loc1, loc4}, got, "keys %v", sub)
	}
}

func TestDeduplicate_MissingDiffersFromPresent(t *testing.T) {
	a := location.Location{"name": "a"}
	b := location.Location{"name": "a", "city": ""}
	c := location.Location{"name": "a", "house_number": 10}
	d := location.Location{"name": "a", "house_number": "10"}

	got := Deduplicate([]location.Location{a, b, c, d, a.Clone()})
	assert.Equal(t, []location.Location{a, b, c, d}, got)
}
