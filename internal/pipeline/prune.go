package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fyrsmithlabs/geoextract/internal/extraction"
	"github.com/fyrsmithlabs/geoextract/internal/location"
)

// PruneOverlapping removes candidates whose span ends inside or at the end
// of a longer candidate that starts no later. Candidates are ordered by
// start, longer spans first, and a candidate is kept only if it reaches
// beyond every candidate kept so far.
func PruneOverlapping(candidates []extraction.Candidate) []extraction.Candidate {
	if len(candidates) == 0 {
		return nil
	}

	sorted := make([]extraction.Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].Length > sorted[j].Length
	})

	out := []extraction.Candidate{sorted[0]}
	end := sorted[0].End()
	for _, c := range sorted[1:] {
		if c.End() > end {
			out = append(out, c)
			end = c.End()
		}
	}
	return out
}

// identityKeys decide whether two results describe the same location.
var identityKeys = []string{
	location.KeyName,
	location.KeyStreet,
	location.KeyHouseNumber,
	location.KeyPostcode,
	location.KeyCity,
}

// Deduplicate keeps the first of all locations that agree on name, street,
// house number, postcode and city. A missing key only equals a missing key.
func Deduplicate(locs []location.Location) []location.Location {
	seen := make(map[string]struct{}, len(locs))
	out := make([]location.Location, 0, len(locs))
	for _, loc := range locs {
		k := identity(loc)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, loc)
	}
	return out
}

func identity(loc location.Location) string {
	var b strings.Builder
	for _, key := range identityKeys {
		v, ok := loc[key]
		if !ok {
			b.WriteString("-\x00")
			continue
		}
		fmt.Fprintf(&b, "+%T:%v\x00", v, v)
	}
	return b.String()
}
