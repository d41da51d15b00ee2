package location

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upper(s string) string { return strings.ToUpper(s) }

func TestNewRegistry(t *testing.T) {
	locs := []Location{
		{"name": "foo"},
		{"name": "bar", "aliases": []any{"bazinga"}},
	}

	reg, err := NewRegistry(locs, upper)
	require.NoError(t, err)

	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []string{"FOO", "BAR", "BAZINGA"}, reg.NormalizedNames())

	loc, ok := reg.Lookup("bar")
	require.True(t, ok)
	assert.Equal(t, "bar", loc["name"])

	loc, ok = reg.LookupNormalized("BAZINGA")
	require.True(t, ok)
	assert.Equal(t, "bar", loc["name"])

	_, ok = reg.Lookup("BAR")
	assert.False(t, ok)
	_, ok = reg.LookupNormalized("bar")
	assert.False(t, ok)
}

func TestNewRegistry_NilNormalizer(t *testing.T) {
	reg, err := NewRegistry([]Location{{"name": "NO_NORMALIZATION--"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"NO_NORMALIZATION--"}, reg.NormalizedNames())
}

func TestNewRegistry_LastWriteWins(t *testing.T) {
	locs := []Location{
		{"name": "a", "city": "first"},
		{"name": "a", "city": "second"},
		{"name": "b", "aliases": []string{"A"}},
	}
	reg, err := NewRegistry(locs, strings.ToLower)
	require.NoError(t, err)

	loc, ok := reg.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "second", loc["city"])

	// alias "A" of b normalizes to "a" and replaces the earlier entry
	loc, ok = reg.LookupNormalized("a")
	require.True(t, ok)
	assert.Equal(t, "b", loc["name"])
	assert.Equal(t, []string{"a", "b"}, reg.NormalizedNames())
}

func TestNewRegistry_MissingName(t *testing.T) {
	tests := []struct {
		name string
		loc  Location
	}{
		{"absent", Location{"city": "x"}},
		{"empty", Location{"name": ""}},
		{"not a string", Location{"name": 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry([]Location{tt.loc}, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingName))
		})
	}
}

func TestRegistry_LookupReturnsCopy(t *testing.T) {
	reg, err := NewRegistry([]Location{{"name": "foo", "city": "x"}}, nil)
	require.NoError(t, err)

	loc, _ := reg.Lookup("foo")
	loc["city"] = "changed"

	again, _ := reg.Lookup("foo")
	assert.Equal(t, "x", again["city"])
}

func TestLocation_Aliases(t *testing.T) {
	assert.Nil(t, Location{"name": "x"}.Aliases())
	assert.Equal(t, []string{"a", "b"}, Location{"aliases": []string{"a", "b"}}.Aliases())
	assert.Equal(t, []string{"a"}, Location{"aliases": []any{"a", 3}}.Aliases())
}
