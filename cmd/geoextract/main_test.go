package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/geoextract/internal/location"
	"github.com/fyrsmithlabs/geoextract/internal/segment"
)

// execute runs the CLI with args and stdin and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeConfig writes a location file and a config pointing at it.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	locs := filepath.Join(dir, "locations.yaml")
	require.NoError(t, os.WriteFile(locs, []byte(`
- name: Rathaus
  city: Musterstadt
- name: Bahnhof
`), 0600))

	cfg := filepath.Join(dir, "geoextract.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("locations:\n  path: "+locs+"\nlogging:\n  level: error\n"), 0600))
	return cfg
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    dev")
}

func TestExtractCmd(t *testing.T) {
	cfg := writeConfig(t)

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  []location.Location
	}{
		{
			name:  "stdin",
			stdin: "Wir treffen uns am Rathaus.",
			args:  []string{"extract", "--config", cfg},
			want:  []location.Location{{"name": "Rathaus", "city": "Musterstadt"}},
		},
		{
			name:  "dash reads stdin",
			stdin: "Abfahrt am Bahnhof",
			args:  []string{"extract", "--config", cfg, "-"},
			want:  []location.Location{{"name": "Bahnhof"}},
		},
		{
			name:  "html flag",
			stdin: "<html><head><title>Rathaus</title></head><body><p>Bahnhof</p></body></html>",
			args:  []string{"extract", "--config", cfg, "--html"},
			want:  []location.Location{{"name": "Bahnhof"}},
		},
		{
			name:  "nothing found",
			stdin: "Keine Orte hier.",
			args:  []string{"extract", "--config", cfg},
			want:  []location.Location{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.stdin, tt.args...)
			require.NoError(t, err)
			var got []location.Location
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestExtractCmd_File(t *testing.T) {
	cfg := writeConfig(t)
	doc := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(doc, []byte("<p>Treffpunkt: Rathaus</p>"), 0600))

	out, err := execute(t, "", "extract", "--config", cfg, doc)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Rathaus","city":"Musterstadt"}]`, out)
}

func TestExtractCmd_Errors(t *testing.T) {
	cfg := writeConfig(t)

	_, err := execute(t, "", "extract", "--config", cfg, filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorContains(t, err, "failed to read file")

	_, err = execute(t, "M\xfcnchen", "extract", "--config", cfg)
	assert.Error(t, err)

	_, err = execute(t, "Rathaus", "extract", "--config", filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestSplitCmd(t *testing.T) {
	out, err := execute(t, "Rathaus      Bahnhof", "split", "--json")
	require.NoError(t, err)

	var blocks []segment.Block
	require.NoError(t, json.Unmarshal([]byte(out), &blocks))
	require.Len(t, blocks, 2)
	assert.Equal(t, 0, blocks[0].Column)
	assert.Equal(t, 13, blocks[1].Column)
	assert.Contains(t, blocks[1].Text, "Bahnhof")

	out, err = execute(t, "Rathaus      Bahnhof", "split")
	require.NoError(t, err)
	assert.Contains(t, out, "--- block 2 (line 0, column 13) ---")
}

func TestNormalizeCmd(t *testing.T) {
	out, err := execute(t, "", "normalize", "Am", "Marktplatz,", "Köln")
	require.NoError(t, err)
	assert.Equal(t, "am marktplatz koln\n", out)

	_, err = execute(t, "", "normalize")
	assert.Error(t, err)
}
