package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/geoextract/internal/location"
	"github.com/fyrsmithlabs/geoextract/internal/pipeline"
)

func newTestPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	opts, err := pipeline.DefaultConfig().Options(zap.NewNop())
	require.NoError(t, err)
	p, err := pipeline.New([]location.Location{
		{"name": "Rathaus", "city": "Musterstadt"},
		{"name": "Bahnhof"},
	}, opts)
	require.NoError(t, err)
	return p
}

// connect runs the server on an in-memory transport and returns a client
// session connected to it.
func connect(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	go func() { _ = s.RunTransport(ctx, serverTransport) }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestNewServer(t *testing.T) {
	_, err := NewServer(nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extractor is required")

	s, err := NewServer(nil, newTestPipeline(t))
	require.NoError(t, err)
	assert.NotNil(t, s.mcp)
}

func TestListTools(t *testing.T) {
	s, err := NewServer(DefaultConfig(), newTestPipeline(t))
	require.NoError(t, err)
	session := connect(t, s)

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, res.Tools, 1)
	assert.Equal(t, ToolExtractLocations, res.Tools[0].Name)
}

func TestExtractLocationsTool(t *testing.T) {
	s, err := NewServer(DefaultConfig(), newTestPipeline(t))
	require.NoError(t, err)
	session := connect(t, s)

	tests := []struct {
		name string
		args map[string]any
		want []location.Location
	}{
		{
			name: "text",
			args: map[string]any{"text": "Treffpunkt am Rathaus, danach zum Bahnhof."},
			want: []location.Location{
				{"name": "Rathaus", "city": "Musterstadt"},
				{"name": "Bahnhof"},
			},
		},
		{
			name: "html",
			args: map[string]any{"text": "<p>Abfahrt am Bahnhof</p>", "format": "html"},
			want: []location.Location{{"name": "Bahnhof"}},
		},
		{
			name: "nothing found",
			args: map[string]any{"text": "Keine Orte hier."},
			want: []location.Location{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
				Name:      ToolExtractLocations,
				Arguments: tt.args,
			})
			require.NoError(t, err)
			require.False(t, res.IsError)

			data, err := json.Marshal(res.StructuredContent)
			require.NoError(t, err)
			var got extractLocationsOutput
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, len(tt.want), got.Count)
			assert.ElementsMatch(t, tt.want, got.Locations)
		})
	}
}

func TestExtractLocationsTool_UnknownFormat(t *testing.T) {
	s, err := NewServer(DefaultConfig(), newTestPipeline(t))
	require.NoError(t, err)
	session := connect(t, s)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolExtractLocations,
		Arguments: map[string]any{"text": "Rathaus", "format": "pdf"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
