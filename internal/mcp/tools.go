package mcp

import (
	"context"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fyrsmithlabs/geoextract/internal/location"
	"github.com/fyrsmithlabs/geoextract/internal/logging"
)

// ToolExtractLocations is the name of the extraction tool.
const ToolExtractLocations = "extract_locations"

type extractLocationsInput struct {
	Text   string `json:"text" jsonschema:"Document text to search for locations"`
	Format string `json:"format,omitempty" jsonschema:"Input format: text (default) or html"`
}

type extractLocationsOutput struct {
	Locations []location.Location `json:"locations" jsonschema:"Locations found, each an object with at least a name or address attributes"`
	Count     int                 `json:"count" jsonschema:"Number of locations returned"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolExtractLocations,
		Description: "Find known places and street addresses in a document. Returns the matching locations with their stored attributes.",
	}, s.extractLocations)
}

func (s *Server) extractLocations(ctx context.Context, _ *mcp.CallToolRequest, args extractLocationsInput) (*mcp.CallToolResult, extractLocationsOutput, error) {
	done := s.metrics.Begin(ctx, ToolExtractLocations)

	ctx = logging.WithRequestID(ctx, uuid.NewString())
	locs, err := s.service.Extract(ctx, []byte(args.Text), args.Format)
	done(err)
	if err != nil {
		return nil, extractLocationsOutput{}, err
	}

	return nil, extractLocationsOutput{Locations: locs, Count: len(locs)}, nil
}
