// Package mcp exposes location extraction as a Model Context Protocol tool.
//
// The server registers a single tool, extract_locations, backed by the same
// service layer as the HTTP API. Run serves it over stdio; RunTransport
// accepts any transport from the go-sdk.
package mcp
