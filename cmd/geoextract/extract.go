package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/geoextract/internal/document"
	"github.com/fyrsmithlabs/geoextract/internal/logging"
	"github.com/fyrsmithlabs/geoextract/internal/service"
)

func newExtractCmd(load configLoader) *cobra.Command {
	var html bool

	cmd := &cobra.Command{
		Use:   "extract [file|-]",
		Short: "Print the locations found in a document as JSON",
		Long: `Extract locations from a file or stdin and print them as a JSON array.

Files ending in .html or .htm are read as HTML.

Examples:
  # Extract from a file
  geoextract extract --config geoextract.yaml letter.txt

  # Extract from stdin
  curl -s https://example.org/news | geoextract extract --html -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, true)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			name, data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			format := document.FormatText
			if html || isHTMLFile(name) {
				format = document.FormatHTML
			}

			p, err := buildPipeline(cfg, logger.Underlying())
			if err != nil {
				return err
			}

			docID := name
			if !logging.ValidID(docID) {
				docID = uuid.NewString()
			}
			ctx := logging.WithDocumentID(cmd.Context(), docID)

			locs, err := service.New(p, logger.Underlying()).Extract(ctx, data, format)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(locs)
		},
	}
	cmd.Flags().BoolVar(&html, "html", false, "treat the input as HTML")
	return cmd
}

// readInput reads the named file, or stdin when no file or "-" is given.
func readInput(cmd *cobra.Command, args []string) (string, []byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
		return "", data, nil
	}
	data, err := readFile(args[0])
	if err != nil {
		return "", nil, err
	}
	return filepath.Base(args[0]), data, nil
}

func isHTMLFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return true
	}
	return false
}
