package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/geoextract/internal/document"
)

func newSplitCmd(load configLoader) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "split [file|-]",
		Short: "Print the text blocks a document is divided into",
		Long: `Split a document with the configured splitter and print every block
with the line and column where it starts.

When the splitter is disabled the whole document is a single block.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			_, data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			text, err := document.Decode(data)
			if err != nil {
				return err
			}

			p, err := pipelineBuilder(cfg, zap.NewNop())(nil)
			if err != nil {
				return err
			}
			blocks := p.Split(text)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(blocks)
			}
			for i, b := range blocks {
				fmt.Fprintf(out, "--- block %d (line %d, column %d) ---\n%s\n", i+1, b.Line, b.Column, b.Text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print blocks as JSON")
	return cmd
}

func newNormalizeCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <text>...",
		Short: "Print text in the normalized form used for matching",
		Example: `  geoextract normalize "Am Marktplatz, Köln"
  am marktplatz koln`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			p, err := pipelineBuilder(cfg, zap.NewNop())(nil)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.Normalize(strings.Join(args, " ")))
			return nil
		},
	}
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return data, nil
}
