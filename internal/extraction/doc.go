// Package extraction finds location candidates in normalized text.
//
// The package provides three extractors:
//   - NameExtractor: exact, word-bounded matches of known location names
//   - WindowExtractor: runs a function over sliding windows of words
//   - PatternExtractor: matches regular expressions against word windows
//     and turns named groups into location attributes
//
// # Offsets
//
// Every Candidate carries a start offset and a length counted in runes of
// the text passed to Extract. Byte offsets never leave this package.
//
// # Usage
//
// Extractors that depend on the registry of known locations implement
// Setup and are prepared once before use:
//
//	names := extraction.NewNameExtractor()
//	if err := names.Setup(registry); err != nil {
//	    return err
//	}
//	for _, c := range names.Extract("besuch im rathaus") {
//	    fmt.Println(c.Start, c.Length, c.Attrs)
//	}
//
// Structured addresses are matched with templates built from named blocks:
//
//	patterns, err := extraction.CompileTemplates(extraction.DefaultBlocks(), extraction.DefaultTemplates())
//	ex, err := extraction.NewPatternExtractor(patterns, 2, 7)
package extraction
