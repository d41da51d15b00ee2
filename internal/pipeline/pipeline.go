// Package pipeline wires splitting, normalization, extraction, validation,
// deduplication and postprocessing into a single extraction run.
package pipeline

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/geoextract/internal/extraction"
	"github.com/fyrsmithlabs/geoextract/internal/location"
	"github.com/fyrsmithlabs/geoextract/internal/normalize"
	"github.com/fyrsmithlabs/geoextract/internal/postprocess"
	"github.com/fyrsmithlabs/geoextract/internal/segment"
	"github.com/fyrsmithlabs/geoextract/internal/validation"
)

// Options configures a Pipeline. Nil fields get defaults; use the explicit
// no-op variants (normalize.Identity, segment.Single, validation.AcceptAll)
// to disable a stage.
type Options struct {
	Normalizer     normalize.Normalizer
	Splitter       segment.Splitter
	Validator      validation.Validator
	Extractors     []extraction.Extractor
	Postprocessors []postprocess.Postprocessor

	// Workers bounds the number of blocks processed concurrently.
	Workers int

	Logger *zap.Logger
}

// Setupper is implemented by components that need the location registry.
// Setup is called once while the pipeline is constructed.
type Setupper interface {
	Setup(reg *location.Registry) error
}

// Pipeline extracts locations from documents. It is immutable after New
// returns and safe for concurrent use.
type Pipeline struct {
	registry       *location.Registry
	normalizer     normalize.Normalizer
	splitter       segment.Splitter
	validator      validation.Validator
	extractors     []extraction.Extractor
	postprocessors []postprocess.Postprocessor
	workers        int
	logger         *zap.Logger
}

// New indexes locs and prepares every component.
func New(locs []location.Location, opts Options) (*Pipeline, error) {
	p := &Pipeline{
		normalizer:     opts.Normalizer,
		splitter:       opts.Splitter,
		validator:      opts.Validator,
		extractors:     opts.Extractors,
		postprocessors: opts.Postprocessors,
		workers:        max(opts.Workers, 1),
		logger:         opts.Logger,
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.normalizer == nil {
		p.normalizer = normalize.MustNew(normalize.DefaultOptions())
	}
	if p.splitter == nil {
		p.splitter = &segment.WhitespaceSplitter{
			MarginColumns: segment.DefaultMarginColumns,
			MarginRows:    segment.DefaultMarginRows,
		}
	}
	if p.validator == nil {
		p.validator = validation.NewNameValidator()
	}
	if p.extractors == nil {
		p.extractors = []extraction.Extractor{extraction.NewNameExtractor()}
	}

	reg, err := location.NewRegistry(locs, p.normalizer.Normalize)
	if err != nil {
		return nil, fmt.Errorf("failed to build registry: %w", err)
	}
	p.registry = reg

	components := make([]any, 0, len(p.extractors)+len(p.postprocessors)+3)
	for _, ex := range p.extractors {
		components = append(components, ex)
	}
	for _, pp := range p.postprocessors {
		components = append(components, pp)
	}
	components = append(components, p.normalizer, p.splitter, p.validator)

	for _, c := range components {
		s, ok := c.(Setupper)
		if !ok {
			continue
		}
		if err := s.Setup(reg); err != nil {
			return nil, fmt.Errorf("failed to set up %T: %w", c, err)
		}
	}

	registryLocations.Set(float64(reg.Len()))
	p.logger.Debug("pipeline ready",
		zap.Int("locations", reg.Len()),
		zap.Int("normalized_names", len(reg.NormalizedNames())),
		zap.Int("extractors", len(p.extractors)),
		zap.Int("workers", p.workers),
	)
	return p, nil
}

// Registry returns the location registry.
func (p *Pipeline) Registry() *location.Registry {
	return p.registry
}

// Normalize applies the pipeline's normalizer to s.
func (p *Pipeline) Normalize(s string) string {
	return p.normalizer.Normalize(s)
}

// Split applies the pipeline's splitter to document.
func (p *Pipeline) Split(document string) []segment.Block {
	return p.splitter.Split(document)
}

// Extract returns the locations found in document, in block order and
// without duplicates.
func (p *Pipeline) Extract(document string) []location.Location {
	start := time.Now()
	blocks := p.splitter.Split(document)

	perBlock := make([][]location.Location, len(blocks))
	if p.workers == 1 || len(blocks) < 2 {
		for i, b := range blocks {
			perBlock[i] = p.extractBlock(b.Text)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(p.workers)
		for i, b := range blocks {
			g.Go(func() error {
				perBlock[i] = p.extractBlock(b.Text)
				return nil
			})
		}
		_ = g.Wait()
	}

	var all []location.Location
	for _, locs := range perBlock {
		all = append(all, locs...)
	}

	unique := Deduplicate(all)
	results := make([]location.Location, 0, len(unique))
	for _, loc := range unique {
		keep := true
		for _, pp := range p.postprocessors {
			if loc, keep = pp.Postprocess(loc); !keep {
				break
			}
		}
		if keep {
			results = append(results, loc)
		}
	}

	elapsed := time.Since(start)
	documentsTotal.Inc()
	blocksTotal.Add(float64(len(blocks)))
	candidatesTotal.WithLabelValues(stageDeduplicated).Add(float64(len(unique)))
	resultsTotal.Add(float64(len(results)))
	extractDuration.Observe(elapsed.Seconds())

	p.logger.Debug("document processed",
		zap.Int("blocks", len(blocks)),
		zap.Int("results", len(results)),
		zap.Duration("duration", elapsed),
	)
	return results
}

// extractBlock runs extraction, augmentation, validation and overlap
// pruning on a single block.
func (p *Pipeline) extractBlock(text string) []location.Location {
	normalized := p.normalizer.Normalize(text)

	var candidates []extraction.Candidate
	for _, ex := range p.extractors {
		candidates = append(candidates, ex.Extract(normalized)...)
	}
	candidatesTotal.WithLabelValues(stageExtracted).Add(float64(len(candidates)))

	valid := make([]extraction.Candidate, 0, len(candidates))
	for _, c := range candidates {
		c.Attrs = p.augment(c.Attrs)
		if p.validator.Validate(c.Attrs) {
			valid = append(valid, c)
		}
	}
	candidatesTotal.WithLabelValues(stageValidated).Add(float64(len(valid)))

	pruned := PruneOverlapping(valid)
	candidatesTotal.WithLabelValues(stagePruned).Add(float64(len(pruned)))

	out := make([]location.Location, 0, len(pruned))
	for _, c := range pruned {
		out = append(out, c.Attrs)
	}
	return out
}

// resolvedKeys hold normalized values that are replaced by the canonical
// name of the matching registry entry.
var resolvedKeys = []string{location.KeyName, location.KeyStreet, location.KeyCity}

// augment maps normalized names back to canonical names and merges the
// registry data of a named location into the candidate.
func (p *Pipeline) augment(attrs location.Location) location.Location {
	out := attrs.Clone()
	for _, key := range resolvedKeys {
		value, ok := out.String(key)
		if !ok {
			continue
		}
		if loc, ok := p.registry.LookupNormalized(value); ok {
			out[key], _ = loc.Name()
		}
	}

	if name, ok := out.Name(); ok {
		if loc, ok := p.registry.Lookup(name); ok {
			for k, v := range loc {
				out[k] = v
			}
		}
	}
	return out
}
