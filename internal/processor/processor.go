// Package processor composes the document client, fast-path scanner,
// extractor, detector and remediation executor into the end-to-end pipeline
// that turns one page-changed event into an archive / notify / no-op
// outcome.
package processor

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Gabee01/pii-detector-sub000/internal/extract"
	"github.com/Gabee01/pii-detector-sub000/internal/files"
	"github.com/Gabee01/pii-detector-sub000/internal/metrics"
	"github.com/Gabee01/pii-detector-sub000/internal/scanner"
	"github.com/Gabee01/pii-detector-sub000/internal/types"
)

// defaultMaxPageDepth bounds recursion into nested child pages within a
// single job
const defaultMaxPageDepth = 5

// DocumentSource is the document API surface the pipeline reads from
type DocumentSource interface {
	GetPage(ctx context.Context, pageID string) (types.Page, error)
	GetBlockChildren(ctx context.Context, blockID string) ([]types.Block, error)
	GetDatabaseEntries(ctx context.Context, databaseID string) ([]types.Page, error)
}

// Detector analyzes extracted content for PII
type Detector interface {
	Detect(ctx context.Context, text string, attachments []types.NormalizedFile) (types.DetectionResult, error)
}

// Remediator archives and notifies for a detected page
type Remediator interface {
	Remediate(ctx context.Context, page types.Page, content types.ExtractedContent, categories []string) error
}

// Processor runs the per-page detection pipeline
type Processor struct {
	documents    DocumentSource
	detector     Detector
	remediator   Remediator
	resolver     *extract.Resolver
	fileOpts     files.Options
	maxPageDepth int
}

// Option configures the Processor
type Option func(*Processor)

// WithFileToken sets the bearer token used when normalizing platform-hosted
// file references
func WithFileToken(token string) Option {
	return func(p *Processor) {
		p.fileOpts.Token = token
	}
}

// WithMaxPageDepth bounds how deep nested child pages are followed
func WithMaxPageDepth(depth int) Option {
	return func(p *Processor) {
		if depth > 0 {
			p.maxPageDepth = depth
		}
	}
}

// New creates a processor over the given collaborators. Resolver options
// control the block traversal bounds.
func New(documents DocumentSource, detector Detector, remediator Remediator, resolverOpts []extract.ResolverOption, opts ...Option) (*Processor, error) {
	if documents == nil {
		return nil, ErrNilDocumentSource
	}

	if detector == nil {
		return nil, ErrNilDetector
	}

	if remediator == nil {
		return nil, ErrNilRemediator
	}

	resolver, err := extract.NewResolver(documents, resolverOpts...)
	if err != nil {
		return nil, err
	}

	p := &Processor{
		documents:    documents,
		detector:     detector,
		remediator:   remediator,
		resolver:     resolver,
		maxPageDepth: defaultMaxPageDepth,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// ProcessPage runs the full pipeline for one page-changed event. It is safe
// to invoke repeatedly with the same page ID: archiving is idempotent and
// re-detection against unchanged remote state yields the same outcome.
// Panics anywhere in the pipeline are converted into an error return so a
// crash cannot distort the caller's retry accounting.
func (p *Processor) ProcessPage(ctx context.Context, pageID, authorID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("page_id", pageID).Str("author_id", authorID).Interface("panic", r).Msg("pipeline panicked")
			err = fmt.Errorf("%w: %v", ErrPipelinePanic, r)
		}
	}()

	seen := make(map[string]struct{})

	err = p.process(ctx, pageID, authorID, 0, seen)
	if err != nil {
		metrics.PagesProcessed.WithLabelValues(metrics.OutcomeFailed).Inc()
	}

	return err
}

// process handles one page, recursing depth-first into discovered child
// pages before the parent's own detection completes
func (p *Processor) process(ctx context.Context, pageID, authorID string, depth int, seen map[string]struct{}) error {
	if _, already := seen[pageID]; already {
		return nil
	}

	seen[pageID] = struct{}{}

	page, err := p.documents.GetPage(ctx, pageID)
	if err != nil {
		log.Error().Err(err).Str("page_id", pageID).Str("author_id", authorID).Msg("failed to fetch page")
		return err
	}

	if page.Archived {
		log.Info().Str("page_id", pageID).Msg("page already archived, skipping")
		metrics.PagesProcessed.WithLabelValues(metrics.OutcomeSkipped).Inc()

		return nil
	}

	title := extract.Title(page)

	// cheap title screen first: a hit skips all block fetching
	if result, ok := scanner.Scan(title); ok {
		log.Info().Str("page_id", pageID).Strs("categories", result.Categories).Msg("fast-path scan matched page title")

		content := types.ExtractedContent{Text: title}

		if err := p.remediator.Remediate(ctx, page, content, result.Categories); err != nil {
			return err
		}

		metrics.PagesProcessed.WithLabelValues(metrics.OutcomeArchived).Inc()

		return nil
	}

	blocks, err := p.documents.GetBlockChildren(ctx, pageID)
	if err != nil {
		log.Error().Err(err).Str("page_id", pageID).Msg("failed to fetch block tree")
		return err
	}

	resolution, err := p.resolver.Resolve(ctx, blocks)
	if err != nil {
		log.Error().Err(err).Str("page_id", pageID).Msg("failed to resolve nested blocks")
		return err
	}

	if resolution.Truncated {
		log.Warn().Str("page_id", pageID).Msg("block traversal truncated at configured bound, proceeding with partial content")
	}

	// sub-pages are independent processing units; remediate them before
	// the parent finishes so their outcome never depends on the parent's
	for _, childID := range resolution.ChildPageIDs {
		if depth+1 >= p.maxPageDepth {
			log.Warn().Str("page_id", pageID).Str("child_id", childID).Msg("child page depth bound reached, skipping descent")
			continue
		}

		if childErr := p.process(ctx, childID, authorID, depth+1, seen); childErr != nil {
			log.Error().Err(childErr).Str("page_id", pageID).Str("child_id", childID).Msg("child page processing failed")
		}
	}

	content := p.buildContent(ctx, page, title, resolution)

	result, err := p.detector.Detect(ctx, content.Text, content.Files)
	if err != nil {
		// fail open: a flaky detector must not block the pipeline, at the
		// cost of false negatives; the counter makes the degradation
		// visible to operators
		metrics.DetectorFailOpen.Inc()
		log.Warn().Err(err).Str("page_id", pageID).Msg("detector error, failing open as not detected")

		result = types.DetectionResult{}
	}

	if !result.Detected {
		log.Info().Str("page_id", pageID).Msg("no PII detected")
		metrics.PagesProcessed.WithLabelValues(metrics.OutcomeClean).Inc()

		return nil
	}

	log.Info().Str("page_id", pageID).Strs("categories", result.Categories).Msg("PII detected")

	if err := p.remediator.Remediate(ctx, page, content, result.Categories); err != nil {
		return err
	}

	metrics.PagesProcessed.WithLabelValues(metrics.OutcomeArchived).Inc()

	return nil
}

// buildContent assembles the detection artifact: title, rendered block
// text, rendered rows of any embedded databases, and normalized file
// attachments. Database and file failures degrade to partial content
// rather than failing the page.
func (p *Processor) buildContent(ctx context.Context, page types.Page, title string, resolution extract.Resolution) types.ExtractedContent {
	parts := make([]string, 0, 2+len(resolution.ChildDatabaseIDs))

	if title != "" {
		parts = append(parts, title)
	}

	if blockText := extract.FromBlocks(resolution.Blocks); blockText != "" {
		parts = append(parts, blockText)
	}

	for _, databaseID := range resolution.ChildDatabaseIDs {
		rows, err := p.documents.GetDatabaseEntries(ctx, databaseID)
		if err != nil {
			log.Warn().Err(err).Str("page_id", page.ID).Str("database_id", databaseID).Msg("failed to fetch database rows, continuing without them")
			continue
		}

		if rowText := extract.FromDatabase(rows); rowText != "" {
			parts = append(parts, rowText)
		}
	}

	content := types.ExtractedContent{
		Text:      strings.Join(parts, "\n"),
		Truncated: resolution.Truncated,
	}

	for _, ref := range extract.CollectFileReferences(resolution.Blocks) {
		normalized, err := files.Normalize(ref, p.fileOpts)
		if err != nil {
			log.Warn().Err(err).Str("page_id", page.ID).Msg("skipping malformed file reference")
			continue
		}

		content.Files = append(content.Files, normalized)
	}

	return content
}
