package extract

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Gabee01/pii-detector-sub000/internal/types"
)

const (
	// DefaultMaxDepth bounds how deep nested block resolution descends
	DefaultMaxDepth = 10
	// DefaultMaxBlocks bounds the total number of blocks resolved for one
	// page, guarding against pathological fan-out
	DefaultMaxBlocks = 2000
)

// BlockSource fetches the direct children of a block. The document API
// client satisfies this.
type BlockSource interface {
	GetBlockChildren(ctx context.Context, blockID string) ([]types.Block, error)
}

// Resolver fetches nested block children lazily and attaches them under
// each block's Children field before rendering
type Resolver struct {
	source    blockSourceFunc
	maxDepth  int
	maxBlocks int
}

// blockSourceFunc adapts BlockSource for internal use
type blockSourceFunc func(ctx context.Context, blockID string) ([]types.Block, error)

// ResolverOption configures the Resolver
type ResolverOption func(*Resolver)

// WithMaxDepth overrides the default traversal depth bound
func WithMaxDepth(depth int) ResolverOption {
	return func(r *Resolver) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// WithMaxBlocks overrides the default total block bound
func WithMaxBlocks(count int) ResolverOption {
	return func(r *Resolver) {
		if count > 0 {
			r.maxBlocks = count
		}
	}
}

// NewResolver creates a resolver backed by the given block source
func NewResolver(source BlockSource, opts ...ResolverOption) (*Resolver, error) {
	if source == nil {
		return nil, ErrNilBlockSource
	}

	r := &Resolver{
		source:    source.GetBlockChildren,
		maxDepth:  DefaultMaxDepth,
		maxBlocks: DefaultMaxBlocks,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Resolution is the outcome of resolving a page's block tree
type Resolution struct {
	// Blocks is the input tree with nested children attached
	Blocks []types.Block
	// ChildPageIDs are the child_page block IDs discovered during
	// traversal; each must be processed as its own unit
	ChildPageIDs []string
	// ChildDatabaseIDs are the child_database block IDs discovered during
	// traversal; their rows are rendered into the parent's text
	ChildDatabaseIDs []string
	// Truncated reports that traversal stopped at the depth or block bound
	// and Blocks is a partial tree
	Truncated bool
}

// Resolve walks the block tree depth-first, fetching children for any block
// that has them, except child_page blocks, whose subtrees belong to an
// independent processing unit. Traversal stops descending when it hits the
// depth or block bound; the partial tree is returned with Truncated set
// rather than failing the page.
func (r *Resolver) Resolve(ctx context.Context, blocks []types.Block) (Resolution, error) {
	res := Resolution{}
	budget := r.maxBlocks

	resolved, err := r.resolveLevel(ctx, blocks, 0, &budget, &res)
	if err != nil {
		return Resolution{}, err
	}

	res.Blocks = resolved

	return res, nil
}

// resolveLevel resolves one level of the tree, recursing into fetched
// children
func (r *Resolver) resolveLevel(ctx context.Context, blocks []types.Block, depth int, budget *int, res *Resolution) ([]types.Block, error) {
	out := make([]types.Block, 0, len(blocks))

	for _, block := range blocks {
		if *budget <= 0 {
			res.Truncated = true
			return out, nil
		}

		*budget--

		switch block.Type {
		case types.BlockTypeChildPage:
			// sub-pages get their own fast-path check, detection and
			// remediation; never inline them here
			res.ChildPageIDs = append(res.ChildPageIDs, block.ID)
			out = append(out, block)

			continue
		case types.BlockTypeChildDatabase:
			res.ChildDatabaseIDs = append(res.ChildDatabaseIDs, block.ID)
			out = append(out, block)

			continue
		}

		if block.HasChildren {
			if depth+1 >= r.maxDepth {
				log.Warn().Str("block_id", block.ID).Int("depth", depth+1).Msg("block tree depth bound reached, truncating")

				res.Truncated = true
				out = append(out, block)

				continue
			}

			children, err := r.source(ctx, block.ID)
			if err != nil {
				return nil, err
			}

			resolvedChildren, err := r.resolveLevel(ctx, children, depth+1, budget, res)
			if err != nil {
				return nil, err
			}

			block.Children = resolvedChildren
		}

		out = append(out, block)
	}

	return out, nil
}
