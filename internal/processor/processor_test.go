package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gabee01/pii-detector-sub000/internal/extract"
	"github.com/Gabee01/pii-detector-sub000/internal/types"
)

// fakeDocuments serves pages, block trees and database rows from maps and
// records which endpoints were hit
type fakeDocuments struct {
	pages         map[string]types.Page
	blocks        map[string][]types.Block
	rows          map[string][]types.Page
	pageErrs      map[string]error
	pagesFetched  []string
	blocksFetched []string
}

func (f *fakeDocuments) GetPage(_ context.Context, pageID string) (types.Page, error) {
	f.pagesFetched = append(f.pagesFetched, pageID)

	if err := f.pageErrs[pageID]; err != nil {
		return types.Page{}, err
	}

	page, ok := f.pages[pageID]
	if !ok {
		return types.Page{}, errors.New("page not found")
	}

	return page, nil
}

func (f *fakeDocuments) GetBlockChildren(_ context.Context, blockID string) ([]types.Block, error) {
	f.blocksFetched = append(f.blocksFetched, blockID)
	return f.blocks[blockID], nil
}

func (f *fakeDocuments) GetDatabaseEntries(_ context.Context, databaseID string) ([]types.Page, error) {
	rows, ok := f.rows[databaseID]
	if !ok {
		return nil, errors.New("database not found")
	}

	return rows, nil
}

// fakeDetector returns a scripted result and records the text it saw
type fakeDetector struct {
	result types.DetectionResult
	err    error
	panics bool
	texts  []string
	files  [][]types.NormalizedFile
}

func (f *fakeDetector) Detect(_ context.Context, text string, attachments []types.NormalizedFile) (types.DetectionResult, error) {
	if f.panics {
		panic("detector exploded")
	}

	f.texts = append(f.texts, text)
	f.files = append(f.files, attachments)

	return f.result, f.err
}

// fakeRemediator records remediation calls in order
type fakeRemediator struct {
	err        error
	pageIDs    []string
	contents   []types.ExtractedContent
	categories [][]string
}

func (f *fakeRemediator) Remediate(_ context.Context, page types.Page, content types.ExtractedContent, categories []string) error {
	f.pageIDs = append(f.pageIDs, page.ID)
	f.contents = append(f.contents, content)
	f.categories = append(f.categories, categories)

	return f.err
}

func newTestProcessor(t *testing.T, documents *fakeDocuments, detector *fakeDetector, remediator *fakeRemediator, opts ...Option) *Processor {
	t.Helper()

	p, err := New(documents, detector, remediator, nil, opts...)
	require.NoError(t, err)

	return p
}

func titledPage(id, title string) types.Page {
	return types.Page{
		ID:     id,
		Parent: types.Parent{Type: "page_id", PageID: "parent"},
		Properties: map[string]types.PropertyValue{
			"Name": {Type: types.PropertyTypeTitle, Title: []types.RichText{{PlainText: title}}},
		},
	}
}

func paragraph(id, text string) types.Block {
	return types.Block{
		ID:        id,
		Type:      types.BlockTypeParagraph,
		Paragraph: &types.TextPayload{RichText: []types.RichText{{PlainText: text}}},
	}
}

func TestNew_Validation(t *testing.T) {
	docs := &fakeDocuments{}

	_, err := New(nil, &fakeDetector{}, &fakeRemediator{}, nil)
	assert.ErrorIs(t, err, ErrNilDocumentSource)

	_, err = New(docs, nil, &fakeRemediator{}, nil)
	assert.ErrorIs(t, err, ErrNilDetector)

	_, err = New(docs, &fakeDetector{}, nil, nil)
	assert.ErrorIs(t, err, ErrNilRemediator)
}

func TestProcessPage_TitleFastPathSkipsBlockFetch(t *testing.T) {
	docs := &fakeDocuments{
		pages: map[string]types.Page{
			"page-1": titledPage("page-1", "Contact jane@example.com"),
		},
	}
	detector := &fakeDetector{}
	remediator := &fakeRemediator{}
	p := newTestProcessor(t, docs, detector, remediator)

	require.NoError(t, p.ProcessPage(context.Background(), "page-1", "author-1"))

	// the title hit short-circuits: no block fetch, no detector call
	assert.Empty(t, docs.blocksFetched)
	assert.Empty(t, detector.texts)

	require.Equal(t, []string{"page-1"}, remediator.pageIDs)
	assert.Equal(t, []string{"email"}, remediator.categories[0])
	assert.Equal(t, "Contact jane@example.com", remediator.contents[0].Text)
}

func TestProcessPage_CleanTitleDetectedBody(t *testing.T) {
	docs := &fakeDocuments{
		pages: map[string]types.Page{
			"page-1": titledPage("page-1", "Q3 Planning"),
		},
		blocks: map[string][]types.Block{
			"page-1": {paragraph("b1", "Contact jane@example.com for details")},
		},
	}
	detector := &fakeDetector{result: types.DetectionResult{Detected: true, Categories: []string{"email"}}}
	remediator := &fakeRemediator{}
	p := newTestProcessor(t, docs, detector, remediator)

	require.NoError(t, p.ProcessPage(context.Background(), "page-1", "author-1"))

	require.Len(t, detector.texts, 1)
	assert.Equal(t, "Q3 Planning\nContact jane@example.com for details", detector.texts[0])

	require.Equal(t, []string{"page-1"}, remediator.pageIDs)
	assert.Equal(t, []string{"email"}, remediator.categories[0])
}

func TestProcessPage_CleanPageNoRemediation(t *testing.T) {
	docs := &fakeDocuments{
		pages: map[string]types.Page{
			"page-1": titledPage("page-1", "Q3 Planning"),
		},
		blocks: map[string][]types.Block{
			"page-1": {paragraph("b1", "roadmap review next week")},
		},
	}
	detector := &fakeDetector{}
	remediator := &fakeRemediator{}
	p := newTestProcessor(t, docs, detector, remediator)

	require.NoError(t, p.ProcessPage(context.Background(), "page-1", "author-1"))
	assert.Empty(t, remediator.pageIDs)
}

func TestProcessPage_DetectorErrorFailsOpen(t *testing.T) {
	docs := &fakeDocuments{
		pages: map[string]types.Page{
			"page-1": titledPage("page-1", "Q3 Planning"),
		},
		blocks: map[string][]types.Block{
			"page-1": {paragraph("b1", "something")},
		},
	}
	detector := &fakeDetector{err: errors.New("model timeout")}
	remediator := &fakeRemediator{}
	p := newTestProcessor(t, docs, detector, remediator)

	// degraded detector means the page passes as clean, not a failed job
	require.NoError(t, p.ProcessPage(context.Background(), "page-1", "author-1"))
	assert.Empty(t, remediator.pageIDs)
}

func TestProcessPage_ChildPageRemediatedBeforeParentCompletes(t *testing.T) {
	docs := &fakeDocuments{
		pages: map[string]types.Page{
			"page-1":  titledPage("page-1", "Parent"),
			"child-1": titledPage("child-1", "SSN 123-45-6789"),
		},
		blocks: map[string][]types.Block{
			"page-1": {
				paragraph("b1", "intro"),
				{ID: "child-1", Type: types.BlockTypeChildPage, ChildPage: &types.ChildPagePayload{Title: "secrets"}},
			},
		},
	}
	detector := &fakeDetector{}
	remediator := &fakeRemediator{}
	p := newTestProcessor(t, docs, detector, remediator)

	require.NoError(t, p.ProcessPage(context.Background(), "page-1", "author-1"))

	// the child's fast-path remediation lands even though the parent is clean
	assert.Equal(t, []string{"child-1"}, remediator.pageIDs)
	assert.Equal(t, []string{"ssn"}, remediator.categories[0])
}

func TestProcessPage_ChildFailureDoesNotFailParent(t *testing.T) {
	docs := &fakeDocuments{
		pages: map[string]types.Page{
			"page-1": titledPage("page-1", "Parent"),
		},
		pageErrs: map[string]error{
			"child-1": errors.New("forbidden"),
		},
		blocks: map[string][]types.Block{
			"page-1": {
				{ID: "child-1", Type: types.BlockTypeChildPage, ChildPage: &types.ChildPagePayload{Title: "secrets"}},
			},
		},
	}
	detector := &fakeDetector{}
	p := newTestProcessor(t, docs, detector, &fakeRemediator{})

	require.NoError(t, p.ProcessPage(context.Background(), "page-1", "author-1"))
}

func TestProcessPage_RepeatedPageProcessedOnce(t *testing.T) {
	docs := &fakeDocuments{
		pages: map[string]types.Page{
			"page-1":  titledPage("page-1", "Parent"),
			"child-1": titledPage("child-1", "Child"),
		},
		blocks: map[string][]types.Block{
			"page-1": {
				{ID: "child-1", Type: types.BlockTypeChildPage, ChildPage: &types.ChildPagePayload{Title: "a"}},
				{ID: "child-1", Type: types.BlockTypeChildPage, ChildPage: &types.ChildPagePayload{Title: "a"}},
			},
			"child-1": {paragraph("b1", "hello")},
		},
	}
	detector := &fakeDetector{}
	p := newTestProcessor(t, docs, detector, &fakeRemediator{})

	require.NoError(t, p.ProcessPage(context.Background(), "page-1", "author-1"))

	// the duplicate child_page reference is fetched once
	assert.Equal(t, []string{"page-1", "child-1"}, docs.pagesFetched)
}

func TestProcessPage_DatabaseRowsIncluded(t *testing.T) {
	row := types.Page{
		ID: "row-1",
		Properties: map[string]types.PropertyValue{
			"Name": {Type: types.PropertyTypeTitle, Title: []types.RichText{{PlainText: "Jane"}}},
		},
	}
	docs := &fakeDocuments{
		pages: map[string]types.Page{
			"page-1": titledPage("page-1", "Directory"),
		},
		blocks: map[string][]types.Block{
			"page-1": {{ID: "db-1", Type: types.BlockTypeChildDatabase}},
		},
		rows: map[string][]types.Page{
			"db-1": {row},
		},
	}
	detector := &fakeDetector{}
	p := newTestProcessor(t, docs, detector, &fakeRemediator{})

	require.NoError(t, p.ProcessPage(context.Background(), "page-1", "author-1"))

	require.Len(t, detector.texts, 1)
	assert.Contains(t, detector.texts[0], "Name: Jane")
}

func TestProcessPage_AttachmentsNormalized(t *testing.T) {
	docs := &fakeDocuments{
		pages: map[string]types.Page{
			"page-1": titledPage("page-1", "Scans"),
		},
		blocks: map[string][]types.Block{
			"page-1": {
				{ID: "img-1", Type: types.BlockTypeImage, Image: &types.FileReference{
					Type: types.FileOriginExternal,
					External: &types.FileURL{URL: "https://example.com/passport.png"},
				}},
			},
		},
	}
	detector := &fakeDetector{}
	p := newTestProcessor(t, docs, detector, &fakeRemediator{})

	require.NoError(t, p.ProcessPage(context.Background(), "page-1", "author-1"))

	require.Len(t, detector.files, 1)
	require.Len(t, detector.files[0], 1)
	assert.Equal(t, "image/png", detector.files[0][0].MIMEType)
}

func TestProcessPage_AlreadyArchivedSkipped(t *testing.T) {
	page := titledPage("page-1", "Contact jane@example.com")
	page.Archived = true

	docs := &fakeDocuments{pages: map[string]types.Page{"page-1": page}}
	remediator := &fakeRemediator{}
	p := newTestProcessor(t, docs, &fakeDetector{}, remediator)

	require.NoError(t, p.ProcessPage(context.Background(), "page-1", "author-1"))
	assert.Empty(t, remediator.pageIDs)
	assert.Empty(t, docs.blocksFetched)
}

func TestProcessPage_PageFetchErrorReturned(t *testing.T) {
	docs := &fakeDocuments{
		pageErrs: map[string]error{"page-1": errors.New("unavailable")},
	}
	p := newTestProcessor(t, docs, &fakeDetector{}, &fakeRemediator{})

	assert.Error(t, p.ProcessPage(context.Background(), "page-1", "author-1"))
}

func TestProcessPage_PanicConvertedToError(t *testing.T) {
	docs := &fakeDocuments{
		pages: map[string]types.Page{
			"page-1": titledPage("page-1", "Q3 Planning"),
		},
		blocks: map[string][]types.Block{
			"page-1": {paragraph("b1", "x")},
		},
	}
	p := newTestProcessor(t, docs, &fakeDetector{panics: true}, &fakeRemediator{})

	err := p.ProcessPage(context.Background(), "page-1", "author-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPipelinePanic)
}

func TestProcessPage_Idempotent(t *testing.T) {
	docs := &fakeDocuments{
		pages: map[string]types.Page{
			"page-1": titledPage("page-1", "Contact jane@example.com"),
		},
	}
	remediator := &fakeRemediator{}
	p := newTestProcessor(t, docs, &fakeDetector{}, remediator)

	require.NoError(t, p.ProcessPage(context.Background(), "page-1", "author-1"))
	require.NoError(t, p.ProcessPage(context.Background(), "page-1", "author-1"))

	// each delivery re-runs the same remediation; archiving is idempotent
	assert.Equal(t, []string{"page-1", "page-1"}, remediator.pageIDs)
}

func TestProcessPage_TruncationFlagPropagated(t *testing.T) {
	deep := paragraph("leaf", "bottom")
	blocks := map[string][]types.Block{}
	parentID := "page-1"

	// build a chain deeper than the resolver bound
	for i := 0; i < 4; i++ {
		id := string(rune('a' + i))
		blocks[parentID] = []types.Block{{ID: id, Type: types.BlockTypeToggle, HasChildren: true, Toggle: &types.TextPayload{}}}
		parentID = id
	}

	blocks[parentID] = []types.Block{deep}

	docs := &fakeDocuments{
		pages: map[string]types.Page{
			"page-1": titledPage("page-1", "Deep"),
		},
		blocks: blocks,
	}
	detector := &fakeDetector{result: types.DetectionResult{Detected: true, Categories: []string{"ssn"}}}
	remediator := &fakeRemediator{}

	p, err := New(docs, detector, remediator, []extract.ResolverOption{extract.WithMaxDepth(2)})
	require.NoError(t, err)

	require.NoError(t, p.ProcessPage(context.Background(), "page-1", "author-1"))

	require.Len(t, remediator.contents, 1)
	assert.True(t, remediator.contents[0].Truncated)
}
