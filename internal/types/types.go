// Package types holds the shared document and detection model used across
// the processing pipeline.
package types

// ParentTypeWorkspace marks a page parented directly under the workspace
// root. Workspace-root pages cannot be archived through the document API.
const ParentTypeWorkspace = "workspace"

// Parent identifies where a page or block lives in the document hierarchy
type Parent struct {
	// Type is one of workspace, page_id, database_id or block_id
	Type string `json:"type"`
	// PageID is set when Type is page_id
	PageID string `json:"page_id,omitempty"`
	// DatabaseID is set when Type is database_id
	DatabaseID string `json:"database_id,omitempty"`
	// Workspace is true when Type is workspace
	Workspace bool `json:"workspace,omitempty"`
}

// Page is a single document fetched from the workspace API
type Page struct {
	// ID is the page identifier
	ID string `json:"id"`
	// Parent locates the page in the hierarchy
	Parent Parent `json:"parent"`
	// Archived reports whether the page is already archived
	Archived bool `json:"archived"`
	// Properties maps property names to their tagged values
	Properties map[string]PropertyValue `json:"properties"`
	// CreatedBy references the user that created the page
	CreatedBy *User `json:"created_by,omitempty"`
	// LastEditedBy references the user that last edited the page
	LastEditedBy *User `json:"last_edited_by,omitempty"`
	// URL is the public URL of the page, when exposed by the API
	URL string `json:"url,omitempty"`
}

// IsWorkspaceRoot reports whether the page is parented directly under the
// workspace and therefore cannot be archived
func (p Page) IsWorkspaceRoot() bool {
	return p.Parent.Type == ParentTypeWorkspace
}

// User is a workspace user record
type User struct {
	// ID is the user identifier
	ID string `json:"id"`
	// Type is either person or bot
	Type string `json:"type,omitempty"`
	// Name is the display name
	Name string `json:"name,omitempty"`
	// Person holds person-specific fields when Type is person
	Person *Person `json:"person,omitempty"`
}

// Person holds the person payload of a user record
type Person struct {
	// Email is the account email, present only when the integration is
	// allowed to read it
	Email string `json:"email,omitempty"`
}

// RichText is a single rich text fragment inside a block or property
type RichText struct {
	// Type is usually text, mention or equation
	Type string `json:"type,omitempty"`
	// PlainText is the rendered text content of the fragment
	PlainText string `json:"plain_text"`
	// Href is an optional link target
	Href string `json:"href,omitempty"`
}

// Block type identifiers recognized by the renderer. Unknown types render
// to nothing rather than failing.
const (
	BlockTypeParagraph        = "paragraph"
	BlockTypeHeading1         = "heading_1"
	BlockTypeHeading2         = "heading_2"
	BlockTypeHeading3         = "heading_3"
	BlockTypeBulletedListItem = "bulleted_list_item"
	BlockTypeNumberedListItem = "numbered_list_item"
	BlockTypeToDo             = "to_do"
	BlockTypeToggle           = "toggle"
	BlockTypeCode             = "code"
	BlockTypeQuote            = "quote"
	BlockTypeCallout          = "callout"
	BlockTypeChildPage        = "child_page"
	BlockTypeChildDatabase    = "child_database"
	BlockTypeImage            = "image"
	BlockTypeFile             = "file"
)

// Block is a single node in a page's block tree. The payload field matching
// Type is populated; all others are nil.
type Block struct {
	// ID is the block identifier
	ID string `json:"id"`
	// Type selects which payload field is populated
	Type string `json:"type"`
	// HasChildren indicates nested blocks must be fetched separately
	HasChildren bool `json:"has_children"`

	Paragraph        *TextPayload      `json:"paragraph,omitempty"`
	Heading1         *TextPayload      `json:"heading_1,omitempty"`
	Heading2         *TextPayload      `json:"heading_2,omitempty"`
	Heading3         *TextPayload      `json:"heading_3,omitempty"`
	BulletedListItem *TextPayload      `json:"bulleted_list_item,omitempty"`
	NumberedListItem *TextPayload      `json:"numbered_list_item,omitempty"`
	ToDo             *ToDoPayload      `json:"to_do,omitempty"`
	Toggle           *TextPayload      `json:"toggle,omitempty"`
	Code             *CodePayload      `json:"code,omitempty"`
	Quote            *TextPayload      `json:"quote,omitempty"`
	Callout          *TextPayload      `json:"callout,omitempty"`
	ChildPage        *ChildPagePayload `json:"child_page,omitempty"`
	Image            *FileReference    `json:"image,omitempty"`
	File             *FileReference    `json:"file,omitempty"`

	// Children holds nested blocks attached by the resolver; the API never
	// inlines them
	Children []Block `json:"children,omitempty"`
}

// TextPayload is the shared payload shape for text-bearing block types
type TextPayload struct {
	// RichText holds the text fragments in document order
	RichText []RichText `json:"rich_text"`
}

// ToDoPayload is the payload of a to_do block
type ToDoPayload struct {
	// RichText holds the item text
	RichText []RichText `json:"rich_text"`
	// Checked reports whether the item is ticked
	Checked bool `json:"checked"`
}

// CodePayload is the payload of a code block
type CodePayload struct {
	// RichText holds the code content
	RichText []RichText `json:"rich_text"`
	// Language is the fence language tag
	Language string `json:"language,omitempty"`
}

// ChildPagePayload is the payload of a child_page block
type ChildPagePayload struct {
	// Title is the embedded page title
	Title string `json:"title"`
}

// File reference origin types
const (
	FileOriginHosted   = "file"
	FileOriginExternal = "external"
	FileOriginInline   = "inline"
)

// FileReference is a heterogeneous file attachment as returned by the API,
// before normalization
type FileReference struct {
	// Type is file (platform hosted), external (third-party URL) or inline
	Type string `json:"type"`
	// File holds the hosted variant payload
	File *FileURL `json:"file,omitempty"`
	// External holds the external variant payload
	External *FileURL `json:"external,omitempty"`
	// Name is an optional display name
	Name string `json:"name,omitempty"`
}

// FileURL wraps the url field shared by hosted and external file payloads
type FileURL struct {
	// URL is the fetchable location of the file
	URL string `json:"url"`
	// ExpiryTime is set on platform-hosted, time-limited URLs
	ExpiryTime string `json:"expiry_time,omitempty"`
}

// Property value type identifiers recognized by the database row renderer
const (
	PropertyTypeTitle       = "title"
	PropertyTypeRichText    = "rich_text"
	PropertyTypeText        = "text"
	PropertyTypeNumber      = "number"
	PropertyTypeSelect      = "select"
	PropertyTypeMultiSelect = "multi_select"
	PropertyTypeDate        = "date"
	PropertyTypeCheckbox    = "checkbox"
)

// PropertyValue is a tagged union over the supported property types. The
// field matching Type is populated; unknown types carry no payload and
// render to nothing.
type PropertyValue struct {
	// Type selects which payload field is populated
	Type string `json:"type"`

	Title       []RichText     `json:"title,omitempty"`
	RichText    []RichText     `json:"rich_text,omitempty"`
	Text        []RichText     `json:"text,omitempty"`
	Number      *float64       `json:"number,omitempty"`
	Select      *SelectOption  `json:"select,omitempty"`
	MultiSelect []SelectOption `json:"multi_select,omitempty"`
	Date        *DateValue     `json:"date,omitempty"`
	Checkbox    *bool          `json:"checkbox,omitempty"`
}

// SelectOption is a single option of a select or multi_select property
type SelectOption struct {
	// Name is the option label
	Name string `json:"name"`
}

// DateValue is the payload of a date property
type DateValue struct {
	// Start is the start date in ISO 8601
	Start string `json:"start"`
	// End is the optional end date in ISO 8601
	End string `json:"end,omitempty"`
}

// NormalizedFile is the canonical file shape passed to detection regardless
// of the original reference's origin
type NormalizedFile struct {
	// URL is the fetchable location
	URL string `json:"url"`
	// MIMEType is guessed from the file extension
	MIMEType string `json:"mimetype"`
	// Name is the filename extracted from the URL path
	Name string `json:"name"`
	// Headers are the request headers needed to fetch the file; empty for
	// pre-signed URLs
	Headers map[string]string `json:"headers,omitempty"`
}

// ExtractedContent is the single artifact handed to the detector: the
// flattened text of a page plus its normalized file attachments
type ExtractedContent struct {
	// Text is the page title followed by block text in document order
	Text string `json:"text"`
	// Files are the normalized attachments referenced by the page
	Files []NormalizedFile `json:"files,omitempty"`
	// Truncated reports that traversal hit the depth or node bound and the
	// text is a partial rendering
	Truncated bool `json:"truncated,omitempty"`
}

// DetectionResult is the normalized outcome of a detector call
type DetectionResult struct {
	// Detected reports whether any PII was found
	Detected bool `json:"detected"`
	// Categories are free-form lowercase tags such as email or ssn
	Categories []string `json:"categories,omitempty"`
}
