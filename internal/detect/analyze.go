package detect

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/theopenlane/httpsling"

	"github.com/Gabee01/pii-detector-sub000/internal/types"
)

const (
	// analysisSchemaName is the identifier for the PII analysis JSON schema
	analysisSchemaName = "pii_analysis"
	// analysisPrompt instructs the model to report PII findings only
	analysisPrompt = "You are a data loss prevention analyst. Examine the provided document content " +
		"and any attachments for personally identifiable information: names tied to identifiers, " +
		"email addresses, phone numbers, government ID numbers, financial account or card numbers, " +
		"health information, and physical addresses. Report only what is present."
)

// analysisRequest is the request body for a model run
type analysisRequest struct {
	Messages       []message      `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
}

// message is a single chat message in the analysis request
type message struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

// contentPart is one element of a multimodal message body
type contentPart struct {
	Type        string        `json:"type"`
	Text        string        `json:"text,omitempty"`
	ImageURL    *urlReference `json:"image_url,omitempty"`
	DocumentURL *urlReference `json:"document_url,omitempty"`
}

// urlReference wraps an attachment URL with its fetch headers
type urlReference struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

// responseFormat specifies JSON schema extraction
type responseFormat struct {
	Type       string               `json:"type"`
	JSONSchema jsonSchemaDefinition `json:"json_schema"`
}

// jsonSchemaDefinition wraps the JSON schema
type jsonSchemaDefinition struct {
	Name   string     `json:"name"`
	Schema jsonSchema `json:"schema"`
}

// jsonSchema is the JSON schema for the analysis reply
type jsonSchema struct {
	Type       string                        `json:"type"`
	Properties map[string]jsonSchemaProperty `json:"properties"`
	Required   []string                      `json:"required,omitempty"`
}

// jsonSchemaProperty defines a single JSON schema property
type jsonSchemaProperty struct {
	Type        string              `json:"type"`
	Description string              `json:"description"`
	Items       *jsonSchemaProperty `json:"items,omitempty"`
}

// piiAnalysis is the structured reply expected from the model
type piiAnalysis struct {
	// HasPII reports whether any PII was found
	HasPII bool `json:"has_pii"`
	// Categories are lowercase tags for each kind of PII found
	Categories []string `json:"categories"`
}

// analysisResponse is the backend response envelope
type analysisResponse struct {
	Success bool        `json:"success"`
	Result  piiAnalysis `json:"result"`
}

// Detect analyzes extracted content for PII. A multimodal model run is used
// when files are present, embedding at most one image and one document
// attachment; otherwise a text-only run. Parse failures surface as
// detection errors, never panics — callers fail open on any error here.
func (c *Client) Detect(ctx context.Context, text string, files []types.NormalizedFile) (types.DetectionResult, error) {
	model := c.textModel
	if len(files) > 0 {
		model = c.multimodalModel
	}

	body := analysisRequest{
		Messages: []message{
			{Role: "system", Content: []contentPart{{Type: "text", Text: analysisPrompt}}},
			{Role: "user", Content: buildUserContent(text, files)},
		},
		ResponseFormat: buildAnalysisSchema(),
	}

	requester := httpsling.MustNew(
		httpsling.URL(c.apiURL(model)),
		httpsling.Post(),
		httpsling.BearerAuth(c.apiToken),
		httpsling.JSONBody(body),
		httpsling.WithHTTPClient(c.httpClient),
	)

	result, err := c.breaker.Execute(func() (any, error) {
		var aiResp analysisResponse

		resp, err := requester.ReceiveWithContext(ctx, &aiResp)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}
		defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
		}

		if !aiResp.Success {
			return nil, ErrAnalysisFailed
		}

		return aiResp.Result, nil
	})
	if err != nil {
		return types.DetectionResult{}, err
	}

	analysis, ok := result.(piiAnalysis)
	if !ok {
		return types.DetectionResult{}, ErrAnalysisFailed
	}

	return types.DetectionResult{
		Detected:   analysis.HasPII,
		Categories: normalizeCategories(analysis.Categories),
	}, nil
}

// buildUserContent assembles the user message: the document text plus at
// most one image and one document attachment. The single-attachment cap per
// kind is a known limitation of the multimodal request shape; extras are
// dropped with a log line.
func buildUserContent(text string, files []types.NormalizedFile) []contentPart {
	content := []contentPart{{Type: "text", Text: text}}

	var imageAttached, documentAttached bool

	for _, file := range files {
		ref := &urlReference{URL: file.URL, Headers: file.Headers}

		switch {
		case strings.HasPrefix(file.MIMEType, "image/") && !imageAttached:
			content = append(content, contentPart{Type: "image_url", ImageURL: ref})
			imageAttached = true
		case !strings.HasPrefix(file.MIMEType, "image/") && !documentAttached:
			content = append(content, contentPart{Type: "document_url", DocumentURL: ref})
			documentAttached = true
		default:
			log.Debug().Str("file", file.Name).Msg("attachment limit reached, dropping file from detection request")
		}
	}

	return content
}

// buildAnalysisSchema constructs the JSON schema constraining the model
// reply to a boolean finding plus category tags
func buildAnalysisSchema() responseFormat {
	return responseFormat{
		Type: "json_schema",
		JSONSchema: jsonSchemaDefinition{
			Name: analysisSchemaName,
			Schema: jsonSchema{
				Type: "object",
				Properties: map[string]jsonSchemaProperty{
					"has_pii": {
						Type:        "boolean",
						Description: "True when the content contains any personally identifiable information",
					},
					"categories": {
						Type:        "array",
						Description: "Lowercase tags for each kind of PII found, e.g. email, ssn, phone, credit_card, address, health",
						Items: &jsonSchemaProperty{
							Type:        "string",
							Description: "A single PII category tag",
						},
					},
				},
				Required: []string{"has_pii", "categories"},
			},
		},
	}
}

// normalizeCategories lowercases and trims category tags, dropping empties
func normalizeCategories(categories []string) []string {
	normalized := make([]string, 0, len(categories))

	for _, category := range categories {
		category = strings.ToLower(strings.TrimSpace(category))
		if category != "" {
			normalized = append(normalized, category)
		}
	}

	if len(normalized) == 0 {
		return nil
	}

	return normalized
}
