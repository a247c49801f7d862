// Package files converts the heterogeneous file references returned by the
// document API into the single canonical shape the detector consumes.
package files

import (
	"fmt"
	"mime"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/Gabee01/pii-detector-sub000/internal/types"
)

const (
	// fallbackMIMEType is used when the file extension is unknown
	fallbackMIMEType = "application/octet-stream"
	// fallbackFileName is used when no filename can be derived from the URL
	fallbackFileName = "attachment"
	// tokenEnvVar is the environment variable consulted for the bearer
	// token when no explicit token option is provided
	tokenEnvVar = "NOTION_TOKEN"
	// testFallbackToken keeps fixture-driven tests working without
	// environment setup; it never authenticates against a real API
	testFallbackToken = "test-token"
)

// mimeTypes maps lowercase file extensions to MIME types for the formats
// the detector understands. Extensions not listed here fall back to
// mime.TypeByExtension and then to application/octet-stream.
var mimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".txt":  "text/plain",
	".csv":  "text/csv",
	".md":   "text/markdown",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// presignedHostMarkers identify object-storage hosts that serve pre-signed
// URLs. Adding an Authorization header to a pre-signed request invalidates
// its signature, so these URLs are fetched with no auth headers at all.
var presignedHostMarkers = []string{
	"amazonaws.com",
	"storage.googleapis.com",
}

// presignedQueryMarkers identify the signed-request query parameters that
// accompany pre-signed object-storage URLs
var presignedQueryMarkers = []string{
	"X-Amz-Signature",
	"X-Goog-Signature",
}

// Options configures normalization
type Options struct {
	// Token is an explicit bearer token; it takes priority over the
	// environment token and the test fallback
	Token string
}

// Normalize converts a raw file reference into the canonical NormalizedFile
// shape. Malformed references return a descriptive error, never a panic.
func Normalize(ref types.FileReference, opts Options) (types.NormalizedFile, error) {
	var rawURL string

	switch ref.Type {
	case types.FileOriginHosted:
		if ref.File == nil || ref.File.URL == "" {
			return types.NormalizedFile{}, fmt.Errorf("%w: hosted reference has no url", ErrMissingURL)
		}

		rawURL = ref.File.URL
	case types.FileOriginExternal:
		if ref.External == nil || ref.External.URL == "" {
			return types.NormalizedFile{}, fmt.Errorf("%w: external reference has no url", ErrMissingURL)
		}

		rawURL = ref.External.URL
	default:
		return types.NormalizedFile{}, fmt.Errorf("%w: %q", ErrUnknownReferenceType, ref.Type)
	}

	name := ref.Name
	if name == "" {
		name = fileNameFromURL(rawURL)
	}

	normalized := types.NormalizedFile{
		URL:      rawURL,
		MIMEType: guessMIMEType(name),
		Name:     name,
	}

	if !isPresignedURL(rawURL) {
		normalized.Headers = map[string]string{
			"Authorization": "Bearer " + resolveToken(opts),
		}
	}

	return normalized, nil
}

// fileNameFromURL extracts the final path segment of a URL, ignoring any
// query string
func fileNameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Path == "" || parsed.Path == "/" {
		return fallbackFileName
	}

	name := path.Base(parsed.Path)
	if name == "." || name == "/" {
		return fallbackFileName
	}

	return name
}

// guessMIMEType resolves a MIME type from the filename extension
func guessMIMEType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return fallbackMIMEType
	}

	if mt, ok := mimeTypes[ext]; ok {
		return mt
	}

	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}

	return fallbackMIMEType
}

// isPresignedURL reports whether the URL points at object storage with a
// signed-request marker in its query string
func isPresignedURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	host := strings.ToLower(parsed.Hostname())

	var hostMatch bool

	for _, marker := range presignedHostMarkers {
		if host == marker || strings.HasSuffix(host, "."+marker) {
			hostMatch = true
			break
		}
	}

	if !hostMatch {
		return false
	}

	query := parsed.Query()
	for _, marker := range presignedQueryMarkers {
		if query.Has(marker) {
			return true
		}
	}

	return false
}

// resolveToken picks the bearer token: explicit option first, then the
// environment, then the test fallback constant
func resolveToken(opts Options) string {
	if opts.Token != "" {
		return opts.Token
	}

	if token := os.Getenv(tokenEnvVar); token != "" {
		return token
	}

	return testFallbackToken
}
