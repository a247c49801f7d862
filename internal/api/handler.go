// Package api provides the HTTP ingress for workspace webhook deliveries
// plus liveness and metrics endpoints.
package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Gabee01/pii-detector-sub000/internal/dispatch"
)

// signatureHeader carries the HMAC-SHA256 of the raw request body, hex
// encoded with a sha256= prefix
const signatureHeader = "X-Notion-Signature"

// Enqueuer accepts page-changed events for asynchronous processing. The
// dispatcher satisfies this.
type Enqueuer interface {
	Enqueue(pageID, authorID, webhookID string) (dispatch.Job, error)
}

// Handler manages the webhook and operational endpoints
type Handler struct {
	enqueuer Enqueuer
	secret   string
}

// webhookPayload covers both delivery shapes the platform has used: the
// current entity/authors events and the legacy page/user events, plus the
// one-time subscription verification message
type webhookPayload struct {
	ID                string       `json:"id,omitempty"`
	Type              string       `json:"type,omitempty"`
	VerificationToken string       `json:"verification_token,omitempty"`
	Entity            *eventEntity `json:"entity,omitempty"`
	Authors           []eventActor `json:"authors,omitempty"`
	Page              *eventEntity `json:"page,omitempty"`
	User              *eventActor  `json:"user,omitempty"`
}

// eventEntity identifies the changed object
type eventEntity struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
}

// eventActor identifies the user behind the change
type eventActor struct {
	ID string `json:"id"`
}

// pageID returns the changed page's ID from whichever shape is present
func (p webhookPayload) pageID() string {
	if p.Entity != nil {
		return p.Entity.ID
	}

	if p.Page != nil {
		return p.Page.ID
	}

	return ""
}

// authorID returns the acting user's ID from whichever shape is present
func (p webhookPayload) authorID() string {
	if len(p.Authors) > 0 {
		return p.Authors[0].ID
	}

	if p.User != nil {
		return p.User.ID
	}

	return ""
}

// handleWebhook verifies, parses and enqueues one webhook delivery. The
// platform retries non-2xx responses, so every accepted or deduplicated
// event answers 202 and only transport-level problems surface as errors.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, errCodeInvalidRequest, "unreadable request body")
		return
	}

	if !h.verifySignature(r, body) {
		writeError(w, http.StatusUnauthorized, errCodeUnauthorized, "signature verification failed")
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, errCodeInvalidRequest, "malformed JSON payload")
		return
	}

	// subscription handshake: echo the token so the platform can confirm
	// ownership of the endpoint
	if payload.VerificationToken != "" {
		log.Info().Msg("webhook subscription verification received")
		writeJSON(w, http.StatusOK, map[string]string{"verification_token": payload.VerificationToken})

		return
	}

	pageID := payload.pageID()
	if pageID == "" {
		writeError(w, http.StatusBadRequest, errCodeValidation, "event carries no page id")
		return
	}

	job, err := h.enqueuer.Enqueue(pageID, payload.authorID(), payload.ID)

	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, acceptedResponse{Accepted: true, JobID: job.ID})
	case errors.Is(err, dispatch.ErrDuplicateJob):
		// redeliveries are expected; acknowledge so the platform stops
		writeJSON(w, http.StatusAccepted, acceptedResponse{Accepted: true, Deduplicated: true})
	case errors.Is(err, dispatch.ErrQueueFull):
		writeError(w, http.StatusServiceUnavailable, errCodeUnavailable, "processing queue is full")
	default:
		writeError(w, http.StatusBadRequest, errCodeValidation, err.Error())
	}
}

// acceptedResponse acknowledges an enqueued delivery
type acceptedResponse struct {
	Accepted     bool   `json:"accepted"`
	JobID        string `json:"job_id,omitempty"`
	Deduplicated bool   `json:"deduplicated,omitempty"`
}

// verifySignature checks the delivery's HMAC against the shared secret.
// With no secret configured all deliveries pass, which keeps local
// development working without a subscription.
func (h *Handler) verifySignature(r *http.Request, body []byte) bool {
	if h.secret == "" {
		return true
	}

	provided := strings.TrimPrefix(r.Header.Get(signatureHeader), "sha256=")
	if provided == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)

	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(provided))
}

// livenessResponse reports process liveness
type livenessResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// handleLiveness answers liveness probes
func (h *Handler) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, livenessResponse{
		Status:    "ok",
		Service:   "pii-detector",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
