// Package remediate executes the response to a PII finding: archiving the
// offending page and notifying its author on the messaging platform.
package remediate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Gabee01/pii-detector-sub000/internal/metrics"
	"github.com/Gabee01/pii-detector-sub000/internal/notion"
	"github.com/Gabee01/pii-detector-sub000/internal/slack"
	"github.com/Gabee01/pii-detector-sub000/internal/types"
)

// Archiver archives pages through the document API
type Archiver interface {
	ArchivePage(ctx context.Context, pageID string) error
}

// UserSource fetches workspace user records for identity resolution
type UserSource interface {
	GetUser(ctx context.Context, userID string) (types.User, error)
}

// Messenger resolves messaging-platform identities and delivers direct
// messages. The Slack client satisfies this.
type Messenger interface {
	LookupUserByEmail(ctx context.Context, email string) (slack.User, error)
	NotifyUser(ctx context.Context, userID, text string) error
}

// Executor runs archive and notify remediation for a detected page
type Executor struct {
	archiver  Archiver
	users     UserSource
	messenger Messenger
}

// NewExecutor creates a remediation executor. The messenger may be nil when
// notifications are unconfigured; archiving still proceeds.
func NewExecutor(archiver Archiver, users UserSource, messenger Messenger) (*Executor, error) {
	if archiver == nil {
		return nil, ErrNilArchiver
	}

	if users == nil {
		return nil, ErrNilUserSource
	}

	return &Executor{
		archiver:  archiver,
		users:     users,
		messenger: messenger,
	}, nil
}

// Remediate archives the page (unless it is workspace-root, which the API
// refuses to archive) and notifies the author. Notification is best-effort
// and never blocks or fails the remediation outcome.
func (e *Executor) Remediate(ctx context.Context, page types.Page, content types.ExtractedContent, categories []string) error {
	if page.IsWorkspaceRoot() {
		log.Warn().Str("page_id", page.ID).Msg("page is workspace-root and cannot be archived, logging only")
	} else {
		if err := e.Archive(ctx, page.ID); err != nil {
			log.Error().Err(err).Str("page_id", page.ID).Msg("failed to archive page")
			return err
		}
	}

	email := e.ResolveAuthorEmail(ctx, page)
	e.Notify(ctx, email, content, categories)

	return nil
}

// Archive archives a page through the document API. A 400-class response,
// or any error mentioning the workspace, confirms an unarchivable
// workspace-root page and is normalized to success. Archiving an
// already-archived page succeeds, keeping the operation idempotent.
func (e *Executor) Archive(ctx context.Context, pageID string) error {
	err := e.archiver.ArchivePage(ctx, pageID)
	if err == nil {
		metrics.PagesArchived.Inc()
		log.Info().Str("page_id", pageID).Msg("page archived")

		return nil
	}

	var apiErr *notion.APIError
	if errors.As(err, &apiErr) && apiErr.IsClientError() {
		log.Info().Str("page_id", pageID).Int("status", apiErr.Status).Msg("archive rejected for workspace-level page, treating as handled")
		return nil
	}

	if strings.Contains(err.Error(), "workspace") {
		log.Info().Str("page_id", pageID).Msg("archive rejected for workspace-level page, treating as handled")
		return nil
	}

	return err
}

// Notify delivers a quoted copy of the offending content to the resolved
// author. Every failure path logs and returns; notification must never
// block archiving.
func (e *Executor) Notify(ctx context.Context, email string, content types.ExtractedContent, categories []string) {
	if e.messenger == nil {
		log.Debug().Msg("messenger not configured, skipping notification")
		return
	}

	if email == "" {
		log.Warn().Msg("no author email resolved, skipping notification")
		return
	}

	user, err := e.messenger.LookupUserByEmail(ctx, email)
	if err != nil {
		log.Warn().Err(err).Str("email", email).Msg("messaging-platform user lookup failed, skipping notification")
		return
	}

	message := buildNotification(content, categories)

	if err := e.messenger.NotifyUser(ctx, user.ID, message); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to deliver notification")
		return
	}

	metrics.NotificationsSent.Inc()
	log.Info().Str("user_id", user.ID).Msg("author notified")
}

// categoryHints is the fixed catalogue of PII category explanations
// appended to every notification
var categoryHints = []struct {
	category string
	hint     string
}{
	{category: "email", hint: "email addresses"},
	{category: "ssn", hint: "social security numbers"},
	{category: "phone", hint: "phone numbers"},
	{category: "credit_card", hint: "credit card numbers"},
}

// buildNotification renders the direct message: a heads-up, the offending
// content quoted line by line, and the category hint catalogue
func buildNotification(content types.ExtractedContent, categories []string) string {
	var b strings.Builder

	b.WriteString(":rotating_light: Personal identifiable information was detected in a page you authored, and the page has been archived.\n")

	if len(categories) > 0 {
		b.WriteString(fmt.Sprintf("Detected: %s\n", strings.Join(categories, ", ")))
	}

	b.WriteString("\nOffending content:\n")

	for _, line := range strings.Split(content.Text, "\n") {
		b.WriteString("> ")
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\nPII we screen for includes:\n")

	for _, hint := range categoryHints {
		b.WriteString(fmt.Sprintf("• %s (%s)\n", hint.hint, hint.category))
	}

	b.WriteString("\nPlease remove sensitive data before restoring the page.")

	return b.String()
}
