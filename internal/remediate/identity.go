package remediate

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Gabee01/pii-detector-sub000/internal/types"
)

// ResolveAuthorEmail maps a page's author to an email address. Emails
// present directly on the created_by or last_edited_by person records win;
// otherwise the user is looked up by ID, created_by first. Any lookup
// failure resolves to empty rather than an error; identity resolution is
// best-effort.
func (e *Executor) ResolveAuthorEmail(ctx context.Context, page types.Page) string {
	for _, candidate := range []*types.User{page.CreatedBy, page.LastEditedBy} {
		if candidate == nil {
			continue
		}

		if candidate.Person != nil && candidate.Person.Email != "" {
			return candidate.Person.Email
		}
	}

	for _, candidate := range []*types.User{page.CreatedBy, page.LastEditedBy} {
		if candidate == nil || candidate.ID == "" {
			continue
		}

		user, err := e.users.GetUser(ctx, candidate.ID)
		if err != nil {
			log.Warn().Err(err).Str("user_id", candidate.ID).Str("page_id", page.ID).Msg("author lookup failed")
			continue
		}

		if user.Person != nil && user.Person.Email != "" {
			return user.Person.Email
		}
	}

	return ""
}
