// Package validator rejects caller-contract violations before any
// retrieval or generation work begins.
package validator

import (
	"fmt"
	"strings"

	"github.com/docbrief/nlp-engine/internal/entity"
)

// ValidateQuery normalizes and checks a pipeline query. It fills in
// the default owner id and returns a client error for empty text, a
// missing question in ask mode, or unknown mode/audience values.
func ValidateQuery(q *entity.Query) error {
	if strings.TrimSpace(q.OwnerID) == "" {
		q.OwnerID = entity.DefaultOwnerID
	}

	if !q.Mode.Valid() {
		return fmt.Errorf("mode %q: %w", q.Mode, entity.ErrInvalidMode)
	}

	if strings.TrimSpace(q.Text) == "" {
		return entity.ErrEmptyText
	}

	if q.Mode == entity.ModeAsk && strings.TrimSpace(q.Question) == "" {
		return entity.ErrMissingQuestion
	}

	if q.Mode == entity.ModeSimplify && q.Audience != "" && !q.Audience.Valid() {
		return fmt.Errorf("audience %q: %w", q.Audience, entity.ErrInvalidAudience)
	}

	return nil
}
