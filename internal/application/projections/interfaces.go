package projections

import (
	"context"
	"time"

	viewStore "roster/internal/adapters/storage/view"
	domainMember "roster/internal/domain/member"
)

// MemberStore interface for member list queries.
type MemberStore interface {
	List(ctx context.Context, viewID string) ([]domainMember.Member, error)
}

// ViewStore interface for view state queries.
type ViewStore interface {
	Read(id string, now time.Time, fn func(viewStore.View) error) error
}
