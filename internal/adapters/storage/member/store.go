package member

import (
	"context"
	"errors"

	domain "roster/internal/domain/member"
)

// ErrMemberNotFound is returned when a member ID is not present in a view's list.
var ErrMemberNotFound = errors.New("member not found")

// Store holds the loaded member list of each view, in source order.
type Store interface {
	ReplaceAll(ctx context.Context, viewID string, members []domain.Member) error
	List(ctx context.Context, viewID string) ([]domain.Member, error)
	GetByID(ctx context.Context, viewID, id string) (domain.Member, error)
	Save(ctx context.Context, viewID string, value domain.Member) error
	Delete(ctx context.Context, viewID, id string) error
	DeleteView(ctx context.Context, viewID string) error
	Count(ctx context.Context, viewID string) (int, error)
}
