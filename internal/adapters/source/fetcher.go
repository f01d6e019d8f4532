package source

import (
	"context"
	"errors"

	domain "roster/internal/domain/member"
)

// DefaultURL is the remote member list.
const DefaultURL = "https://saaheeleox.github.io/reactdata/member.json"

// ErrFetchFailed wraps every failure to obtain the member list: transport,
// non-2xx status and undecodable body alike.
var ErrFetchFailed = errors.New("fetch member list failed")

// Record is one element of the remote JSON array.
type Record struct {
	Name  string `json:"full_name"`
	Email string `json:"full_email"`
	Role  string `json:"role"`
}

// Fields converts a record to member fields.
func (r Record) Fields() domain.Fields {
	return domain.Fields{Name: r.Name, Email: r.Email, Role: r.Role}
}

// Fetcher retrieves the member list from its source.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Record, error)
}
