package member

import (
	"strings"
)

// Member is one roster entry.
// ID is assigned when the list is loaded; the remote schema carries no identifier.
type Member struct {
	ID    string `json:"id"`
	Name  string `json:"full_name"`
	Email string `json:"full_email"`
	Role  string `json:"role"`
}

// Fields holds the user-editable part of a Member.
type Fields struct {
	Name  string `json:"full_name"`
	Email string `json:"full_email"`
	Role  string `json:"role"`
}

// Fields returns a copy of the member's editable fields.
// INVARIANT: Member is not mutated
func (m Member) Fields() Fields {
	return Fields{Name: m.Name, Email: m.Email, Role: m.Role}
}

// Apply overwrites the editable fields with f. The ID is kept.
// PRE: none (edited values are not validated)
// POST: Name, Email and Role equal f
func (m *Member) Apply(f Fields) {
	m.Name = f.Name
	m.Email = f.Email
	m.Role = f.Role
}

// Matches reports whether term is a case-insensitive substring of the
// member's name, email or role. An empty term matches every member.
// INVARIANT: term is used as given, without trimming
func (m Member) Matches(term string) bool {
	if term == "" {
		return true
	}
	t := strings.ToLower(term)
	return strings.Contains(strings.ToLower(m.Name), t) ||
		strings.Contains(strings.ToLower(m.Email), t) ||
		strings.Contains(strings.ToLower(m.Role), t)
}
