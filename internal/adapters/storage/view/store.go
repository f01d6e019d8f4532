package view

import (
	"errors"
	"time"

	"roster/internal/domain/listview"
)

// ErrViewNotFound is returned for unknown or expired views.
var ErrViewNotFound = errors.New("view not found")

// View is one open member list view.
type View struct {
	ID        string
	State     listview.State
	CreatedAt time.Time
	LastSeen  time.Time
}

// Store holds open views. Calls for the same view are serialized.
type Store interface {
	Create(id string, now time.Time) (View, error)
	Read(id string, now time.Time, fn func(View) error) error
	Update(id string, now time.Time, fn func(*listview.State) error) (View, error)
	Delete(id string) bool
	IdleSince(cutoff time.Time) []string
	Count() int
}
