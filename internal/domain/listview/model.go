package listview

import (
	"errors"
	"time"

	"roster/internal/domain/member"
)

// Phase is the fetch lifecycle of a view.
type Phase string

// Mode is the row editor state.
type Mode string

// Action names the mutation a confirmation gates.
type Action string

// Business rule constants
const (
	PhaseLoading Phase = "loading"
	PhaseError   Phase = "error"
	PhaseReady   Phase = "ready"

	ModeViewing Mode = "viewing"
	ModeEditing Mode = "editing"

	ActionSave   Action = "save"
	ActionDelete Action = "delete"

	DefaultPerPage = 5

	// FetchErrorMessage is the only error text shown to the user.
	FetchErrorMessage = "Error fetching data"

	SavePrompt   = "Are you sure you want to save the changes?"
	DeletePrompt = "Are you sure you want to delete this member?"
)

// PerPageOptions are the page sizes a view accepts.
var PerPageOptions = []int{5, 10, 15, 20}

// Domain errors
var (
	ErrNotReady              = errors.New("member list is not loaded")
	ErrNotEditing            = errors.New("no member is being edited")
	ErrRowBeingEdited        = errors.New("member is being edited")
	ErrNoPendingConfirmation = errors.New("no confirmation is pending")
	ErrConfirmationMismatch  = errors.New("confirmation does not match the pending request")
	ErrInvalidPage           = errors.New("page must be a positive integer")
	ErrInvalidPerPage        = errors.New("items per page is not an allowed option")
)

// Confirmation is an outstanding yes/no question gating a save or delete.
type Confirmation struct {
	ID          string    `json:"id"`
	Action      Action    `json:"action"`
	MemberID    string    `json:"member_id"`
	Prompt      string    `json:"prompt"`
	RequestedAt time.Time `json:"requested_at"`
}

// State is the cursor and editor state of one member list view.
// The member sequence itself is held by the member store.
type State struct {
	Phase   Phase
	Error   string
	Search  string
	Page    int
	PerPage int
	Editing string // member ID; empty while viewing
	Scratch member.Fields
	Pending *Confirmation
}

// New returns the initial state of a freshly opened view.
// POST: Phase is loading, Page is 1, PerPage is DefaultPerPage, Mode is viewing
func New() State {
	return State{
		Phase:   PhaseLoading,
		Page:    1,
		PerPage: DefaultPerPage,
	}
}

// Mode returns the current row editor mode.
func (s State) Mode() Mode {
	if s.Editing == "" {
		return ModeViewing
	}
	return ModeEditing
}

// MarkReady records a successful fetch.
// PRE: Phase is loading
// POST: Phase is ready
func (s *State) MarkReady() {
	s.Phase = PhaseReady
	s.Error = ""
}

// MarkFailed records a failed fetch with the generic message.
// PRE: Phase is loading
// POST: Phase is error, Error is FetchErrorMessage
func (s *State) MarkFailed() {
	s.Phase = PhaseError
	s.Error = FetchErrorMessage
}

// SetSearch replaces the search term. The caller clamps the page afterwards.
// PRE: Phase is ready
// POST: Search equals term
func (s *State) SetSearch(term string) error {
	if s.Phase != PhaseReady {
		return ErrNotReady
	}
	s.Search = term
	return nil
}

// SetPage moves the cursor. The caller clamps it against the filtered count.
// PRE: Phase is ready, page >= 1
// POST: Page equals page
func (s *State) SetPage(page int) error {
	if s.Phase != PhaseReady {
		return ErrNotReady
	}
	if page < 1 {
		return ErrInvalidPage
	}
	s.Page = page
	return nil
}

// SetPerPage changes the page size and returns to the first page.
// PRE: Phase is ready, n is one of PerPageOptions
// POST: PerPage equals n, Page is 1
func (s *State) SetPerPage(n int) error {
	if s.Phase != PhaseReady {
		return ErrNotReady
	}
	if !isValidPerPage(n) {
		return ErrInvalidPerPage
	}
	s.PerPage = n
	s.Page = 1
	return nil
}

// ClampPage bounds the cursor to [1, max(1, totalPages)].
// POST: 1 <= Page <= max(1, totalPages)
func (s *State) ClampPage(totalPages int) {
	if s.Page > totalPages {
		s.Page = totalPages
	}
	if s.Page < 1 {
		s.Page = 1
	}
}

// BeginEdit opens m for editing and copies its fields into the scratch.
// PRE: Phase is ready
// POST: Mode is editing, Editing is m.ID, Scratch holds m's fields, no confirmation pending
func (s *State) BeginEdit(m member.Member) error {
	if s.Phase != PhaseReady {
		return ErrNotReady
	}
	s.Editing = m.ID
	s.Scratch = m.Fields()
	s.Pending = nil
	return nil
}

// UpdateScratch replaces the uncommitted field values.
// PRE: Mode is editing
// POST: Scratch equals f
func (s *State) UpdateScratch(f member.Fields) error {
	if s.Editing == "" {
		return ErrNotEditing
	}
	s.Scratch = f
	return nil
}

// CancelEdit leaves edit mode without committing.
// PRE: Mode is editing
// POST: Mode is viewing, Scratch is cleared, a pending save is dropped
func (s *State) CancelEdit() error {
	if s.Editing == "" {
		return ErrNotEditing
	}
	s.finishEdit()
	if s.Pending != nil && s.Pending.Action == ActionSave {
		s.Pending = nil
	}
	return nil
}

// RequestSave asks for confirmation to commit the scratch.
// PRE: Mode is editing
// POST: Pending is a save confirmation for the edited member; edit state is unchanged
func (s *State) RequestSave(id string, now time.Time) (Confirmation, error) {
	if s.Editing == "" {
		return Confirmation{}, ErrNotEditing
	}
	c := Confirmation{ID: id, Action: ActionSave, MemberID: s.Editing, Prompt: SavePrompt, RequestedAt: now}
	s.Pending = &c
	return c, nil
}

// RequestDelete asks for confirmation to remove memberID.
// PRE: Phase is ready, memberID is not the row being edited
// POST: Pending is a delete confirmation for memberID
func (s *State) RequestDelete(memberID, id string, now time.Time) (Confirmation, error) {
	if s.Phase != PhaseReady {
		return Confirmation{}, ErrNotReady
	}
	if memberID == s.Editing {
		return Confirmation{}, ErrRowBeingEdited
	}
	c := Confirmation{ID: id, Action: ActionDelete, MemberID: memberID, Prompt: DeletePrompt, RequestedAt: now}
	s.Pending = &c
	return c, nil
}

// Resolve answers the pending confirmation and clears it.
// A declined save keeps the editor open with its scratch; the caller commits accepted requests
// and then calls CompleteSave for saves.
// PRE: Pending is non-nil and Pending.ID == id
// POST: Pending is nil; returns the answered confirmation
func (s *State) Resolve(id string) (Confirmation, error) {
	if s.Pending == nil {
		return Confirmation{}, ErrNoPendingConfirmation
	}
	if s.Pending.ID != id {
		return Confirmation{}, ErrConfirmationMismatch
	}
	c := *s.Pending
	s.Pending = nil
	return c, nil
}

// CompleteSave returns to viewing after a committed save.
// POST: Mode is viewing, Scratch is cleared
func (s *State) CompleteSave() {
	s.finishEdit()
}

func (s *State) finishEdit() {
	s.Editing = ""
	s.Scratch = member.Fields{}
}

func isValidPerPage(n int) bool {
	for _, opt := range PerPageOptions {
		if n == opt {
			return true
		}
	}
	return false
}
