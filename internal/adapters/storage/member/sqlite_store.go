package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"roster/internal/adapters/storage"
	domain "roster/internal/domain/member"
)

// SQLiteStore implements Store on the in-memory SQLite database.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new member Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Compile-time check that *SQLiteStore satisfies Store.
var _ Store = (*SQLiteStore)(nil)

// ReplaceAll stores members as the view's list, discarding any previous list.
// PRE: viewID is non-empty, member IDs are unique
// POST: List(viewID) returns members in the given order
func (s *SQLiteStore) ReplaceAll(ctx context.Context, viewID string, members []domain.Member) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM member WHERE view_id = ?", viewID); err != nil {
		return fmt.Errorf("clear view %s: %w", viewID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO member (view_id, id, position, full_name, full_email, role) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, m := range members {
		if _, err := stmt.ExecContext(ctx, viewID, m.ID, i, m.Name, m.Email, m.Role); err != nil {
			return fmt.Errorf("insert member %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// List returns the view's members in source order.
// PRE: viewID is non-empty
// POST: Returns an empty slice when the view has no members
func (s *SQLiteStore) List(ctx context.Context, viewID string) ([]domain.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, full_name, full_email, role FROM member WHERE view_id = ? ORDER BY position",
		viewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []domain.Member{}
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Role); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// GetByID retrieves one member of a view.
// PRE: viewID and id are non-empty
// POST: Returns ErrMemberNotFound when absent
func (s *SQLiteStore) GetByID(ctx context.Context, viewID, id string) (domain.Member, error) {
	var m domain.Member
	err := s.db.QueryRowContext(ctx,
		"SELECT id, full_name, full_email, role FROM member WHERE view_id = ? AND id = ?",
		viewID, id).Scan(&m.ID, &m.Name, &m.Email, &m.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Member{}, ErrMemberNotFound
	}
	return m, err
}

// Save overwrites the editable fields of an existing member. Position is unchanged.
// PRE: value.ID exists in the view
// POST: GetByID returns value; returns ErrMemberNotFound when absent
func (s *SQLiteStore) Save(ctx context.Context, viewID string, value domain.Member) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE member SET full_name = ?, full_email = ?, role = ? WHERE view_id = ? AND id = ?",
		value.Name, value.Email, value.Role, viewID, value.ID)
	if err != nil {
		return err
	}
	return requireOne(res)
}

// Delete removes one member. The relative order of the rest is kept.
// PRE: id exists in the view
// POST: List no longer contains id; returns ErrMemberNotFound when absent
func (s *SQLiteStore) Delete(ctx context.Context, viewID, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM member WHERE view_id = ? AND id = ?", viewID, id)
	if err != nil {
		return err
	}
	return requireOne(res)
}

// DeleteView drops every member of a view.
func (s *SQLiteStore) DeleteView(ctx context.Context, viewID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM member WHERE view_id = ?", viewID)
	return err
}

// Count returns the number of members in a view.
func (s *SQLiteStore) Count(ctx context.Context, viewID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM member WHERE view_id = ?", viewID).Scan(&n)
	return n, err
}

func requireOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMemberNotFound
	}
	return nil
}
