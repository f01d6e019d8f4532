package source

import (
	"context"
	"log/slog"
)

// StaticFetcher serves a fixed member list for development and testing.
// It never touches the network.
type StaticFetcher struct {
	records []Record
	err     error
}

// NewStaticFetcher creates a fetcher returning records.
func NewStaticFetcher(records []Record) *StaticFetcher {
	return &StaticFetcher{records: records}
}

// NewFailingFetcher creates a fetcher whose every call fails with ErrFetchFailed.
func NewFailingFetcher() *StaticFetcher {
	return &StaticFetcher{err: ErrFetchFailed}
}

// Fetch returns a copy of the configured records.
// POST: the caller may modify the result freely
func (s *StaticFetcher) Fetch(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	slog.Info("static_source_fetch", "members", len(s.records))
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out, nil
}
