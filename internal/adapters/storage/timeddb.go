package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"roster/internal/adapters/http/perf"
)

// SQLDB is the database interface used by all stores.
// Both *sql.DB and *TimedDB satisfy this interface.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Compile-time check that *sql.DB satisfies SQLDB.
var _ SQLDB = (*sql.DB)(nil)

// DefaultSlowQueryMs is the default threshold for slow query warnings.
const DefaultSlowQueryMs = 50

// slowQueryThreshold reads ROSTER_SLOW_QUERY_MS, falling back to DefaultSlowQueryMs.
func slowQueryThreshold() float64 {
	if v := os.Getenv("ROSTER_SLOW_QUERY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return float64(n)
		}
	}
	return DefaultSlowQueryMs
}

// TimedDB wraps a *sql.DB to log slow queries and optionally record to a collector.
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	threshold float64
}

// Compile-time check that *TimedDB satisfies SQLDB.
var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps a *sql.DB with timing instrumentation.
// PRE: db is a valid database connection
// POST: Returns a TimedDB that logs slow queries and records to collector
func NewTimedDB(db *sql.DB, collector *perf.Collector) *TimedDB {
	return &TimedDB{
		db:        db,
		collector: collector,
		threshold: slowQueryThreshold(),
	}
}

// RawDB returns the underlying *sql.DB.
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

// queryLabel names a statement by its verb and table, e.g. "SELECT member".
func queryLabel(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "EMPTY"
	}
	verb := strings.ToUpper(fields[0])
	for i, f := range fields {
		switch strings.ToUpper(f) {
		case "FROM", "INTO", "UPDATE":
			if i+1 < len(fields) {
				return verb + " " + fields[i+1]
			}
		}
	}
	return verb
}

// timed runs call and reports its latency under label.
func timed[T any](t *TimedDB, label string, call func() (T, error)) (T, error) {
	start := time.Now()
	out, err := call()
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0

	switch {
	case err != nil:
		slog.Warn("query_failed", "query", label, "duration_ms", durationMs, "error", err.Error())
	case durationMs >= t.threshold:
		slog.Warn("slow_query", "query", label, "duration_ms", durationMs)
	default:
		slog.Debug("query", "query", label, "duration_ms", durationMs)
	}

	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindQuery,
			Path:       label,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
	return out, err
}

// ExecContext runs a statement and records it under its query label.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return timed(t, queryLabel(query), func() (sql.Result, error) {
		return t.db.ExecContext(ctx, query, args...)
	})
}

// QueryContext runs a query and records it under its query label.
// The recorded time covers statement execution, not row iteration.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return timed(t, queryLabel(query), func() (*sql.Rows, error) {
		return t.db.QueryContext(ctx, query, args...)
	})
}

// QueryRowContext runs a single-row query.
// Row errors surface on Scan, so only the latency is recorded here.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	row, _ := timed(t, queryLabel(query), func() (*sql.Row, error) {
		return t.db.QueryRowContext(ctx, query, args...), nil
	})
	return row
}

// BeginTx starts a transaction, recorded as "BEGIN". Statements run on the returned
// *sql.Tx are not instrumented.
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return timed(t, "BEGIN", func() (*sql.Tx, error) {
		return t.db.BeginTx(ctx, opts)
	})
}
