package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Entry is one evaluated program.
type Entry struct {
	ID             int64
	Source         string
	Result         string // textual form of the value, empty on failure
	ErrorClass     string
	ErrorMessage   string
	LexicalScoping bool
	Trace          bool
	Duration       time.Duration
	CreatedAt      time.Time
}

func (e Entry) Failed() bool { return e.ErrorClass != "" }

type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to the database named by dsn (see ParseDSN) and creates the runs table when it
// is missing.
func Open(ctx context.Context, dsn string) (*Store, error) {
	driver, source, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		if path := sqliteFile(source); path != "" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("history: creating directory for %s: %w", path, err)
			}
		}
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// a single writer avoids "database is locked"
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: connect %s: %w", driver, err)
	}

	s := &Store{db: db, dialect: dialects[driver]}
	if _, err := db.ExecContext(ctx, s.dialect.schema()); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}

	slog.Debug("history store opened", slog.String("driver", driver))
	return s, nil
}

func (s *Store) Record(ctx context.Context, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	query := s.dialect.rebind(`INSERT INTO runs
	(created_at, source, result, error_class, error_message, lexical_scoping, trace, duration_us)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query,
		entry.CreatedAt.UnixMicro(),
		entry.Source,
		entry.Result,
		entry.ErrorClass,
		entry.ErrorMessage,
		boolToInt(entry.LexicalScoping),
		boolToInt(entry.Trace),
		entry.Duration.Microseconds(),
	)
	if err != nil {
		return fmt.Errorf("history: record: %w", err)
	}
	slog.Debug("run recorded",
		slog.String("error-class", entry.ErrorClass),
		slog.Duration("duration", entry.Duration),
	)
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := s.dialect.rebind(`SELECT id, created_at, source, result, error_class, error_message,
	lexical_scoping, trace, duration_us FROM runs ORDER BY id DESC LIMIT ?`)

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                         Entry
			createdAt, durationMicros int64
			lexical, trace            int64
			result, class, message    sql.NullString
		)
		if err := rows.Scan(&e.ID, &createdAt, &e.Source, &result, &class, &message,
			&lexical, &trace, &durationMicros); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		e.CreatedAt = time.UnixMicro(createdAt).UTC()
		e.Result = result.String
		e.ErrorClass = class.String
		e.ErrorMessage = message.String
		e.LexicalScoping = lexical != 0
		e.Trace = trace != 0
		e.Duration = time.Duration(durationMicros) * time.Microsecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
