package partials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// ErrNotFound is returned by Get and Delete when no partial with the given
// name exists.
var ErrNotFound = errors.New("partial not found")

// SetupSchema initializes the partials table in the provided database. It
// should be called once on a new database before any other operations are
// performed. It is idempotent and safe to call on an already-initialized
// database.
func SetupSchema(db *sql.DB) error {
	const schemaPartials = `
CREATE TABLE IF NOT EXISTS mustache_partials (
    partial_id INTEGER PRIMARY KEY,
    partial_name TEXT NOT NULL UNIQUE,
    partial_text TEXT NOT NULL
);
`

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	// If the transaction succeeds, tx.Commit() will be called first, and the rollback will do nothing. If it fails, this will clean up.
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaPartials); err != nil {
		return fmt.Errorf("could not create schema: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// Store reads and writes named partial templates in a SQLite database. It
// holds the database connection and prepared SQL statements for efficient
// access. Store satisfies mustache.Partials via Resolve.
type Store struct {
	db         *sql.DB
	stmtGet    *sql.Stmt
	stmtPut    *sql.Stmt
	stmtDelete *sql.Stmt
	stmtNames  *sql.Stmt
	logger     *slog.Logger
}

// NewStore creates and returns a new Store. It pre-compiles all necessary
// SQL statements, returning an error if any preparation fails.
func NewStore(db *sql.DB) (*Store, error) {
	stmtGet, err := db.Prepare(`SELECT partial_text FROM mustache_partials WHERE partial_name = ?;`)
	if err != nil {
		return nil, err
	}

	stmtPut, err := db.Prepare(`INSERT INTO mustache_partials (partial_name, partial_text) VALUES (?, ?) ON CONFLICT(partial_name) DO UPDATE SET partial_text = excluded.partial_text;`)
	if err != nil {
		return nil, err
	}

	stmtDelete, err := db.Prepare(`DELETE FROM mustache_partials WHERE partial_name = ?;`)
	if err != nil {
		return nil, err
	}

	stmtNames, err := db.Prepare(`SELECT partial_name FROM mustache_partials ORDER BY partial_name;`)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:         db,
		stmtGet:    stmtGet,
		stmtPut:    stmtPut,
		stmtDelete: stmtDelete,
		stmtNames:  stmtNames,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Close releases all prepared SQL statements held by the Store. It should
// be called when the Store is no longer needed to free up database
// resources.
func (s *Store) Close() {
	_ = s.stmtGet.Close()
	_ = s.stmtPut.Close()
	_ = s.stmtDelete.Close()
	_ = s.stmtNames.Close()
}

// SetLogger sets the logger for the Store. By default, all logs are
// discarded.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Put inserts a partial under name, replacing any existing text.
func (s *Store) Put(ctx context.Context, name, text string) error {
	if _, err := s.stmtPut.ExecContext(ctx, name, text); err != nil {
		return fmt.Errorf("could not store partial %q: %w", name, err)
	}
	s.logger.Debug("stored partial", "name", name, "bytes", len(text))
	return nil
}

// Get returns the text of the named partial, or ErrNotFound.
func (s *Store) Get(ctx context.Context, name string) (string, error) {
	var text string
	err := s.stmtGet.QueryRowContext(ctx, name).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("partial %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("could not load partial %q: %w", name, err)
	}
	return text, nil
}

// Delete removes the named partial. Deleting a partial that does not exist
// returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.stmtDelete.ExecContext(ctx, name)
	if err != nil {
		return fmt.Errorf("could not delete partial %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not delete partial %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("partial %q: %w", name, ErrNotFound)
	}
	return nil
}

// Names returns the names of all stored partials in lexical order.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	rows, err := s.stmtNames.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list partials: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("could not list partials: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not list partials: %w", err)
	}
	return names, nil
}

// Resolve implements mustache.Partials. Database errors other than a
// missing row are logged and reported as a miss, since the renderer treats
// unresolved partials as empty.
func (s *Store) Resolve(name string) (string, bool) {
	text, err := s.Get(context.Background(), name)
	if errors.Is(err, ErrNotFound) {
		return "", false
	}
	if err != nil {
		s.logger.Error("resolving partial", "name", name, "error", err)
		return "", false
	}
	return text, true
}
