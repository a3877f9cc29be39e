package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/boundary/internal/ir"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the user_version of a fully migrated run log.
//
//	0 - runs and steps tables
//	1 - index on steps(run_token, state) for CountStates
const schemaVersion = 1

// ErrRecordVersion is returned by Open when the log holds runs written with
// a record layout this build cannot decode.
var ErrRecordVersion = errors.New("unsupported record version")

// pragmas are applied on every open, in order.
var pragmas = []struct {
	name, value string
}{
	{"journal_mode", "WAL"},
	{"synchronous", "NORMAL"},
	{"busy_timeout", "5000"},
	{"foreign_keys", "ON"},
}

// Store is the durable run log of a boundary engine.
// A single connection serializes writes; WAL lets readers share the file.
type Store struct {
	db *sql.DB
}

// Open creates or opens the run log at path, migrating it to the current
// schema. Opening an up-to-date log changes nothing.
//
// Every stored run must carry ir.RecordVersion. A log written by an
// incompatible build is refused with ErrRecordVersion rather than replayed
// into wrong signals.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// One writer at a time; a second connection would only see SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	steps := []struct {
		what string
		fn   func(*sql.DB) error
	}{
		{"apply pragmas", applyPragmas},
		{"apply schema", applySchema},
		{"check record versions", checkRecordVersions},
	}
	for _, step := range steps {
		if err := step.fn(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to %s: %w", step.what, err)
		}
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying connection for queries the Store does not offer.
func (s *Store) DB() *sql.DB {
	return s.db
}

func applyPragmas(db *sql.DB) error {
	for _, p := range pragmas {
		stmt := fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("%q: %w", stmt, err)
		}
	}
	return nil
}

// applySchema creates the runs and steps tables and migrates older logs.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < 1 {
		if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_steps_run_state ON steps(run_token, state)`); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// checkRecordVersions fails on the first run, by seq, whose record_version
// differs from ir.RecordVersion.
func checkRecordVersions(db *sql.DB) error {
	var token, version string
	err := db.QueryRow(`
		SELECT token, record_version FROM runs
		WHERE record_version != ?
		ORDER BY seq ASC
		LIMIT 1
	`, ir.RecordVersion).Scan(&token, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: run %s has record version %q, want %q",
		ErrRecordVersion, token, version, ir.RecordVersion)
}

// verifyPragma checks that a pragma reads back as expected.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
