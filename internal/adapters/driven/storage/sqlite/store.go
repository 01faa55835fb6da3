package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/deckmend/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/deckmend/internal/core/domain"
	"github.com/custodia-labs/deckmend/internal/core/ports/driven"
)

// Store is a SQLite-based store for repair history.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.deckmend/data/history.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".deckmend", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")

	// WAL lets the watcher and a CLI invocation share the file.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ReportStore returns a ReportStore interface backed by this store.
func (s *Store) ReportStore() driven.ReportStore {
	return &reportStore{store: s}
}

// migrate runs all pending migrations, each in its own transaction.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_reports.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Report Store ====================

// reportStore implements driven.ReportStore.
type reportStore struct {
	store *Store
}

var _ driven.ReportStore = (*reportStore)(nil)

const reportColumns = `id, input_path, output_path, input_hash, output_hash,
	result, quality_before, quality_after, error, created_at`

// Save stores or updates a report. The repaired bytes are not stored.
func (s *reportStore) Save(ctx context.Context, report *domain.RepairReport) error {
	if report == nil || report.ID == "" {
		return fmt.Errorf("%w: report id is required", domain.ErrInvalidInput)
	}

	resultJSON, err := json.Marshal(report.Result)
	if err != nil {
		return fmt.Errorf("marshalling result: %w", err)
	}
	beforeJSON, err := json.Marshal(report.QualityBefore)
	if err != nil {
		return fmt.Errorf("marshalling quality: %w", err)
	}
	var afterJSON sql.NullString
	var scoreAfter sql.NullInt64
	if report.QualityAfter != nil {
		b, err := json.Marshal(report.QualityAfter)
		if err != nil {
			return fmt.Errorf("marshalling quality: %w", err)
		}
		afterJSON = sql.NullString{String: string(b), Valid: true}
		scoreAfter = sql.NullInt64{Int64: int64(report.QualityAfter.Score), Valid: true}
	}

	createdAt := report.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO reports (id, input_path, output_path, input_hash, output_hash,
			success, failed_stage, score_before, score_after,
			result, quality_before, quality_after, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			input_path = excluded.input_path,
			output_path = excluded.output_path,
			input_hash = excluded.input_hash,
			output_hash = excluded.output_hash,
			success = excluded.success,
			failed_stage = excluded.failed_stage,
			score_before = excluded.score_before,
			score_after = excluded.score_after,
			result = excluded.result,
			quality_before = excluded.quality_before,
			quality_after = excluded.quality_after,
			error = excluded.error
	`, report.ID, nullString(report.InputPath), nullString(report.OutputPath),
		report.InputHash, nullString(report.OutputHash),
		report.Succeeded(), nullString(report.Result.FailedStage),
		report.QualityBefore.Score, scoreAfter,
		string(resultJSON), string(beforeJSON), afterJSON,
		nullString(report.Error), createdAt.UTC())
	if err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	return nil
}

// Get retrieves a report by ID.
func (s *reportStore) Get(ctx context.Context, id string) (*domain.RepairReport, error) {
	row := s.store.db.QueryRowContext(ctx, "SELECT "+reportColumns+" FROM reports WHERE id = ?", id)
	return scanReport(row)
}

// List returns the most recent reports first.
func (s *reportStore) List(ctx context.Context, limit int) ([]domain.RepairReport, error) {
	query := "SELECT " + reportColumns + " FROM reports ORDER BY created_at DESC, id ASC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	reports := []domain.RepairReport{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reports: %w", err)
	}

	return reports, nil
}

// Delete removes a report.
func (s *reportStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM reports WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting report: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting report: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (*domain.RepairReport, error) {
	var report domain.RepairReport
	var inputPath, outputPath, outputHash, afterJSON, errMsg sql.NullString
	var resultJSON, beforeJSON string
	var createdAt sql.NullTime

	if err := row.Scan(&report.ID, &inputPath, &outputPath, &report.InputHash, &outputHash,
		&resultJSON, &beforeJSON, &afterJSON, &errMsg, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning report: %w", err)
	}

	if err := json.Unmarshal([]byte(resultJSON), &report.Result); err != nil {
		return nil, fmt.Errorf("unmarshaling result: %w", err)
	}
	if err := json.Unmarshal([]byte(beforeJSON), &report.QualityBefore); err != nil {
		return nil, fmt.Errorf("unmarshaling quality: %w", err)
	}
	if afterJSON.Valid {
		var after domain.QualityScore
		if err := json.Unmarshal([]byte(afterJSON.String), &after); err != nil {
			return nil, fmt.Errorf("unmarshaling quality: %w", err)
		}
		report.QualityAfter = &after
	}

	report.InputPath = inputPath.String
	report.OutputPath = outputPath.String
	report.OutputHash = outputHash.String
	report.Error = errMsg.String
	if createdAt.Valid {
		report.CreatedAt = createdAt.Time
	}

	return &report, nil
}

// nullString converts an empty string to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
