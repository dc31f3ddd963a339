package history

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/google/uuid"
	"github.com/huangsam/culprit/internal/contract"
	"github.com/huangsam/culprit/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/pierrec/lz4/v4"
	_ "modernc.org/sqlite" // SQLite driver
)

// Table names for run history tracking.
const (
	runsTable       = "culprit_runs"
	runAuthorsTable = "culprit_run_authors"
)

// StoreImpl implements the HistoryStore interface.
type StoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.HistoryStore = &StoreImpl{} // Compile-time check

// NewStore creates a new HistoryStore with the specified backend.
func NewStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	var db *sql.DB
	var err error
	var driverName string

	switch backend {
	case schema.SQLiteBackend:
		driverName = "sqlite"
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetHistoryDBFilePath()
		}
		db, err = sql.Open(driverName, dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		driverName = "mysql"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		driverName = "pgx"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 dbname=culprit", err)
		}

	case schema.NoneBackend:
		// Return a no-op store for disabled tracking
		return &StoreImpl{
			db:         nil,
			backend:    backend,
			driverName: "",
		}, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database server is running and accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	// Create the table schemas
	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &StoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
	}, nil
}

// createHistoryTables creates the run history tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{runAuthorsTable, getCreateRunAuthorsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for culprit_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(36) PRIMARY KEY,
				created_at DATETIME(6) NOT NULL,
				version VARCHAR(50) NOT NULL,
				args TEXT,
				total INT NOT NULL,
				attributed INT NOT NULL,
				unattributed INT NOT NULL,
				summary_blob MEDIUMBLOB
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(36) PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL,
				version TEXT NOT NULL,
				args TEXT,
				total INT NOT NULL,
				attributed INT NOT NULL,
				unattributed INT NOT NULL,
				summary_blob BYTEA
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT PRIMARY KEY,
				created_at TEXT NOT NULL,
				version TEXT NOT NULL,
				args TEXT,
				total INTEGER NOT NULL,
				attributed INTEGER NOT NULL,
				unattributed INTEGER NOT NULL,
				summary_blob BLOB
			);
		`, quotedTableName)
	}
}

// getCreateRunAuthorsQuery returns the CREATE TABLE query for culprit_run_authors.
func getCreateRunAuthorsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runAuthorsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(36) NOT NULL,
				author VARCHAR(255) NOT NULL,
				kind VARCHAR(255) NOT NULL,
				defect_count INT NOT NULL,
				PRIMARY KEY (run_id, author, kind)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(36) NOT NULL,
				author TEXT NOT NULL,
				kind TEXT NOT NULL,
				defect_count INT NOT NULL,
				PRIMARY KEY (run_id, author, kind)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT NOT NULL,
				author TEXT NOT NULL,
				kind TEXT NOT NULL,
				defect_count INTEGER NOT NULL,
				PRIMARY KEY (run_id, author, kind)
			);
		`, quotedTableName)
	}
}

// RecordRun persists one run's summary and returns its unique run ID.
// The run row and its per-author rows land in one transaction so a failed
// insert never leaves a half-recorded run.
func (hs *StoreImpl) RecordRun(summary *schema.Summary) (string, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return "", nil
	}

	blob, err := compressSummaryBlob(summary)
	if err != nil {
		return "", err
	}

	runID := uuid.NewString()
	createdAt := time.Now()
	args := strings.Join(summary.Args, " ")

	tx, err := hs.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin run transaction: %w", err)
	}
	// Rollback is a no-op once the transaction commits
	defer func() { _ = tx.Rollback() }()

	quotedRuns := quoteTableName(runsTable, hs.backend)
	quotedAuthors := quoteTableName(runAuthorsTable, hs.backend)

	var runsQuery, authorsQuery string
	switch hs.backend {
	case schema.PostgreSQLBackend:
		runsQuery = fmt.Sprintf(`INSERT INTO %s (run_id, created_at, version, args, total, attributed, unattributed, summary_blob) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, quotedRuns)
		authorsQuery = fmt.Sprintf(`INSERT INTO %s (run_id, author, kind, defect_count) VALUES ($1, $2, $3, $4)`, quotedAuthors)
	default: // SQLite and MySQL
		runsQuery = fmt.Sprintf(`INSERT INTO %s (run_id, created_at, version, args, total, attributed, unattributed, summary_blob) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, quotedRuns)
		authorsQuery = fmt.Sprintf(`INSERT INTO %s (run_id, author, kind, defect_count) VALUES (?, ?, ?, ?)`, quotedAuthors)
	}

	if _, err := tx.Exec(runsQuery, runID, formatTime(createdAt, hs.backend), summary.Version, args,
		summary.Total, summary.Attributed, summary.Unattributed, blob); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	for _, a := range summary.Authors {
		for _, k := range a.Kinds {
			if _, err := tx.Exec(authorsQuery, runID, a.Author, k.Name, k.Count); err != nil {
				return "", fmt.Errorf("failed to insert author row: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}

	return runID, nil
}

// ListRuns returns all stored runs ordered by creation time.
func (hs *StoreImpl) ListRuns() ([]schema.RunRecord, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(runsTable, hs.backend)
	query := fmt.Sprintf("SELECT run_id, created_at, version, args, total, attributed, unattributed, summary_blob FROM %s ORDER BY created_at, run_id", quotedTableName)

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord

	for rows.Next() {
		var record schema.RunRecord

		switch hs.backend {
		case schema.SQLiteBackend:
			var createdAtStr string
			if err := rows.Scan(&record.RunID, &createdAtStr, &record.Version, &record.Args,
				&record.Total, &record.Attributed, &record.Unattributed, &record.SummaryBlob); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse created_at: %w", err)
			}
			record.CreatedAt = createdAt
		default: // MySQL and PostgreSQL store as native datetime
			if err := rows.Scan(&record.RunID, &record.CreatedAt, &record.Version, &record.Args,
				&record.Total, &record.Attributed, &record.Unattributed, &record.SummaryBlob); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return results, nil
}

// ListAuthorRows returns all stored per-author rows ordered by run, author, kind.
func (hs *StoreImpl) ListAuthorRows() ([]schema.AuthorRowRecord, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(runAuthorsTable, hs.backend)
	query := fmt.Sprintf("SELECT run_id, author, kind, defect_count FROM %s ORDER BY run_id, author, kind", quotedTableName)

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query author rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AuthorRowRecord

	for rows.Next() {
		var record schema.AuthorRowRecord
		if err := rows.Scan(&record.RunID, &record.Author, &record.Kind, &record.Count); err != nil {
			return nil, fmt.Errorf("failed to scan author row: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating author rows: %w", err)
	}

	return results, nil
}

// GetStatus returns status information about the history store.
func (hs *StoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if hs.backend == schema.NoneBackend || hs.db == nil {
		return status, nil
	}

	// Get total runs
	runsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(runsTable, hs.backend))
	row := hs.db.QueryRow(runsQuery)
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		// Get last run info
		lastRunQuery := fmt.Sprintf("SELECT run_id, created_at FROM %s ORDER BY created_at DESC, run_id DESC LIMIT 1", quoteTableName(runsTable, hs.backend))
		row = hs.db.QueryRow(lastRunQuery)

		switch hs.backend {
		case schema.SQLiteBackend:
			var lastRunTimeStr string
			if err := row.Scan(&status.LastRunID, &lastRunTimeStr); err != nil {
				return status, fmt.Errorf("failed to get last run info: %w", err)
			}
			lastRunTime, err := time.Parse(time.RFC3339Nano, lastRunTimeStr)
			if err != nil {
				return status, fmt.Errorf("failed to parse last run time: %w", err)
			}
			status.LastRunTime = lastRunTime
		default: // MySQL and PostgreSQL store as native datetime
			if err := row.Scan(&status.LastRunID, &status.LastRunTime); err != nil {
				return status, fmt.Errorf("failed to get last run info: %w", err)
			}
		}

		// Get oldest run time
		oldestRunQuery := fmt.Sprintf("SELECT created_at FROM %s ORDER BY created_at ASC, run_id ASC LIMIT 1", quoteTableName(runsTable, hs.backend))
		row = hs.db.QueryRow(oldestRunQuery)

		switch hs.backend {
		case schema.SQLiteBackend:
			var oldestRunTimeStr string
			if err := row.Scan(&oldestRunTimeStr); err != nil {
				return status, fmt.Errorf("failed to get oldest run time: %w", err)
			}
			oldestRunTime, err := time.Parse(time.RFC3339Nano, oldestRunTimeStr)
			if err != nil {
				return status, fmt.Errorf("failed to parse oldest run time: %w", err)
			}
			status.OldestRunTime = oldestRunTime
		default: // MySQL and PostgreSQL store as native datetime
			if err := row.Scan(&status.OldestRunTime); err != nil {
				return status, fmt.Errorf("failed to get oldest run time: %w", err)
			}
		}

		// Get total defects across all runs
		defectsQuery := fmt.Sprintf("SELECT COALESCE(SUM(total), 0) FROM %s", quoteTableName(runsTable, hs.backend))
		row = hs.db.QueryRow(defectsQuery)
		if err := row.Scan(&status.TotalDefects); err != nil {
			return status, fmt.Errorf("failed to get total defects: %w", err)
		}
	}

	// Get table sizes
	tables := []string{runsTable, runAuthorsTable}
	for _, table := range tables {
		quotedTable := quoteTableName(table, hs.backend)
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTable)
		row = hs.db.QueryRow(countQuery)
		var count int64
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// Clear removes all stored runs and returns how many were deleted.
func (hs *StoreImpl) Clear() (int64, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return 0, nil
	}

	tx, err := hs.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin clear transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Author rows first so no orphaned rows survive a partial failure
	authorsQuery := fmt.Sprintf("DELETE FROM %s", quoteTableName(runAuthorsTable, hs.backend))
	if _, err := tx.Exec(authorsQuery); err != nil {
		return 0, fmt.Errorf("failed to clear author rows: %w", err)
	}

	runsQuery := fmt.Sprintf("DELETE FROM %s", quoteTableName(runsTable, hs.backend))
	result, err := tx.Exec(runsQuery)
	if err != nil {
		return 0, fmt.Errorf("failed to clear runs: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared runs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit clear: %w", err)
	}

	return deleted, nil
}

// Close closes the underlying connection.
func (hs *StoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// compressSummaryBlob renders a summary as LZ4-compressed JSON. The scalar
// columns cover queries; the blob keeps the full per-kind detail around.
func compressSummaryBlob(summary *schema.Summary) ([]byte, error) {
	raw, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}

	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("failed to compress summary: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize summary compression: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeSummaryBlob reverses compressSummaryBlob, recovering the full
// summary stored with a run.
func DecodeSummaryBlob(blob []byte) (*schema.Summary, error) {
	zr := lz4.NewReader(bytes.NewReader(blob))
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress summary: %w", err)
	}

	var summary schema.Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	return &summary, nil
}

// sqliteTimeLayout pads fractional seconds to nine digits so the TEXT
// column sorts chronologically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("%q", name)
	}
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(sqliteTimeLayout)
	default:
		return t
	}
}
