// Package storage keeps run history in SQL: records published by each run and
// the run summaries themselves. Postgres DSNs use lib/pq; anything else is
// treated as a SQLite path.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// Repository persists content records and workflow runs.
type Repository struct {
	db      *sql.DB
	dialect dialect
	builder sq.StatementBuilderType
	now     func() time.Time
}

var _ ports.RecordRepository = (*Repository)(nil)

// Open connects to dsn and makes sure the schema exists.
func Open(ctx context.Context, dsn string) (*Repository, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("open storage: empty dsn")
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return newRepository(ctx, db, dialectPostgres)
	}

	path := strings.TrimPrefix(dsn, "sqlite://")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout = 5000"} {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	return newRepository(ctx, db, dialectSQLite)
}

func newRepository(ctx context.Context, db *sql.DB, d dialect) (*Repository, error) {
	var placeholder sq.PlaceholderFormat = sq.Question
	if d == dialectPostgres {
		placeholder = sq.Dollar
	}
	repo := &Repository{
		db:      db,
		dialect: d,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
		now:     time.Now,
	}
	if err := repo.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the underlying connection.
func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS content_records (
			id TEXT PRIMARY KEY,
			url TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			source TEXT NOT NULL,
			summary TEXT NOT NULL,
			kind TEXT NOT NULL,
			published_at TEXT,
			topics TEXT NOT NULL,
			author TEXT,
			workflow_id TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS workflow_runs (
			workflow_id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT,
			state TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// KnownURLs returns the subset of urls already stored by an earlier run.
func (r *Repository) KnownURLs(ctx context.Context, urls []string) (map[string]bool, error) {
	if r == nil || r.db == nil || len(urls) == 0 {
		return map[string]bool{}, nil
	}

	query := r.builder.Select("url").From("content_records")
	if r.dialect == dialectPostgres {
		query = query.Where("url = ANY(?)", pq.StringArray(urls))
	} else {
		query = query.Where(sq.Eq{"url": urls})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build known urls query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query known urls: %w", err)
	}

	result := make(map[string]bool)
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan url: %w", err)
		}
		result[u] = true
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// SaveRecords upserts records keyed by URL inside one transaction.
func (r *Repository) SaveRecords(ctx context.Context, workflowID string, records []domain.ContentRecord) error {
	if r == nil || r.db == nil || len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	updatedAt := r.now().UTC().Format(time.RFC3339)
	for _, record := range records {
		topics, err := json.Marshal(record.Topics)
		if err != nil {
			return fmt.Errorf("marshal topics for %s: %w", record.URL, err)
		}

		_, err = r.builder.RunWith(tx).
			Insert("content_records").
			Columns("id", "url", "title", "source", "summary", "kind", "published_at", "topics", "author", "workflow_id", "updated_at").
			Values(uuid.NewString(), record.URL, record.Title, record.Source, record.Summary, string(record.Kind),
				nullable(record.PublishedAt), string(topics), nullable(record.Author), workflowID, updatedAt).
			Suffix(`ON CONFLICT (url) DO UPDATE
				SET title = EXCLUDED.title,
				    summary = EXCLUDED.summary,
				    published_at = EXCLUDED.published_at,
				    topics = EXCLUDED.topics,
				    workflow_id = EXCLUDED.workflow_id,
				    updated_at = EXCLUDED.updated_at`).
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("upsert record %s: %w", record.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit records: %w", err)
	}
	return nil
}

// SaveRun upserts the run summary.
func (r *Repository) SaveRun(ctx context.Context, run domain.RunSummary) error {
	if r == nil || r.db == nil {
		return nil
	}

	var endedAt any
	if !run.EndedAt.IsZero() {
		endedAt = run.EndedAt.UTC().Format(time.RFC3339)
	}

	_, err := r.builder.RunWith(r.db).
		Insert("workflow_runs").
		Columns("workflow_id", "status", "started_at", "ended_at", "state").
		Values(run.WorkflowID, run.Status, run.StartedAt.UTC().Format(time.RFC3339), endedAt, string(run.StateJSON)).
		Suffix(`ON CONFLICT (workflow_id) DO UPDATE
			SET status = EXCLUDED.status,
			    ended_at = EXCLUDED.ended_at,
			    state = EXCLUDED.state`).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("upsert run %s: %w", run.WorkflowID, err)
	}
	return nil
}

// RunStatus returns the stored status of a workflow run.
func (r *Repository) RunStatus(ctx context.Context, workflowID string) (string, error) {
	var status string
	err := r.builder.RunWith(r.db).
		Select("status").
		From("workflow_runs").
		Where(sq.Eq{"workflow_id": workflowID}).
		QueryRowContext(ctx).
		Scan(&status)
	if err != nil {
		return "", fmt.Errorf("query run %s: %w", workflowID, err)
	}
	return status, nil
}

func nullable(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
