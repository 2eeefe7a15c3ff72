package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/pollboard/internal/models"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Repository stores group documents in a SQL table
type Repository struct {
	db     *sql.DB
	driver string
}

// New opens a SQL repository. driver is sqlite3 or postgres.
func New(driver, dsn string) (*Repository, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		// SQLite works best with single connection
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	repo := &Repository{db: db, driver: driver}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// NewSQLite opens a sqlite3 repository at path (":memory:" for tests)
func NewSQLite(path string) (*Repository, error) {
	return New(DriverSQLite, path)
}

// NewWithDB wraps an already opened connection without migrating
func NewWithDB(db *sql.DB, driver string) *Repository {
	return &Repository{db: db, driver: driver}
}

// DB returns the underlying database connection
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS group_documents (
			group_id TEXT PRIMARY KEY,
			body TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres
func (r *Repository) rebind(query string) string {
	if r.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// LoadDocument reads the stored document for groupID
func (r *Repository) LoadDocument(ctx context.Context, groupID string) (*models.GroupData, error) {
	var body string
	err := r.db.QueryRowContext(ctx,
		r.rebind(`SELECT body FROM group_documents WHERE group_id = ?`), groupID).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeDocument([]byte(body))
}

// SaveDocument inserts or replaces the document for groupID
func (r *Repository) SaveDocument(ctx context.Context, groupID string, doc *models.GroupData) error {
	body, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.rebind(`
		INSERT INTO group_documents (group_id, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (group_id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`), groupID, string(body), time.Now().UTC())
	return err
}
