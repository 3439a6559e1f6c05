package leads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

// SQLiteSchema creates the customers table used by the single-file store.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS customers (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	phone      TEXT NOT NULL DEFAULT '',
	project_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS customers_email_key ON customers (lower(email));
`

// SQLiteRepository stores leads in a local SQLite database file.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens path with the sqlite3 driver and applies SQLiteSchema.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("leads: open sqlite: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, SQLiteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("leads: apply sqlite schema: %w", err)
	}
	return db, nil
}

// NewSQLiteRepository wraps an open database handle.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	if db == nil {
		panic("leads: sql db required")
	}
	return &SQLiteRepository{db: db, now: time.Now}
}

// Create inserts a new row.
func (r *SQLiteRepository) Create(ctx context.Context, req *CreateCustomerRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	createdAt := r.now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (name, email, phone, project_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		req.Name, req.Email, req.Phone, req.ProjectID, createdAt,
	)
	if err != nil {
		if isSQLiteUnique(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("leads: last insert id: %w", err)
	}
	return &Lead{
		ID:        id,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		ProjectID: req.ProjectID,
		CreatedAt: createdAt,
	}, nil
}

// List returns leads newest first, optionally for one project.
func (r *SQLiteRepository) List(ctx context.Context, filter ListFilter) ([]*Lead, error) {
	filter = filter.Normalize()
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, phone, project_id, created_at
		FROM customers
		WHERE (? = '' OR project_id = ?)
		ORDER BY id DESC
		LIMIT ? OFFSET ?`,
		filter.ProjectID, filter.ProjectID, filter.Limit, filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	defer rows.Close()

	out := make([]*Lead, 0, filter.Limit)
	for rows.Next() {
		var lead Lead
		if err := rows.Scan(&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.ProjectID, &lead.CreatedAt); err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, &lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return out, nil
}

func isSQLiteUnique(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
