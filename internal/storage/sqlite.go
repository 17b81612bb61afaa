package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"treedrag/internal/model"
)

// SQLiteStore persists a document in a single-table SQLite database. It
// implements Store and additionally supports targeted order updates so a
// drag commit does not rewrite the whole file.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id        TEXT PRIMARY KEY,
	parent_id TEXT,
	ord       REAL,
	text      TEXT NOT NULL,
	collapsed INTEGER NOT NULL DEFAULT 0,
	created   TEXT NOT NULL,
	modified  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// OpenSQLiteStore opens (or creates) the database at path and ensures the
// schema exists.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads the full document.
func (s *SQLiteStore) Load() (*model.Document, error) {
	doc := model.NewDocument("Untitled")

	var title string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'title'`).Scan(&title)
	if err == nil {
		doc.Title = title
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to read title: %w", err)
	}

	rows, err := s.db.Query(`SELECT id, parent_id, ord, text, collapsed, created, modified FROM records`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r model.Record
		var parentID sql.NullString
		var ord sql.NullFloat64
		var collapsed int
		var created, modified string
		if err := rows.Scan(&r.ID, &parentID, &ord, &r.Text, &collapsed, &created, &modified); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		// Timestamps are stored as TEXT; the driver hands them back as
		// strings, not time.Time.
		if r.Created, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("failed to parse created time for %s: %w", r.ID, err)
		}
		if r.Modified, err = time.Parse(time.RFC3339Nano, modified); err != nil {
			return nil, fmt.Errorf("failed to parse modified time for %s: %w", r.ID, err)
		}
		if parentID.Valid {
			pid := parentID.String
			r.ParentID = &pid
		}
		if ord.Valid {
			o := ord.Float64
			r.Order = &o
		}
		r.Collapsed = collapsed != 0
		doc.Records = append(doc.Records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return doc, nil
}

// Save replaces the stored document with doc in one transaction.
func (s *SQLiteStore) Save(doc *model.Document) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM records`); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('title', ?)`, doc.Title); err != nil {
		return fmt.Errorf("failed to store title: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO records (id, parent_id, ord, text, collapsed, created, modified) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range doc.Records {
		var parentID any
		if r.ParentID != nil {
			parentID = *r.ParentID
		}
		var ord any
		if r.Order != nil {
			ord = *r.Order
		}
		collapsed := 0
		if r.Collapsed {
			collapsed = 1
		}
		created := r.Created.Format(time.RFC3339Nano)
		modified := r.Modified.Format(time.RFC3339Nano)
		if _, err := stmt.Exec(r.ID, parentID, ord, r.Text, collapsed, created, modified); err != nil {
			return fmt.Errorf("failed to insert record %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// UpdateMove persists a single drag commit: the node's new order key and
// parent.
func (s *SQLiteStore) UpdateMove(id string, newOrder float64, newParentID *string) error {
	var parentID any
	if newParentID != nil {
		parentID = *newParentID
	}
	res, err := s.db.Exec(`UPDATE records SET ord = ?, parent_id = ? WHERE id = ?`, newOrder, parentID, id)
	if err != nil {
		return fmt.Errorf("failed to update record %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("record %s not found", id)
	}
	return nil
}

// UpdateOrders persists order keys assigned at build time for records that
// lacked one.
func (s *SQLiteStore) UpdateOrders(orders map[string]float64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`UPDATE records SET ord = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare update: %w", err)
	}
	defer stmt.Close()

	for id, o := range orders {
		if _, err := stmt.Exec(o, id); err != nil {
			return fmt.Errorf("failed to update order for %s: %w", id, err)
		}
	}
	return tx.Commit()
}
