// Package storage persists the class catalog, audit records and users in
// SQLite, with classes.jsonl as the catalog's source of truth.
package storage

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// SchemaVersion is recorded in PRAGMA user_version.
const SchemaVersion = 4

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates missing tables, upgrades older layouts and stamps the
// schema version.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS classes (
			id INTEGER PRIMARY KEY,
			module TEXT,
			name TEXT UNIQUE,
			label TEXT,
			category TEXT,
			rn_format TEXT,
			naming_props_csv TEXT,
			descr TEXT
		);

		CREATE TABLE IF NOT EXISTS props (
			id INTEGER PRIMARY KEY,
			class_id INTEGER REFERENCES classes(id) ON DELETE CASCADE,
			name TEXT,
			descr TEXT,
			is_naming INTEGER DEFAULT 0,
			is_config INTEGER DEFAULT 0,
			ptype TEXT,
			regex TEXT
		);

		-- Enumerated constants, in declaration order (rowid)
		CREATE TABLE IF NOT EXISTS prop_enums (
			id INTEGER PRIMARY KEY,
			class_id INTEGER REFERENCES classes(id) ON DELETE CASCADE,
			prop_name TEXT,
			const_name TEXT,
			const_label TEXT,
			const_value TEXT
		);

		-- dst_class_id is filled in a second pass once all classes exist
		CREATE TABLE IF NOT EXISTS relations (
			id INTEGER PRIMARY KEY,
			src_class_id INTEGER REFERENCES classes(id) ON DELETE CASCADE,
			rel_type TEXT,
			dst_name TEXT,
			dst_class_id INTEGER,
			cardinality TEXT,
			descr TEXT
		);

		CREATE TABLE IF NOT EXISTS deployment_paths (
			id INTEGER PRIMARY KEY,
			class_id INTEGER REFERENCES classes(id) ON DELETE CASCADE,
			name TEXT,
			descr TEXT,
			target_class TEXT
		);

		CREATE TABLE IF NOT EXISTS query_runs (
			id TEXT PRIMARY KEY,
			username TEXT,
			class_name TEXT,
			command TEXT NOT NULL,
			status TEXT NOT NULL,
			error_text TEXT,
			ran_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			username TEXT UNIQUE,
			password_hash TEXT NOT NULL,
			is_admin INTEGER DEFAULT 0,
			created_at TEXT,
			last_login_at TEXT
		);

		CREATE TABLE IF NOT EXISTS _meta (
			key TEXT PRIMARY KEY,
			value TEXT
		);

		CREATE VIRTUAL TABLE IF NOT EXISTS class_fts USING fts5(content, tokenize='unicode61');

		CREATE INDEX IF NOT EXISTS idx_classes_name ON classes(name);
		CREATE INDEX IF NOT EXISTS idx_rel_src ON relations(src_class_id);
		CREATE INDEX IF NOT EXISTS idx_query_runs_ran_at ON query_runs(ran_at DESC);
	`
	if _, err := db.Exec(schema); err != nil {
		return err
	}

	// Columns added after the first release
	for _, col := range []struct{ table, name, decl string }{
		{"classes", "rn_format", "TEXT"},
		{"classes", "naming_props_csv", "TEXT"},
		{"props", "is_naming", "INTEGER DEFAULT 0"},
		{"props", "is_config", "INTEGER DEFAULT 0"},
		{"props", "ptype", "TEXT"},
		{"props", "regex", "TEXT"},
	} {
		if err := addColumnIfMissing(db, col.table, col.name, col.decl); err != nil {
			return err
		}
	}

	// Older databases may hold duplicate props; the unique index needs them gone.
	if _, err := deleteDuplicateProps(db); err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_props_class_name ON props(class_id, name)`); err != nil {
		return err
	}

	var version int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return err
	}
	if version < SchemaVersion {
		if _, err := db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, SchemaVersion)); err != nil {
			return err
		}
	}
	return nil
}

// addColumnIfMissing adds a column to table unless it already exists.
func addColumnIfMissing(db *sql.DB, table, col, decl string) error {
	rows, err := db.Query(fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return fmt.Errorf("reading columns of %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return err
		}
		if strings.EqualFold(name, col) {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	_, err = db.Exec(fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, col, decl))
	if err != nil {
		return fmt.Errorf("adding %s.%s: %w", table, col, err)
	}
	return nil
}

// deleteDuplicateProps keeps the first row of every (class_id, name) pair.
func deleteDuplicateProps(db *sql.DB) (int64, error) {
	res, err := db.Exec(`
		DELETE FROM props
		WHERE rowid NOT IN (
			SELECT MIN(rowid) FROM props GROUP BY class_id, name
		)`)
	if err != nil {
		return 0, fmt.Errorf("deleting duplicate props: %w", err)
	}
	return res.RowsAffected()
}

// DeleteDuplicateProps removes duplicate props and returns how many were dropped.
func (d *DB) DeleteDuplicateProps() (int64, error) {
	return deleteDuplicateProps(d.db)
}

// SchemaVersion returns the database's PRAGMA user_version.
func (d *DB) SchemaVersion() (int, error) {
	var v int
	err := d.db.QueryRow(`PRAGMA user_version`).Scan(&v)
	return v, err
}

// nullableString converts a string to sql.NullString, treating empty as NULL.
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// boolToInt converts a bool to SQLite's 0/1.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// prepareFTSQuery turns free text into an FTS5 query where every token is a
// quoted prefix term; tokens are ANDed.
func prepareFTSQuery(query string) string {
	var terms []string
	for _, tok := range strings.Fields(query) {
		escaped := strings.ReplaceAll(tok, `"`, `""`)
		terms = append(terms, `"`+escaped+`"*`)
	}
	return strings.Join(terms, " ")
}
