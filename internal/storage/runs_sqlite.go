package storage

import (
	"database/sql"
	"fmt"

	"github.com/spinode/spinode/internal/audit"
)

// LogRun stores a query run. It implements audit.Sink.
func (d *DB) LogRun(run audit.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}
	_, err := d.db.Exec(`
		INSERT INTO query_runs (id, username, class_name, command, status, error_text, ran_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, nullableString(run.User), nullableString(run.ClassName), run.Command,
		run.Status, nullableString(run.ErrorText), run.RanAt)
	if err != nil {
		return fmt.Errorf("logging run: %w", err)
	}
	return nil
}

// RecentRuns returns the newest runs first. limit <= 0 means no limit.
func (d *DB) RecentRuns(limit int) ([]audit.Run, error) {
	query := `
		SELECT id, username, class_name, command, status, error_text, ran_at
		FROM query_runs
		ORDER BY ran_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []audit.Run
	for rows.Next() {
		var r audit.Run
		var user, class, errText sql.NullString
		if err := rows.Scan(&r.ID, &user, &class, &r.Command, &r.Status, &errText, &r.RanAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.User = user.String
		r.ClassName = class.String
		r.ErrorText = errText.String
		out = append(out, r)
	}
	return out, rows.Err()
}

var _ audit.Sink = (*DB)(nil)
