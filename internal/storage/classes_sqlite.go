package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spinode/spinode/internal/catalog"
	"github.com/spinode/spinode/internal/meta"
)

// ErrClassNotFound is returned when a class name has no row.
var ErrClassNotFound = errors.New("class not found")

// ClassSummary is the short form of a class used in listings and search hits.
type ClassSummary struct {
	Name     string `json:"name"`
	Module   string `json:"module,omitempty"`
	Label    string `json:"label,omitempty"`
	Category string `json:"category,omitempty"`
	Descr    string `json:"descr,omitempty"`
}

// catalogTables are cleared on rebuild. Audit and user tables are left alone.
var catalogTables = []string{"prop_enums", "props", "relations", "deployment_paths", "class_fts", "classes"}

// RebuildFromJSONL clears the catalog tables and reloads them from a JSONL file.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	classes, err := ReadClasses(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading classes JSONL: %w", err)
	}
	n, err := d.ReplaceClasses(classes)
	if err != nil {
		return 0, err
	}
	if err := d.recordSync(jsonlPath); err != nil {
		return 0, err
	}
	return n, nil
}

// ReplaceClasses replaces the whole catalog with classes in one transaction.
func (d *DB) ReplaceClasses(classes []catalog.Class) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range catalogTables {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return 0, fmt.Errorf("clearing %s table: %w", table, err)
		}
	}

	if err := insertClasses(tx, classes); err != nil {
		return 0, err
	}

	// Relation targets can only be resolved once every class has a row.
	if _, err := tx.Exec(`
		UPDATE relations
		SET dst_class_id = (SELECT id FROM classes WHERE classes.name = relations.dst_name)
	`); err != nil {
		return 0, fmt.Errorf("resolving relation targets: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing catalog: %w", err)
	}
	return len(classes), nil
}

func insertClasses(tx *sql.Tx, classes []catalog.Class) error {
	classStmt, err := tx.Prepare(`
		INSERT INTO classes (module, name, label, category, rn_format, naming_props_csv, descr)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing classes insert: %w", err)
	}
	defer classStmt.Close()

	propStmt, err := tx.Prepare(`
		INSERT INTO props (class_id, name, descr, is_naming, is_config, ptype, regex)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing props insert: %w", err)
	}
	defer propStmt.Close()

	enumStmt, err := tx.Prepare(`
		INSERT INTO prop_enums (class_id, prop_name, const_name, const_label, const_value)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing prop_enums insert: %w", err)
	}
	defer enumStmt.Close()

	relStmt, err := tx.Prepare(`
		INSERT INTO relations (src_class_id, rel_type, dst_name, cardinality, descr)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing relations insert: %w", err)
	}
	defer relStmt.Close()

	pathStmt, err := tx.Prepare(`
		INSERT INTO deployment_paths (class_id, name, descr, target_class)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing deployment_paths insert: %w", err)
	}
	defer pathStmt.Close()

	ftsStmt, err := tx.Prepare(`INSERT INTO class_fts (rowid, content) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing class_fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, c := range classes {
		if err := c.Validate(); err != nil {
			return err
		}

		naming := c.NamingPropNames()
		res, err := classStmt.Exec(
			nullableString(c.Module), c.Name, nullableString(c.Label),
			nullableString(c.Category), nullableString(c.RnFormat),
			nullableString(strings.Join(naming, ",")), nullableString(c.Descr),
		)
		if err != nil {
			return fmt.Errorf("inserting class %s: %w", c.Name, err)
		}
		classID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading id of class %s: %w", c.Name, err)
		}

		namingSet := make(map[string]bool, len(naming))
		for _, n := range naming {
			namingSet[n] = true
		}

		propNames := make([]string, 0, len(c.Props))
		for _, p := range c.Props {
			isNaming := p.IsNaming || namingSet[p.Name]
			if _, err := propStmt.Exec(
				classID, p.Name, nullableString(p.Descr), boolToInt(isNaming),
				boolToInt(p.IsConfig), nullableString(p.Type), nullableString(p.Regex),
			); err != nil {
				return fmt.Errorf("inserting prop %s.%s: %w", c.Name, p.Name, err)
			}
			for _, k := range p.Constants {
				if _, err := enumStmt.Exec(
					classID, p.Name, k.Name, nullableString(k.Label), nullableString(k.Value),
				); err != nil {
					return fmt.Errorf("inserting constant %s.%s=%s: %w", c.Name, p.Name, k.Name, err)
				}
			}
			propNames = append(propNames, p.Name)
		}

		for _, r := range c.Relations {
			if _, err := relStmt.Exec(
				classID, r.Type, r.Target, nullableString(r.Cardinality), nullableString(r.Descr),
			); err != nil {
				return fmt.Errorf("inserting relation %s->%s: %w", c.Name, r.Target, err)
			}
		}

		for _, p := range c.DeploymentPaths {
			if _, err := pathStmt.Exec(
				classID, p.Name, nullableString(p.Descr), nullableString(p.TargetClass),
			); err != nil {
				return fmt.Errorf("inserting deployment path %s/%s: %w", c.Name, p.Name, err)
			}
		}

		content := strings.Join([]string{
			c.Name, c.Module, c.Label, c.Category, c.RnFormat, c.Descr,
			strings.Join(naming, " "), strings.Join(propNames, " "),
		}, " ")
		if _, err := ftsStmt.Exec(classID, content); err != nil {
			return fmt.Errorf("indexing class %s: %w", c.Name, err)
		}
	}
	return nil
}

// CountClasses returns the number of classes in the catalog.
func (d *DB) CountClasses() (int, error) {
	var n int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM classes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting classes: %w", err)
	}
	return n, nil
}

// ListClasses returns all classes ordered by name. limit <= 0 means no limit.
func (d *DB) ListClasses(limit int) ([]ClassSummary, error) {
	query := `SELECT name, module, label, category, descr FROM classes ORDER BY name`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing classes: %w", err)
	}
	defer rows.Close()
	return scanSummaries(rows)
}

// SearchClasses runs a prefix full-text search over class names, labels,
// descriptions and property names. A blank query matches nothing.
func (d *DB) SearchClasses(query string, limit int) ([]ClassSummary, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := d.db.Query(`
		SELECT c.name, c.module, c.label, c.category, c.descr
		FROM class_fts
		JOIN classes c ON c.id = class_fts.rowid
		WHERE class_fts MATCH ?
		ORDER BY rank, c.name
		LIMIT ?
	`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching classes: %w", err)
	}
	defer rows.Close()
	return scanSummaries(rows)
}

func scanSummaries(rows *sql.Rows) ([]ClassSummary, error) {
	var out []ClassSummary
	for rows.Next() {
		var s ClassSummary
		var module, label, category, descr sql.NullString
		if err := rows.Scan(&s.Name, &module, &label, &category, &descr); err != nil {
			return nil, fmt.Errorf("scanning class: %w", err)
		}
		s.Module = module.String
		s.Label = label.String
		s.Category = category.String
		s.Descr = descr.String
		out = append(out, s)
	}
	return out, rows.Err()
}

// classID returns the row id for a class name.
func (d *DB) classID(name string) (int64, error) {
	var id int64
	err := d.db.QueryRow(`SELECT id FROM classes WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrClassNotFound, name)
	}
	if err != nil {
		return 0, fmt.Errorf("looking up class %s: %w", name, err)
	}
	return id, nil
}

// PropertyDescriptors returns a class's properties with naming properties
// first, then alphabetical. Constants keep their declaration order.
func (d *DB) PropertyDescriptors(className string) ([]meta.PropertyDescriptor, error) {
	id, err := d.classID(className)
	if err != nil {
		return nil, err
	}

	rows, err := d.db.Query(`
		SELECT name, is_naming, ptype, regex
		FROM props
		WHERE class_id = ?
		ORDER BY is_naming DESC, name
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying props of %s: %w", className, err)
	}
	defer rows.Close()

	var props []meta.PropertyDescriptor
	for rows.Next() {
		var p meta.PropertyDescriptor
		var isNaming int
		var ptype, regex sql.NullString
		if err := rows.Scan(&p.Name, &isNaming, &ptype, &regex); err != nil {
			return nil, fmt.Errorf("scanning prop: %w", err)
		}
		p.IsNaming = isNaming != 0
		p.Type = ptype.String
		p.Regex = regex.String
		props = append(props, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	enums, err := d.constants(id)
	if err != nil {
		return nil, err
	}
	for i := range props {
		props[i].Constants = enums[props[i].Name]
	}
	return props, nil
}

// constants returns a class's enum constants keyed by property name.
func (d *DB) constants(classID int64) (map[string][]meta.Constant, error) {
	rows, err := d.db.Query(`
		SELECT prop_name, const_name, const_label, const_value
		FROM prop_enums
		WHERE class_id = ?
		ORDER BY id
	`, classID)
	if err != nil {
		return nil, fmt.Errorf("querying constants: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]meta.Constant)
	for rows.Next() {
		var prop string
		var k meta.Constant
		var label, value sql.NullString
		if err := rows.Scan(&prop, &k.Name, &label, &value); err != nil {
			return nil, fmt.Errorf("scanning constant: %w", err)
		}
		k.Label = label.String
		k.Value = value.String
		out[prop] = append(out[prop], k)
	}
	return out, rows.Err()
}

// GetClass returns the full record for a class.
func (d *DB) GetClass(name string) (*catalog.Class, error) {
	var c catalog.Class
	var id int64
	var module, label, category, rnFormat, naming, descr sql.NullString
	err := d.db.QueryRow(`
		SELECT id, module, name, label, category, rn_format, naming_props_csv, descr
		FROM classes WHERE name = ?
	`, name).Scan(&id, &module, &c.Name, &label, &category, &rnFormat, &naming, &descr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrClassNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up class %s: %w", name, err)
	}
	c.Module = module.String
	c.Label = label.String
	c.Category = category.String
	c.RnFormat = rnFormat.String
	c.Descr = descr.String
	if naming.String != "" {
		c.NamingProps = strings.Split(naming.String, ",")
	}

	if c.Props, err = d.classProps(id); err != nil {
		return nil, err
	}
	if c.Relations, err = d.Relations(name); err != nil {
		return nil, err
	}
	if c.DeploymentPaths, err = d.deploymentPaths(id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (d *DB) classProps(classID int64) ([]catalog.Prop, error) {
	rows, err := d.db.Query(`
		SELECT name, descr, is_naming, is_config, ptype, regex
		FROM props WHERE class_id = ?
		ORDER BY is_naming DESC, name
	`, classID)
	if err != nil {
		return nil, fmt.Errorf("querying props: %w", err)
	}
	defer rows.Close()

	var props []catalog.Prop
	for rows.Next() {
		var p catalog.Prop
		var descr, ptype, regex sql.NullString
		var isNaming, isConfig int
		if err := rows.Scan(&p.Name, &descr, &isNaming, &isConfig, &ptype, &regex); err != nil {
			return nil, fmt.Errorf("scanning prop: %w", err)
		}
		p.Descr = descr.String
		p.IsNaming = isNaming != 0
		p.IsConfig = isConfig != 0
		p.Type = ptype.String
		p.Regex = regex.String
		props = append(props, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	enums, err := d.constants(classID)
	if err != nil {
		return nil, err
	}
	for i := range props {
		props[i].Constants = enums[props[i].Name]
	}
	return props, nil
}

func (d *DB) deploymentPaths(classID int64) ([]catalog.DeploymentPath, error) {
	rows, err := d.db.Query(`
		SELECT name, descr, target_class FROM deployment_paths
		WHERE class_id = ? ORDER BY id
	`, classID)
	if err != nil {
		return nil, fmt.Errorf("querying deployment paths: %w", err)
	}
	defer rows.Close()

	var out []catalog.DeploymentPath
	for rows.Next() {
		var p catalog.DeploymentPath
		var descr, target sql.NullString
		if err := rows.Scan(&p.Name, &descr, &target); err != nil {
			return nil, fmt.Errorf("scanning deployment path: %w", err)
		}
		p.Descr = descr.String
		p.TargetClass = target.String
		out = append(out, p)
	}
	return out, rows.Err()
}

// Relations returns a class's outgoing relations sorted by target name.
// Targets that resolve to a catalog class use that class's stored name.
func (d *DB) Relations(className string) ([]catalog.Relation, error) {
	rows, err := d.db.Query(`
		SELECT r.rel_type, COALESCE(dst.name, r.dst_name) AS target, r.cardinality, r.descr
		FROM relations r
		JOIN classes src ON src.id = r.src_class_id
		LEFT JOIN classes dst ON dst.id = r.dst_class_id
		WHERE src.name = ?
		ORDER BY target, r.rel_type
	`, className)
	if err != nil {
		return nil, fmt.Errorf("querying relations of %s: %w", className, err)
	}
	defer rows.Close()

	var out []catalog.Relation
	for rows.Next() {
		var r catalog.Relation
		var cardinality, descr sql.NullString
		if err := rows.Scan(&r.Type, &r.Target, &cardinality, &descr); err != nil {
			return nil, fmt.Errorf("scanning relation: %w", err)
		}
		r.Cardinality = cardinality.String
		r.Descr = descr.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// Neighbors returns the distinct names of classes related to className, sorted.
func (d *DB) Neighbors(className string) ([]string, error) {
	rels, err := d.Relations(className)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(rels))
	var out []string
	for _, r := range rels {
		if !seen[r.Target] {
			seen[r.Target] = true
			out = append(out, r.Target)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ImportClasses merges incoming classes into the JSONL file and rebuilds the
// catalog tables from it.
func (d *DB) ImportClasses(jsonlPath string, incoming []catalog.Class) (added, replaced int, err error) {
	added, replaced, err = MergeClasses(jsonlPath, incoming)
	if err != nil {
		return 0, 0, err
	}
	if _, err := d.RebuildFromJSONL(jsonlPath); err != nil {
		return 0, 0, err
	}
	return added, replaced, nil
}
