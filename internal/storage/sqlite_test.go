package storage

import (
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spinode/spinode/internal/audit"
	"github.com/spinode/spinode/internal/auth"
	"github.com/spinode/spinode/internal/catalog"
)

// setupTestDB opens a database loaded with the demo catalog.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	tmpDir := t.TempDir()
	jsonlPath := filepath.Join(tmpDir, "classes.jsonl")
	if err := WriteClasses(jsonlPath, catalog.Demo()); err != nil {
		t.Fatalf("Failed to write test JSONL: %v", err)
	}

	db, err := OpenDB(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	n, err := db.RebuildFromJSONL(jsonlPath)
	if err != nil {
		t.Fatalf("Failed to rebuild DB: %v", err)
	}
	if n != 3 {
		t.Fatalf("RebuildFromJSONL() = %d, want 3", n)
	}
	return db
}

func TestOpenDB_SchemaVersion(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "v.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	v, err := db.SchemaVersion()
	if err != nil {
		t.Fatal(err)
	}
	if v != SchemaVersion {
		t.Errorf("SchemaVersion() = %d, want %d", v, SchemaVersion)
	}
}

func TestOpenDB_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	for i := 0; i < 2; i++ {
		db, err := OpenDB(path)
		if err != nil {
			t.Fatalf("OpenDB() #%d error = %v", i, err)
		}
		db.Close()
	}
}

func TestOpenDB_MigratesOldLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")

	// A first-release database: no naming/type columns, no unique index, and
	// a duplicated prop row.
	raw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	for _, stmt := range []string{
		`CREATE TABLE classes (id INTEGER PRIMARY KEY, module TEXT, name TEXT UNIQUE, label TEXT, category TEXT, descr TEXT)`,
		`CREATE TABLE props (id INTEGER PRIMARY KEY, class_id INTEGER, name TEXT, descr TEXT)`,
		`INSERT INTO classes (id, name) VALUES (1, 'fvBD')`,
		`INSERT INTO props (class_id, name, descr) VALUES (1, 'name', 'first')`,
		`INSERT INTO props (class_id, name, descr) VALUES (1, 'name', 'dup')`,
		`INSERT INTO props (class_id, name, descr) VALUES (1, 'dn', '')`,
	} {
		if _, err := raw.Exec(stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}
	raw.Close()

	db, err := OpenDB(path)
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	var n int
	if err := db.db.QueryRow(`SELECT COUNT(*) FROM props WHERE class_id = 1`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("props after migration = %d, want 2", n)
	}

	var descr string
	if err := db.db.QueryRow(`SELECT descr FROM props WHERE name = 'name'`).Scan(&descr); err != nil {
		t.Fatal(err)
	}
	if descr != "first" {
		t.Errorf("kept descr = %q, want the first row", descr)
	}

	props, err := db.PropertyDescriptors("fvBD")
	if err != nil {
		t.Fatalf("PropertyDescriptors() error = %v", err)
	}
	if len(props) != 2 {
		t.Errorf("got %d descriptors", len(props))
	}
}

func TestPropertyDescriptors_Order(t *testing.T) {
	db := setupTestDB(t)

	props, err := db.PropertyDescriptors("l3extOut")
	if err != nil {
		t.Fatalf("PropertyDescriptors() error = %v", err)
	}
	var names []string
	for _, p := range props {
		names = append(names, p.Name)
	}
	// naming first, then alphabetical
	want := []string{"name", "descr", "nameAlias"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
	if !props[0].IsNaming || props[1].IsNaming {
		t.Errorf("naming flags wrong: %+v", props)
	}
}

func TestPropertyDescriptors_Constants(t *testing.T) {
	db := setupTestDB(t)

	props, err := db.PropertyDescriptors("bgpPeerEntry")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, p := range props {
		if p.Name == "operSt" {
			for _, k := range p.Constants {
				got = append(got, k.Name)
			}
		} else if len(p.Constants) != 0 {
			t.Errorf("%s has unexpected constants %v", p.Name, p.Constants)
		}
	}
	want := []string{"idle", "connect", "active", "established"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("operSt constants = %v, want %v (declaration order)", got, want)
	}
}

func TestPropertyDescriptors_UnknownClass(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.PropertyDescriptors("nope"); !errors.Is(err, ErrClassNotFound) {
		t.Errorf("error = %v, want ErrClassNotFound", err)
	}
}

func TestGetClass(t *testing.T) {
	db := setupTestDB(t)

	c, err := db.GetClass("l3extOut")
	if err != nil {
		t.Fatalf("GetClass() error = %v", err)
	}
	if c.Label != "L3Out" || c.RnFormat != "out-{name}" || c.Module != "l3ext" {
		t.Errorf("class = %+v", c)
	}
	if !reflect.DeepEqual(c.NamingProps, []string{"name"}) {
		t.Errorf("NamingProps = %v", c.NamingProps)
	}
	if len(c.Props) != 3 || len(c.Relations) != 3 {
		t.Errorf("props=%d relations=%d", len(c.Props), len(c.Relations))
	}

	if _, err := db.GetClass("missing"); !errors.Is(err, ErrClassNotFound) {
		t.Errorf("error = %v, want ErrClassNotFound", err)
	}
}

func TestNeighbors(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.Neighbors("l3extOut")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"fvTenant", "l3extInstP", "l3extLNodeP"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Neighbors() = %v, want %v", got, want)
	}

	none, err := db.Neighbors("unknownClass")
	if err != nil || len(none) != 0 {
		t.Errorf("Neighbors(unknown) = %v, %v", none, err)
	}
}

func TestListAndCountClasses(t *testing.T) {
	db := setupTestDB(t)

	n, err := db.CountClasses()
	if err != nil || n != 3 {
		t.Fatalf("CountClasses() = %d, %v", n, err)
	}

	all, err := db.ListClasses(0)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, c := range all {
		names = append(names, c.Name)
	}
	want := []string{"bgpPeerEntry", "l3extOut", "vlanCktEp"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("ListClasses() = %v, want %v", names, want)
	}

	two, _ := db.ListClasses(2)
	if len(two) != 2 {
		t.Errorf("ListClasses(2) returned %d", len(two))
	}
}

func TestSearchClasses(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"l3ext", []string{"l3extOut"}},
		{"bgp", []string{"bgpPeerEntry"}},
		{"operSt", []string{"bgpPeerEntry"}},
		{"vlan circuit", []string{"vlanCktEp"}},
		{"zzz", nil},
		{"", nil},
		{"   ", nil},
		{`quote"in`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			hits, err := db.SearchClasses(tt.query, 10)
			if err != nil {
				t.Fatalf("SearchClasses(%q) error = %v", tt.query, err)
			}
			var got []string
			for _, h := range hits {
				got = append(got, h.Name)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SearchClasses(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestRebuild_KeepsRunsAndUsers(t *testing.T) {
	db := setupTestDB(t)

	run := audit.NewRun("alice", "fvBD", "moquery -c fvBD", audit.StatusSuccess, "")
	if err := db.LogRun(run); err != nil {
		t.Fatal(err)
	}
	u, err := auth.NewUser("alice", "pw", false)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.CreateUser(u); err != nil {
		t.Fatal(err)
	}

	if _, err := db.ReplaceClasses(catalog.Demo()[:1]); err != nil {
		t.Fatalf("ReplaceClasses() error = %v", err)
	}

	n, _ := db.CountClasses()
	if n != 1 {
		t.Errorf("classes after replace = %d, want 1", n)
	}
	runs, _ := db.RecentRuns(0)
	if len(runs) != 1 {
		t.Errorf("runs after replace = %d, want 1", len(runs))
	}
	if got, _ := db.GetUser("alice"); got == nil {
		t.Error("user lost on rebuild")
	}
	hits, _ := db.SearchClasses("l3ext", 10)
	if len(hits) != 0 {
		t.Errorf("stale FTS hits: %v", hits)
	}
}

func TestReplaceClasses_InvalidRollsBack(t *testing.T) {
	db := setupTestDB(t)

	bad := []catalog.Class{{Name: "ok"}, {Name: ""}}
	if _, err := db.ReplaceClasses(bad); !errors.Is(err, catalog.ErrEmptyClassName) {
		t.Fatalf("error = %v, want ErrEmptyClassName", err)
	}
	n, _ := db.CountClasses()
	if n != 3 {
		t.Errorf("classes after failed replace = %d, want 3", n)
	}
}

func TestRelations_ResolvedTargets(t *testing.T) {
	db := setupTestDB(t)

	var resolved int
	err := db.db.QueryRow(`SELECT COUNT(*) FROM relations WHERE dst_class_id IS NOT NULL`).Scan(&resolved)
	if err != nil {
		t.Fatal(err)
	}
	// No demo relation points at another demo class.
	if resolved != 0 {
		t.Errorf("resolved = %d, want 0", resolved)
	}

	classes := append(catalog.Demo(), catalog.Class{Name: "fvTenant"})
	if _, err := db.ReplaceClasses(classes); err != nil {
		t.Fatal(err)
	}
	if err := db.db.QueryRow(`SELECT COUNT(*) FROM relations WHERE dst_class_id IS NOT NULL`).Scan(&resolved); err != nil {
		t.Fatal(err)
	}
	if resolved != 1 {
		t.Errorf("resolved = %d, want 1", resolved)
	}
}

func TestRuns(t *testing.T) {
	db := setupTestDB(t)

	first := audit.NewRun("alice", "fvBD", "moquery -c fvBD", "", "")
	first.RanAt = "2025-01-01T00:00:00Z"
	second := audit.NewRun("", "l3extOut", "moquery -c l3extOut", audit.StatusFail, "timeout")
	second.RanAt = "2025-01-02T00:00:00Z"
	for _, r := range []audit.Run{first, second} {
		if err := db.LogRun(r); err != nil {
			t.Fatalf("LogRun() error = %v", err)
		}
	}

	runs, err := db.RecentRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != second.ID {
		t.Fatalf("RecentRuns() = %+v", runs)
	}
	if runs[0].ErrorText != "timeout" || runs[0].User != "" {
		t.Errorf("newest run = %+v", runs[0])
	}
	if !reflect.DeepEqual(runs[1], first) {
		t.Errorf("oldest run = %+v, want %+v", runs[1], first)
	}

	if err := db.LogRun(audit.Run{Status: audit.StatusDraft}); !errors.Is(err, audit.ErrEmptyCommand) {
		t.Errorf("error = %v, want ErrEmptyCommand", err)
	}
}

func TestUsers(t *testing.T) {
	db := setupTestDB(t)

	if got, err := db.GetUser("bob"); got != nil || err != nil {
		t.Fatalf("GetUser(missing) = %v, %v", got, err)
	}

	u, _ := auth.NewUser("bob", "pw", true)
	if err := db.CreateUser(u); err != nil {
		t.Fatal(err)
	}
	if err := db.CreateUser(u); !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate error = %v, want ErrUserExists", err)
	}

	if err := db.TouchLogin("bob", "2025-05-05T05:05:05Z"); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetUser("bob")
	if err != nil || got == nil {
		t.Fatalf("GetUser() = %v, %v", got, err)
	}
	if !got.IsAdmin || got.PasswordHash != u.PasswordHash || got.LastLoginAt != "2025-05-05T05:05:05Z" {
		t.Errorf("user = %+v", got)
	}
}

func TestPrepareFTSQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"bgp", `"bgp"*`},
		{"  l3 out ", `"l3"* "out"*`},
		{`a"b`, `"a""b"*`},
	}
	for _, tt := range tests {
		if got := prepareFTSQuery(tt.in); got != tt.want {
			t.Errorf("prepareFTSQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestImportClasses(t *testing.T) {
	db := setupTestDB(t)
	jsonlPath := filepath.Join(t.TempDir(), "classes.jsonl")
	if err := WriteClasses(jsonlPath, catalog.Demo()); err != nil {
		t.Fatal(err)
	}

	incoming := []catalog.Class{
		{Name: "l3extOut", Label: "Routed Outside"},
		{Name: "fvBD", Props: []catalog.Prop{{Name: "name", IsNaming: true}}},
	}
	added, replaced, err := db.ImportClasses(jsonlPath, incoming)
	if err != nil {
		t.Fatalf("ImportClasses() error = %v", err)
	}
	if added != 1 || replaced != 1 {
		t.Errorf("added=%d replaced=%d, want 1 and 1", added, replaced)
	}

	onDisk, _ := ReadClasses(jsonlPath)
	if len(onDisk) != 4 || onDisk[1].Label != "Routed Outside" || onDisk[3].Name != "fvBD" {
		t.Errorf("JSONL after import = %+v", onDisk)
	}
	n, _ := db.CountClasses()
	if n != 4 {
		t.Errorf("CountClasses() = %d, want 4", n)
	}

	if _, _, err := db.ImportClasses(jsonlPath, []catalog.Class{{Name: ""}}); !errors.Is(err, catalog.ErrEmptyClassName) {
		t.Errorf("error = %v, want ErrEmptyClassName", err)
	}
	if after, _ := ReadClasses(jsonlPath); len(after) != 4 {
		t.Errorf("invalid import modified the JSONL file")
	}
}
