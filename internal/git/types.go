// Package git compares the class catalog in the working tree with earlier
// commits.
package git

import "github.com/spinode/spinode/internal/catalog"

// CatalogDiff represents changes to classes.jsonl between two git states.
type CatalogDiff struct {
	Added   []catalog.Class `json:"added"`
	Removed []catalog.Class `json:"removed"`
	Changed []string        `json:"changed"` // names of classes whose record differs
}

// IsEmpty reports whether nothing changed.
func (d *CatalogDiff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}
