package git

import (
	"reflect"
	"sort"

	"github.com/spinode/spinode/internal/catalog"
	"github.com/spinode/spinode/internal/config"
	"github.com/spinode/spinode/internal/storage"
)

// DiffSince compares the working tree classes.jsonl to a commit.
func DiffSince(gitRoot, repoRoot, commitRef string) (*CatalogDiff, error) {
	old, err := ClassesAtCommit(gitRoot, repoRoot, commitRef)
	if err != nil {
		return nil, err
	}
	current, err := storage.ReadClasses(config.ClassesPath(repoRoot))
	if err != nil {
		return nil, err
	}
	return diffClasses(old, current), nil
}

// diffClasses compares two catalogs by class name. Output lists are sorted by
// name.
func diffClasses(old, current []catalog.Class) *CatalogDiff {
	oldByName := make(map[string]catalog.Class, len(old))
	for _, c := range old {
		oldByName[c.Name] = c
	}
	currentByName := make(map[string]catalog.Class, len(current))
	for _, c := range current {
		currentByName[c.Name] = c
	}

	d := &CatalogDiff{
		Added:   []catalog.Class{},
		Removed: []catalog.Class{},
		Changed: []string{},
	}
	for name, c := range currentByName {
		prev, ok := oldByName[name]
		switch {
		case !ok:
			d.Added = append(d.Added, c)
		case !reflect.DeepEqual(prev, c):
			d.Changed = append(d.Changed, name)
		}
	}
	for name, c := range oldByName {
		if _, ok := currentByName[name]; !ok {
			d.Removed = append(d.Removed, c)
		}
	}

	sort.Slice(d.Added, func(i, j int) bool { return d.Added[i].Name < d.Added[j].Name })
	sort.Slice(d.Removed, func(i, j int) bool { return d.Removed[i].Name < d.Removed[j].Name })
	sort.Strings(d.Changed)
	return d
}
