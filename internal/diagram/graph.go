package diagram

import (
	"fmt"

	"github.com/spinode/spinode/internal/catalog"
)

// RelationSource looks up a class's outgoing relations. *storage.DB satisfies it.
type RelationSource interface {
	Relations(className string) ([]catalog.Relation, error)
}

// BuildGraph loads the relations of class from src.
func BuildGraph(src RelationSource, class string) (*Graph, error) {
	if class == "" {
		return nil, fmt.Errorf("class name is required")
	}
	rels, err := src.Relations(class)
	if err != nil {
		return nil, fmt.Errorf("loading relations of %s: %w", class, err)
	}
	return NewGraph(class, rels), nil
}
