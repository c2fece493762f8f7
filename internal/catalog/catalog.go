// Package catalog defines the class metadata records that feed the schema store.
package catalog

import (
	"errors"
	"fmt"

	"github.com/spinode/spinode/internal/meta"
)

// Relation types between classes.
const (
	RelChild  = "child"
	RelParent = "parent"
	RelSource = "rs" // relation source: this class points at Target
	RelTarget = "rt" // relation target: Target points at this class
)

// ValidRelationTypes lists the accepted relation types.
var ValidRelationTypes = []string{RelChild, RelParent, RelSource, RelTarget}

// Class is one managed-object class.
type Class struct {
	Name            string           `json:"name" yaml:"name"`
	Module          string           `json:"module,omitempty" yaml:"module,omitempty"`
	Label           string           `json:"label,omitempty" yaml:"label,omitempty"`
	Category        string           `json:"category,omitempty" yaml:"category,omitempty"`
	RnFormat        string           `json:"rn_format,omitempty" yaml:"rn_format,omitempty"`
	NamingProps     []string         `json:"naming_props,omitempty" yaml:"naming_props,omitempty"`
	Descr           string           `json:"descr,omitempty" yaml:"descr,omitempty"`
	Props           []Prop           `json:"props,omitempty" yaml:"props,omitempty"`
	Relations       []Relation       `json:"relations,omitempty" yaml:"relations,omitempty"`
	DeploymentPaths []DeploymentPath `json:"deployment_paths,omitempty" yaml:"deployment_paths,omitempty"`
}

// Prop is one property of a class.
type Prop struct {
	Name      string          `json:"name" yaml:"name"`
	Descr     string          `json:"descr,omitempty" yaml:"descr,omitempty"`
	IsNaming  bool            `json:"is_naming,omitempty" yaml:"is_naming,omitempty"`
	IsConfig  bool            `json:"is_config,omitempty" yaml:"is_config,omitempty"`
	Type      string          `json:"type,omitempty" yaml:"type,omitempty"`
	Regex     string          `json:"regex,omitempty" yaml:"regex,omitempty"`
	Constants []meta.Constant `json:"constants,omitempty" yaml:"constants,omitempty"`
}

// Relation links a class to another class by name.
type Relation struct {
	Type        string `json:"type" yaml:"type"`
	Target      string `json:"target" yaml:"target"`
	Cardinality string `json:"cardinality,omitempty" yaml:"cardinality,omitempty"`
	Descr       string `json:"descr,omitempty" yaml:"descr,omitempty"`
}

// DeploymentPath is a named query path from a class to a deployed target.
type DeploymentPath struct {
	Name        string `json:"name" yaml:"name"`
	Descr       string `json:"descr,omitempty" yaml:"descr,omitempty"`
	TargetClass string `json:"target_class,omitempty" yaml:"target_class,omitempty"`
}

// Validation errors.
var (
	ErrEmptyClassName    = errors.New("class name is required")
	ErrEmptyPropName     = errors.New("property name is required")
	ErrDuplicateProp     = errors.New("duplicate property")
	ErrInvalidRelation   = errors.New("invalid relation type")
	ErrEmptyRelationDest = errors.New("relation target is required")
)

// Validate checks a class record before import.
func (c *Class) Validate() error {
	if c.Name == "" {
		return ErrEmptyClassName
	}

	seen := make(map[string]bool, len(c.Props))
	for _, p := range c.Props {
		if p.Name == "" {
			return fmt.Errorf("%s: %w", c.Name, ErrEmptyPropName)
		}
		if seen[p.Name] {
			return fmt.Errorf("%s: %w %q", c.Name, ErrDuplicateProp, p.Name)
		}
		seen[p.Name] = true
	}

	for _, r := range c.Relations {
		if !IsValidRelationType(r.Type) {
			return fmt.Errorf("%s: %w %q (valid: %v)", c.Name, ErrInvalidRelation, r.Type, ValidRelationTypes)
		}
		if r.Target == "" {
			return fmt.Errorf("%s: %w", c.Name, ErrEmptyRelationDest)
		}
	}
	return nil
}

// IsValidRelationType reports whether t is a known relation type.
func IsValidRelationType(t string) bool {
	for _, v := range ValidRelationTypes {
		if t == v {
			return true
		}
	}
	return false
}

// NamingPropNames returns the naming props declared on the class, falling back
// to props flagged IsNaming when the class lists none.
func (c *Class) NamingPropNames() []string {
	if len(c.NamingProps) > 0 {
		return c.NamingProps
	}
	var out []string
	for _, p := range c.Props {
		if p.IsNaming {
			out = append(out, p.Name)
		}
	}
	return out
}

// Merge overlays incoming classes on existing ones by name. Replaced classes
// keep their original position; new classes are appended in input order.
func Merge(existing, incoming []Class) (merged []Class, added, replaced int) {
	index := make(map[string]int, len(existing))
	merged = make([]Class, len(existing))
	copy(merged, existing)
	for i, c := range merged {
		index[c.Name] = i
	}

	for _, c := range incoming {
		if i, ok := index[c.Name]; ok {
			merged[i] = c
			replaced++
			continue
		}
		index[c.Name] = len(merged)
		merged = append(merged, c)
		added++
	}
	return merged, added, replaced
}
