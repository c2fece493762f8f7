// Package moquery builds moquery command lines from structured filter conditions.
package moquery

import (
	"fmt"
	"strings"
)

// Operator is a filter comparison. The set is closed: every value produced by
// this package is one of the constants below.
type Operator int

const (
	OpExact Operator = iota
	OpContains
	OpRegex
	OpStartsWith
	OpIn
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
)

// operatorNames holds canonical names indexed by Operator.
var operatorNames = [...]string{
	OpExact:      "exact",
	OpContains:   "contains",
	OpRegex:      "regex",
	OpStartsWith: "startswith",
	OpIn:         "in",
	OpNe:         "ne",
	OpGt:         "gt",
	OpGe:         "ge",
	OpLt:         "lt",
	OpLe:         "le",
}

// operatorAliases maps symbolic spellings to their canonical operator.
var operatorAliases = map[string]Operator{
	"=":  OpExact,
	"!=": OpNe,
	">":  OpGt,
	">=": OpGe,
	"<":  OpLt,
	"<=": OpLe,
}

// String returns the canonical operator name.
func (o Operator) String() string {
	if o < 0 || int(o) >= len(operatorNames) {
		return fmt.Sprintf("Operator(%d)", int(o))
	}
	return operatorNames[o]
}

// MarshalText encodes the operator as its canonical name.
func (o Operator) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText accepts canonical names and aliases.
func (o *Operator) UnmarshalText(text []byte) error {
	op, err := ParseOperator(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// ParseOperator normalizes a canonical name or alias (!=, >, >=, <, <=, =)
// to an Operator. Matching on names is case-insensitive.
func ParseOperator(s string) (Operator, error) {
	s = strings.TrimSpace(s)
	if op, ok := operatorAliases[s]; ok {
		return op, nil
	}
	lower := strings.ToLower(s)
	for i, name := range operatorNames {
		if name == lower {
			return Operator(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOperator, s)
}

// Wildcard reports whether the rendered clause carries the '*' marker
// between property and value.
func (o Operator) Wildcard() bool {
	switch o {
	case OpContains, OpRegex, OpStartsWith, OpIn:
		return true
	case OpExact, OpNe, OpGt, OpGe, OpLt, OpLe:
		return false
	}
	panic(fmt.Sprintf("moquery: unhandled operator %d", int(o)))
}

// Symbol returns the comparison prefix placed after the property name.
func (o Operator) Symbol() string {
	switch o {
	case OpNe:
		return "!"
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpExact, OpContains, OpRegex, OpStartsWith, OpIn:
		return ""
	}
	panic(fmt.Sprintf("moquery: unhandled operator %d", int(o)))
}

// OperatorInfo pairs an operator with a picker label.
type OperatorInfo struct {
	Operator Operator `json:"operator"`
	Label    string   `json:"label"`
}

// Operators lists every operator in picker order.
func Operators() []OperatorInfo {
	return []OperatorInfo{
		{OpExact, "= (exact)"},
		{OpContains, "contains"},
		{OpRegex, "regex"},
		{OpStartsWith, "starts with"},
		{OpIn, "in list"},
		{OpNe, "!= (not equal)"},
		{OpGt, "> (greater than)"},
		{OpGe, ">= (greater or equal)"},
		{OpLt, "< (less than)"},
		{OpLe, "<= (less or equal)"},
	}
}
