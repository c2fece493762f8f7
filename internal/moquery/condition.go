package moquery

import (
	"errors"
	"regexp"
	"strings"
)

// Input errors. These describe incomplete user input and are returned before
// a condition ever reaches a query.
var (
	ErrMissingProperty = errors.New("property is required")
	ErrMissingOperator = errors.New("operator is required")
	ErrMissingValue    = errors.New("value is required")
	ErrUnknownOperator = errors.New("unknown operator")
)

// Condition is a single filter on one property of the queried class.
type Condition struct {
	Property string   `json:"property"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

// NewCondition validates raw picker input and builds a Condition.
// The operator may be a canonical name or an alias.
func NewCondition(property, operator, value string) (Condition, error) {
	property = strings.TrimSpace(property)
	if property == "" {
		return Condition{}, ErrMissingProperty
	}
	if strings.TrimSpace(operator) == "" {
		return Condition{}, ErrMissingOperator
	}
	if strings.TrimSpace(value) == "" {
		return Condition{}, ErrMissingValue
	}
	op, err := ParseOperator(operator)
	if err != nil {
		return Condition{}, err
	}
	// An empty alternation would match every object.
	if op == OpIn && len(listItems(value)) == 0 {
		return Condition{}, ErrMissingValue
	}
	return Condition{Property: property, Operator: op, Value: value}, nil
}

// RenderedValue returns the value as it appears between the clause quotes.
func (c Condition) RenderedValue() string {
	var val string
	switch c.Operator {
	case OpStartsWith:
		val = "^" + regexp.QuoteMeta(c.Value)
	case OpContains:
		val = regexp.QuoteMeta(c.Value)
	case OpIn:
		val = alternation(c.Value)
	case OpRegex, OpExact, OpNe, OpGt, OpGe, OpLt, OpLe:
		val = c.Value
	default:
		panic("moquery: unhandled operator " + c.Operator.String())
	}
	return strings.ReplaceAll(val, `"`, `\"`)
}

// listItems splits a comma-separated list, trimming items and dropping
// empty ones.
func listItems(raw string) []string {
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

// alternation turns "a, b ,c" into "(a|b|c)" with each item quoted as a
// literal.
func alternation(raw string) string {
	items := listItems(raw)
	for i, item := range items {
		items[i] = regexp.QuoteMeta(item)
	}
	return "(" + strings.Join(items, "|") + ")"
}

// Clause renders the condition as <class>.<prop><symbol><marker>"<value>".
func (c Condition) Clause(className string) string {
	var sb strings.Builder
	sb.WriteString(className)
	sb.WriteByte('.')
	sb.WriteString(c.Property)
	sb.WriteString(c.Operator.Symbol())
	if c.Operator.Wildcard() {
		sb.WriteByte('*')
	}
	sb.WriteByte('"')
	sb.WriteString(c.RenderedValue())
	sb.WriteByte('"')
	return sb.String()
}

// String renders the condition for listings ("name startswith OUT-").
func (c Condition) String() string {
	return c.Property + " " + c.Operator.String() + " " + c.Value
}

// FilterString joins the clauses of all conditions with a single space.
// An empty slice yields an empty string.
func FilterString(className string, conds []Condition) string {
	clauses := make([]string, len(conds))
	for i, c := range conds {
		clauses[i] = c.Clause(className)
	}
	return strings.Join(clauses, " ")
}
