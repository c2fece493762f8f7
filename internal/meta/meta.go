// Package meta derives pipeline options and starter templates from a class's
// property descriptors.
//
// Every function here is a pure function of its arguments. Callers re-derive
// on each class selection rather than caching results.
package meta

import (
	"strings"

	"github.com/spinode/spinode/internal/moquery"
)

// Constant is one enumerated value a property may take.
type Constant struct {
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
	Value string `json:"value,omitempty"`
}

// PropertyDescriptor describes one property of a class as read from the
// schema store.
type PropertyDescriptor struct {
	Name      string     `json:"name"`
	IsNaming  bool       `json:"is_naming"`
	Type      string     `json:"type,omitempty"`
	Regex     string     `json:"regex,omitempty"`
	Constants []Constant `json:"constants,omitempty"`
}

// PipelineOption is a pipeline step offered for a class.
type PipelineOption struct {
	ID    moquery.StepID `json:"id"`
	Label string         `json:"label"`
}

// Template is a pre-built combination of conditions and pipeline steps.
type Template struct {
	Title      string              `json:"title"`
	Conditions []moquery.Condition `json:"conditions"`
	Pipes      []moquery.StepID    `json:"pipes,omitempty"`
}

// Maximum number of enum constants sampled into an "in" template.
const maxEnumSample = 3

// Sample values used by templates.
const (
	SampleAliasRegex = "(123|456|789)"
	SampleNamePrefix = "OUT-"
	SampleDescr      = "DMZ"
	SampleEncap      = "vlan-905"
)

// PropertyNames returns the set of property names in props.
func PropertyNames(props []PropertyDescriptor) map[string]bool {
	names := make(map[string]bool, len(props))
	for _, p := range props {
		names[p.Name] = true
	}
	return names
}

// DerivePipelineOptions returns the pipeline steps that make sense for a class
// with the given property names. Sort-unique and deduplicate are always offered,
// last, in that order.
func DerivePipelineOptions(names map[string]bool) []PipelineOption {
	var out []PipelineOption
	operOrFlap := names["operSt"] || names["lastFlapTs"]

	if names["dn"] {
		out = append(out, PipelineOption{moquery.StepGrepDN, `grep "^dn"`})
	}
	if names["name"] || names["nameAlias"] {
		out = append(out, PipelineOption{moquery.StepGrepName, `grep "^name "`})
	}
	if names["epgDn"] {
		out = append(out, PipelineOption{moquery.StepGrepEpgDN, `grep "^epgDn"`})
	}
	if operOrFlap {
		out = append(out, PipelineOption{moquery.StepGrepOperFlap, `grep "operSt\|lastFlapTs"`})
	}
	if names["dn"] && operOrFlap {
		out = append(out, PipelineOption{moquery.StepGrepDNOper, `grep "dn\|operSt\|lastFlapTs"`})
	}

	out = append(out,
		PipelineOption{moquery.StepSortUnique, moquery.SortUniqueFragment},
		PipelineOption{moquery.StepDeduplicate, moquery.DedupeFragment},
	)
	return out
}

// DeriveTemplates suggests starter queries from the class's properties. props
// must be in schema-store order; the first property carrying enum constants
// gets the "in" template.
func DeriveTemplates(props []PropertyDescriptor) []Template {
	names := PropertyNames(props)
	var out []Template

	if names["nameAlias"] {
		out = append(out, Template{
			Title:      "Alias regex (ID list)",
			Conditions: []moquery.Condition{{Property: "nameAlias", Operator: moquery.OpRegex, Value: SampleAliasRegex}},
			Pipes:      []moquery.StepID{moquery.StepGrepName, moquery.StepSortUnique},
		})
	}
	if names["name"] {
		out = append(out, Template{
			Title:      "Name prefix",
			Conditions: []moquery.Condition{{Property: "name", Operator: moquery.OpStartsWith, Value: SampleNamePrefix}},
			Pipes:      []moquery.StepID{moquery.StepGrepName},
		})
	}
	if names["descr"] {
		out = append(out, Template{
			Title:      "Description contains",
			Conditions: []moquery.Condition{{Property: "descr", Operator: moquery.OpContains, Value: SampleDescr}},
		})
	}

	for _, p := range props {
		if len(p.Constants) == 0 {
			continue
		}
		if sample := enumSample(p.Constants); sample != "" {
			out = append(out, Template{
				Title:      p.Name + " in (enum)",
				Conditions: []moquery.Condition{{Property: p.Name, Operator: moquery.OpIn, Value: sample}},
			})
		}
		break
	}

	for _, candidate := range []string{"encap", "vlan", "encapId"} {
		if names[candidate] {
			out = append(out, Template{
				Title:      "VLAN encap contains",
				Conditions: []moquery.Condition{{Property: candidate, Operator: moquery.OpContains, Value: SampleEncap}},
			})
			break
		}
	}

	return out
}

// enumSample joins up to maxEnumSample constant names with commas.
func enumSample(consts []Constant) string {
	n := min(len(consts), maxEnumSample)
	names := make([]string, 0, n)
	for _, c := range consts[:n] {
		names = append(names, c.Name)
	}
	return strings.Join(names, ",")
}
