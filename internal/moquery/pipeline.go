package moquery

// StepID is the logical identifier of a post-processing pipeline step.
type StepID string

// Known pipeline steps.
const (
	StepGrepDN       StepID = "grep:^dn"
	StepGrepName     StepID = "grep:^name"
	StepGrepEpgDN    StepID = "grep:^epgDn"
	StepGrepOperFlap StepID = "grep:bgp"
	StepGrepDNOper   StepID = "grep:dn|operSt|lastFlapTs"
	StepSortUnique   StepID = "sortu"
	StepDeduplicate  StepID = "uniq"
)

// grepPatterns maps grep steps to the pattern handed to grep.
var grepPatterns = map[StepID]string{
	StepGrepDN:       `^dn`,
	StepGrepName:     `^name `,
	StepGrepEpgDN:    `^epgDn`,
	StepGrepOperFlap: `operSt\|lastFlapTs`,
	StepGrepDNOper:   `dn\|operSt\|lastFlapTs`,
}

// stepOrder fixes the order grep fragments are emitted in, independent of the
// order steps were selected.
var stepOrder = []StepID{
	StepGrepDN,
	StepGrepName,
	StepGrepEpgDN,
	StepGrepOperFlap,
	StepGrepDNOper,
	StepSortUnique,
	StepDeduplicate,
}

// Steps returns every pipeline step in emission order.
func Steps() []StepID {
	out := make([]StepID, len(stepOrder))
	copy(out, stepOrder)
	return out
}

// Known reports whether id names a pipeline step.
func (id StepID) Known() bool {
	if _, ok := grepPatterns[id]; ok {
		return true
	}
	return id == StepSortUnique || id == StepDeduplicate
}

// GrepPattern returns the grep pattern for a grep step.
func (id StepID) GrepPattern() (string, bool) {
	p, ok := grepPatterns[id]
	return p, ok
}

// Pipeline is the resolved form of a set of selected steps.
type Pipeline struct {
	Greps       []string
	SortUnique  bool
	Deduplicate bool
}

// ResolvePipeline maps active step IDs to grep patterns and the trailing
// sort/uniq flags. Unknown IDs are ignored.
func ResolvePipeline(active map[StepID]bool) Pipeline {
	var p Pipeline
	for _, id := range stepOrder {
		if !active[id] {
			continue
		}
		switch id {
		case StepSortUnique:
			p.SortUnique = true
		case StepDeduplicate:
			p.Deduplicate = true
		default:
			p.Greps = append(p.Greps, grepPatterns[id])
		}
	}
	return p
}
