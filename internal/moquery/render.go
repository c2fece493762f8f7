package moquery

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Fixed command fragments.
const (
	Verb               = "moquery"
	SortUniqueFragment = "sort -u"
	DedupeFragment     = "uniq"
)

// Render assembles the full command line:
//
//	moquery -c <class> [-f <filter>] [| grep <pattern>]* [| sort -u] or [| uniq]
//
// The filter and each grep pattern are quoted as single shell words. When
// sortUnique is set, dedupe is ignored.
func Render(className string, conds []Condition, greps []string, sortUnique, dedupe bool) string {
	var sb strings.Builder
	sb.WriteString(Verb)
	sb.WriteString(" -c ")
	sb.WriteString(className)

	if filter := FilterString(className, conds); filter != "" {
		sb.WriteString(" -f ")
		sb.WriteString(ShellQuote(filter))
	}

	for _, g := range greps {
		sb.WriteString(" | grep ")
		sb.WriteString(ShellQuote(g))
	}

	if sortUnique {
		sb.WriteString(" | " + SortUniqueFragment)
	} else if dedupe {
		sb.WriteString(" | " + DedupeFragment)
	}

	return sb.String()
}

// RenderPipeline is Render with a resolved Pipeline.
func RenderPipeline(className string, conds []Condition, p Pipeline) string {
	return Render(className, conds, p.Greps, p.SortUnique, p.Deduplicate)
}

// ShellQuote returns s as one POSIX shell word.
func ShellQuote(s string) string {
	quoted, err := syntax.Quote(s, syntax.LangPOSIX)
	if err == nil {
		return quoted
	}
	// Non-printable input: single quotes still preserve every byte.
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
