package diagram

import "fmt"

// Output formats.
const (
	FormatMermaid = "mermaid"
	FormatASCII   = "ascii"
	FormatHTML    = "html"
)

// ValidFormats lists the accepted output formats.
var ValidFormats = []string{FormatMermaid, FormatASCII, FormatHTML}

// IsValidFormat reports whether f is a known output format.
func IsValidFormat(f string) bool {
	for _, v := range ValidFormats {
		if f == v {
			return true
		}
	}
	return false
}

// Render draws g in the requested format. An empty format means Mermaid.
func Render(g *Graph, format string, opts HTMLOptions) (string, error) {
	switch format {
	case "", FormatMermaid:
		return Mermaid(g), nil
	case FormatASCII:
		return ASCII(g), nil
	case FormatHTML:
		return GenerateHTML(g, opts)
	default:
		return "", fmt.Errorf("invalid format %q (valid: %v)", format, ValidFormats)
	}
}
