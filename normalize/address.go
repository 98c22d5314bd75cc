package normalize

import (
	"regexp"
	"strings"
)

var (
	lineBreakRegex  = regexp.MustCompile(`\r\n|\r|\n`)
	multiCommaRegex = regexp.MustCompile(`,(?:\s*,)+`)
	multiSpaceRegex = regexp.MustCompile(`\s+`)
	commaSpaceRegex = regexp.MustCompile(`\s*,\s*`)
)

// Address turns line breaks into commas, collapses repeated commas and
// whitespace, and leaves exactly one ", " between parts. Applying it twice
// gives the same result as applying it once.
func Address(addr string) string {
	addr = lineBreakRegex.ReplaceAllString(addr, ",")
	addr = multiCommaRegex.ReplaceAllString(addr, ",")
	addr = multiSpaceRegex.ReplaceAllString(addr, " ")
	addr = commaSpaceRegex.ReplaceAllString(addr, ", ")
	return strings.Trim(addr, " ,")
}
