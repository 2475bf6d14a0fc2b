package app

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxSessionQuerySpanLen = 512

var placeholderRun = regexp.MustCompile(`\$(\d+)(?:, \$\d+){3,}, \$(\d+)`)

// sessionQueryForSpan is the otelsql formatter for the session store. Whitespace is collapsed, long
// placeholder lists become "$1..$n", and the result is cut at maxSessionQuerySpanLen bytes.
func sessionQueryForSpan(query string) string {
	query = strings.Join(strings.Fields(query), " ")
	query = placeholderRun.ReplaceAllString(query, "$$$1..$$$2")
	if len(query) <= maxSessionQuerySpanLen {
		return query
	}

	cut := maxSessionQuerySpanLen
	for cut > 0 && !utf8.RuneStart(query[cut]) {
		cut--
	}
	return query[:cut] + "..."
}
