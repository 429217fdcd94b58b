// Package query builds and executes the parameterized constituent lookups,
// caching materialized results and normalizing caller-supplied dates.
package query

import (
	"fmt"
	"strings"
	"time"
)

// plainDateLayout is the layout of a bare calendar date as typed in a cell.
const plainDateLayout = "2006-01-02"

// DefaultDateLayout is the canonical store layout when none is configured,
// the Go rendering of "%Y-%m-%d %H:%M:%S".
const DefaultDateLayout = "2006-01-02 15:04:05"

// strftimeVerbs maps the strftime directives accepted in the date_format
// setting to Go reference-layout fragments.
var strftimeVerbs = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'H': "15",
	'M': "04",
	'S': "05",
}

// LayoutFromStrftime converts a strftime-style pattern into a Go reference
// layout. Unknown directives are a configuration error.
func LayoutFromStrftime(pattern string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '%' {
			b.WriteByte(pattern[i])
			continue
		}
		i++
		if i >= len(pattern) {
			return "", fmt.Errorf("date_format ends with a bare %%")
		}
		if pattern[i] == '%' {
			b.WriteByte('%')
			continue
		}
		frag, ok := strftimeVerbs[pattern[i]]
		if !ok {
			return "", fmt.Errorf("date_format contains unsupported directive %%%c", pattern[i])
		}
		b.WriteString(frag)
	}
	return b.String(), nil
}

// Normalizer converts human-entered date strings into the store's canonical
// date-time representation.
type Normalizer struct {
	layout string
}

// NewNormalizer creates a normalizer for the given canonical Go layout.
func NewNormalizer(layout string) *Normalizer {
	if layout == "" {
		layout = DefaultDateLayout
	}
	return &Normalizer{layout: layout}
}

// Normalize is total and best-effort: a value that parses neither as a
// plain calendar date nor as the canonical layout is returned trimmed but
// otherwise unchanged, degrading to a literal match downstream rather than
// an error. Idempotent.
func (n *Normalizer) Normalize(input string) string {
	s := strings.ReplaceAll(input, `"`, "")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.TrimSpace(s)

	if len(s) == len(plainDateLayout) {
		if t, err := time.Parse(plainDateLayout, s); err == nil {
			return t.Format(n.layout)
		}
		return s
	}
	if _, err := time.Parse(n.layout, s); err == nil {
		return s
	}
	return s
}

// dayPrefix returns the calendar-day portion of a normalized date followed
// by the SQL LIKE wildcard, for exact-or-prefix date matching.
func dayPrefix(normalized string) string {
	day, _, _ := strings.Cut(normalized, " ")
	return day + "%"
}
