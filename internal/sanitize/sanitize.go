package sanitize

import (
	"regexp"
	"strings"
)

// NeutralizingPrefix is prepended to a flagged value so spreadsheet tools
// render it as plain text instead of executing it.
const NeutralizingPrefix = "'"

// Injection signatures, checked in order against the start of the value.
// RE2 has no lookahead, so the bare-minus rule spells out "minus followed by
// a non-digit or end of input".
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`^=`),             // formula (Excel)
	regexp.MustCompile(`^@`),             // formula (Excel)
	regexp.MustCompile(`^\+`),            // formula (Excel)
	regexp.MustCompile(`^-(?:[^0-9]|$)`), // formula, but allow negative numbers
	regexp.MustCompile(`^!`),             // formula
	regexp.MustCompile(`^\|`),            // command injection
	regexp.MustCompile(`^;`),             // CSV injection
	regexp.MustCompile(`(?i)^<script`),   // XSS attempt
	regexp.MustCompile(`(?i)^javascript:`),
	regexp.MustCompile(`(?i)^data:`), // data URI
	regexp.MustCompile(`(?i)^on\w+=`), // event handler
}

// Result pairs the cleaned value with what happened to it. Flagged and
// Truncated exist for the caller's logging only; the value itself is the
// whole contract.
type Result struct {
	Value     string
	Flagged   bool
	Truncated bool
}

// Modified reports whether Clean changed the value in any way.
func (r Result) Modified() bool {
	return r.Flagged || r.Truncated
}

// Clean trims the value, strips embedded NULs, neutralizes the first
// matching injection signature, and truncates to maxLen characters (0 disables
// the cap). Clean never fails; an already-clean short value passes through
// unchanged.
func Clean(value string, maxLen int) Result {
	v := strings.TrimSpace(value)
	v = strings.ReplaceAll(v, "\x00", "")

	out := Result{}
	for _, p := range patterns {
		if p.MatchString(v) {
			v = NeutralizingPrefix + v
			out.Flagged = true
			break
		}
	}

	if maxLen > 0 {
		if runes := []rune(v); len(runes) > maxLen {
			v = string(runes[:maxLen])
			out.Truncated = true
		}
	}

	out.Value = v
	return out
}
