package logscan

import (
	"regexp"
	"strings"
	"time"
)

// errorMarkers flag a log line as an error. Matching is case-sensitive
// on purpose: lowercase "error" shows up in ordinary prose far too
// often.
var errorMarkers = []string{"ERROR", "Exception", "Traceback", "Failed"}

// categoryPattern classifies an error line. Categories are checked in
// order and the first matching regex wins, so a line classifies into
// exactly one type.
type categoryPattern struct {
	name     string
	patterns []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile("(?i)"+e))
	}
	return out
}

var errorCategories = []categoryPattern{
	{"import_errors", compileAll(`ModuleNotFoundError`, `ImportError`, `No module named`)},
	{"api_errors", compileAll(`API.*error`, `HTTP.*error`, `Connection.*error`, `Timeout`, `401|403|404|500`)},
	{"attribute_errors", compileAll(`AttributeError`, `has no attribute`)},
	{"type_errors", compileAll(`TypeError`, `unsupported operand`)},
	{"value_errors", compileAll(`ValueError`, `invalid.*value`)},
	{"key_errors", compileAll(`KeyError`, `key.*not found`)},
	{"ssl_errors", compileAll(`SSL`, `certificate`, `CERTIFICATE_VERIFY_FAILED`)},
	{"database_errors", compileAll(`Database`, `SQL`, `db.*error`)},
}

// isErrorLine reports whether a line carries one of the error markers
func isErrorLine(line string) bool {
	for _, marker := range errorMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

// isWarningLine reports whether a line is a warning (case-insensitive)
func isWarningLine(line string) bool {
	upper := strings.ToUpper(line)
	return strings.Contains(upper, "WARNING") || strings.Contains(upper, "WARN")
}

// classifyError returns the first matching category, or "unknown"
func classifyError(line string) string {
	for _, cat := range errorCategories {
		for _, re := range cat.patterns {
			if re.MatchString(line) {
				return cat.name
			}
		}
	}
	return "unknown"
}

// timestampRe matches the two canonical log timestamp shapes:
// "2026-01-03 19:39:40,497" and "2026-01-03T19:39:40". Fractional
// seconds are captured but discarded.
var timestampRe = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})[ T](\d{2}:\d{2}:\d{2})`)

// extractTimestamp pulls an optional timestamp out of a log line.
// Returns nil when no timestamp parses; callers treat such lines as
// always in-window, favoring false inclusion over silently dropping
// errors.
func extractTimestamp(line string) *time.Time {
	m := timestampRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	ts, err := time.ParseInLocation("2006-01-02 15:04:05", m[1]+" "+m[2], time.Local)
	if err != nil {
		return nil
	}
	return &ts
}
