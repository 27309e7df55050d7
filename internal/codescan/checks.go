package codescan

import (
	"regexp"
	"strings"

	"github.com/remedyops/remedy/internal/types"
)

// lineCheck is one regular-expression check applied per line
type lineCheck struct {
	kind    string
	re      *regexp.Regexp
	message string
}

var lineChecks = []lineCheck{
	{"bare_except", regexp.MustCompile(`except\s*:`), "Use specific exception types"},
	{"print_debug", regexp.MustCompile(`print\s*\(`), "Use logging instead of print"},
	{"hardcoded_paths", regexp.MustCompile(`["'](?:/(?:usr|etc|var|home|opt|tmp)/|[A-Za-z]:\\)`), "Avoid hardcoded paths"},
	{"todo_comments", regexp.MustCompile(`#\s*(?:TODO|FIXME|XXX)`), "Address TODO comments"},
}

// lineIssues applies the regular-expression and trivial-heuristic
// checks line by line
func lineIssues(content, file string) []types.Issue {
	var issues []types.Issue
	for i, line := range strings.Split(content, "\n") {
		for _, check := range lineChecks {
			if check.re.MatchString(line) {
				issues = append(issues, types.Issue{
					Kind:     check.kind,
					Severity: types.SeverityMedium,
					File:     file,
					Line:     i + 1,
					Message:  check.message,
				})
			}
		}
	}
	return issues
}

var appendCall = regexp.MustCompile(`\.append\([^)]*\)\s*$`)

// findOptimizations applies the two optimization-only heuristics:
// index-based iteration that should use direct iteration, and
// consecutive single-element appends that should batch
func findOptimizations(content, file string) []types.Optimization {
	var opts []types.Optimization

	if strings.Contains(content, "for i in range(len(") {
		opts = append(opts, types.Optimization{
			Type:       "inefficient_iteration",
			Suggestion: "Use enumerate() instead of range(len())",
			File:       file,
		})
	}

	lines := strings.Split(content, "\n")
	for i := 1; i < len(lines); i++ {
		if appendCall.MatchString(lines[i-1]) && appendCall.MatchString(lines[i]) {
			opts = append(opts, types.Optimization{
				Type:       "multiple_append",
				Suggestion: "Use list comprehension or extend()",
				File:       file,
			})
			break
		}
	}

	return opts
}
