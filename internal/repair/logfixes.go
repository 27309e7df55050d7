package repair

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/remedyops/remedy/internal/logscan"
	"github.com/remedyops/remedy/internal/types"
)

// moduleNameRe extracts the missing module from an import error line
var moduleNameRe = regexp.MustCompile(`No module named ['"]([^'"]+)['"]`)

// packageNames maps import names to the package names they install as
var packageNames = map[string]string{
	"PIL":    "Pillow",
	"yaml":   "PyYAML",
	"dotenv": "python-dotenv",
	"cv2":    "opencv-python",
	"bs4":    "beautifulsoup4",
}

// repairLogIssues attempts fixes for classified log errors, capped per
// run and taken in detection order
func (e *Executor) repairLogIssues(ctx context.Context, report *logscan.Report) []types.RepairOutcome {
	var outcomes []types.RepairOutcome

	errors := report.Errors
	if len(errors) > e.logRepairCap {
		errors = errors[:e.logRepairCap]
	}

	for _, rec := range errors {
		switch rec.Type {
		case "import_errors":
			outcomes = append(outcomes, e.repairImportError(rec))
		case "api_errors":
			// Deliberate safety policy: API errors are environment or
			// credential issues and are never auto-fixed
			outcomes = append(outcomes, types.RepairOutcome{
				Kind:       "api_errors",
				Status:     types.RepairSkipped,
				Reason:     "API errors require manual verification",
				Suggestion: "Check API key and network connectivity",
				Timestamp:  time.Now(),
			})
		case "attribute_errors":
			outcomes = append(outcomes, e.repairAttributeError(ctx, rec))
		default:
			outcomes = append(outcomes, types.RepairOutcome{
				Kind:      rec.Type,
				Status:    types.RepairSkipped,
				Reason:    fmt.Sprintf("no automated repair for %s", rec.Type),
				Timestamp: time.Now(),
			})
		}
	}
	return outcomes
}

// repairImportError appends the missing module to the dependency
// manifest. Idempotent: a case-insensitive substring check skips
// modules already present.
func (e *Executor) repairImportError(rec types.LogErrorRecord) types.RepairOutcome {
	m := moduleNameRe.FindStringSubmatch(rec.Line)
	if m == nil {
		return types.RepairOutcome{
			Kind:      "import_errors",
			Status:    types.RepairSkipped,
			Reason:    "could not extract module name",
			Timestamp: time.Now(),
		}
	}

	pkg := m[1]
	if mapped, ok := packageNames[pkg]; ok {
		pkg = mapped
	}

	added, err := e.addToRequirements(pkg)
	if err != nil {
		return types.RepairOutcome{
			Kind:      "import_errors",
			Status:    types.RepairFailed,
			Error:     err.Error(),
			Timestamp: time.Now(),
		}
	}
	if !added {
		return types.RepairOutcome{
			Kind:      "import_errors",
			Status:    types.RepairSkipped,
			Reason:    fmt.Sprintf("%s already in %s", pkg, e.requirements),
			Timestamp: time.Now(),
		}
	}
	return types.RepairOutcome{
		Kind:      "import_errors",
		Status:    types.RepairSuccess,
		Action:    fmt.Sprintf("Added %s to %s", pkg, e.requirements),
		Timestamp: time.Now(),
	}
}

// addToRequirements appends pkg to the manifest unless it is already
// listed. Returns whether the file changed.
func (e *Executor) addToRequirements(pkg string) (bool, error) {
	content, err := os.ReadFile(e.requirements)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("reading %s: %w", e.requirements, err)
	}

	if strings.Contains(strings.ToLower(string(content)), strings.ToLower(pkg)) {
		return false, nil
	}

	f, err := os.OpenFile(e.requirements, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", e.requirements, err)
	}
	defer f.Close()

	line := pkg + "\n"
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		line = "\n" + line
	}
	if _, err := f.WriteString(line); err != nil {
		return false, fmt.Errorf("appending to %s: %w", e.requirements, err)
	}
	return true, nil
}

// repairAttributeError asks the model for a fix. Attribute errors are
// outside the deterministic-transform catalog, so the fix is surfaced
// as a suggestion for manual application, never auto-applied.
func (e *Executor) repairAttributeError(ctx context.Context, rec types.LogErrorRecord) types.RepairOutcome {
	prompt := fmt.Sprintf("Fix this Python AttributeError:\n\n%s\n\nProvide the corrected code.", rec.Line)

	response, err := e.client.Analyze(ctx, prompt, map[string]any{"error": rec})
	if err != nil || strings.TrimSpace(response) == "" {
		return types.RepairOutcome{
			Kind:      "attribute_errors",
			Status:    types.RepairSkipped,
			Reason:    "could not generate fix",
			Timestamp: time.Now(),
		}
	}
	return types.RepairOutcome{
		Kind:       "attribute_errors",
		Status:     types.RepairSuggested,
		Suggestion: response,
		Timestamp:  time.Now(),
	}
}
