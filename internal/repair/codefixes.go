package repair

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"time"

	"github.com/remedyops/remedy/internal/codescan"
	"github.com/remedyops/remedy/internal/model"
	"github.com/remedyops/remedy/internal/types"
)

var bareExceptRe = regexp.MustCompile(`except\s*:`)

// repairCodeIssues attempts fixes for detected code issues. Only
// high-severity issues are attempted; everything else waits for a
// human.
func (e *Executor) repairCodeIssues(ctx context.Context, report *codescan.Report) []types.RepairOutcome {
	var outcomes []types.RepairOutcome
	for _, issue := range report.Issues {
		if issue.Severity != types.SeverityHigh {
			continue
		}
		outcomes = append(outcomes, e.repairCodeIssue(ctx, issue))
	}
	return outcomes
}

// repairCodeIssue dispatches one issue to its fix. The file is backed
// up before any mutation; if the fix fails after mutating, the backup
// is restored so the file ends byte-identical to its pre-repair
// content.
func (e *Executor) repairCodeIssue(ctx context.Context, issue types.Issue) types.RepairOutcome {
	if issue.File == "" {
		return skippedOutcome(issue.Kind, "file not recorded on issue")
	}
	if _, err := os.Stat(issue.File); err != nil {
		return skippedOutcome(issue.Kind, "file not found")
	}

	backupPath, err := e.backups.Create(issue.File)
	if err != nil {
		return types.RepairOutcome{
			Kind:      issue.Kind,
			Status:    types.RepairFailed,
			Error:     err.Error(),
			Timestamp: time.Now(),
		}
	}

	var outcome types.RepairOutcome
	switch issue.Kind {
	case "bare_except":
		outcome, err = e.fixBareExcept(issue, backupPath)
	case "syntax_error":
		outcome, err = e.fixSyntaxError(ctx, issue, backupPath)
	default:
		return skippedOutcome(issue.Kind, fmt.Sprintf("no auto-fix available for %s", issue.Kind))
	}

	if err != nil {
		if restoreErr := e.backups.Restore(issue.File, backupPath); restoreErr != nil {
			fmt.Fprintf(os.Stderr, "warning: restoring %s from backup: %v\n", issue.File, restoreErr)
		}
		return types.RepairOutcome{
			Kind:      issue.Kind,
			Status:    types.RepairFailed,
			Error:     err.Error(),
			Backup:    backupPath,
			Timestamp: time.Now(),
		}
	}
	return outcome
}

// fixBareExcept rewrites bare "except:" clauses to a narrowed catch.
// Running it twice is a no-op: the second pass finds nothing to change
// and reports skipped.
func (e *Executor) fixBareExcept(issue types.Issue, backupPath string) (types.RepairOutcome, error) {
	content, err := os.ReadFile(issue.File)
	if err != nil {
		return types.RepairOutcome{}, err
	}

	fixed := bareExceptRe.ReplaceAll(content, []byte("except Exception:"))
	if string(fixed) == string(content) {
		return skippedOutcome("bare_except", "no changes needed"), nil
	}

	if err := os.WriteFile(issue.File, fixed, 0o644); err != nil {
		return types.RepairOutcome{}, err
	}
	return types.RepairOutcome{
		Kind:      "bare_except",
		Status:    types.RepairSuccess,
		Action:    fmt.Sprintf("Fixed bare except in %s", issue.File),
		Backup:    backupPath,
		Timestamp: time.Now(),
	}, nil
}

// fixSyntaxError sends the whole file to the model and overwrites it
// with whatever code can be extracted from the response. The rewrite
// is unverified; the backup is the safety net.
func (e *Executor) fixSyntaxError(ctx context.Context, issue types.Issue, backupPath string) (types.RepairOutcome, error) {
	content, err := os.ReadFile(issue.File)
	if err != nil {
		return types.RepairOutcome{}, err
	}

	prompt := fmt.Sprintf(`Fix the syntax error in this Python code:

%s

Error: %s
Line: %d

Provide the corrected code.`, content, issue.Message, issue.Line)

	response, err := e.client.Analyze(ctx, prompt, map[string]any{"issue": issue})
	if err != nil {
		return types.RepairOutcome{
			Kind:      "syntax_error",
			Status:    types.RepairFailed,
			Reason:    "could not generate fix",
			Error:     err.Error(),
			Timestamp: time.Now(),
		}, nil
	}

	fixed := model.ExtractCode(response)
	if fixed == "" {
		return types.RepairOutcome{
			Kind:      "syntax_error",
			Status:    types.RepairFailed,
			Reason:    "response contained no usable code",
			Timestamp: time.Now(),
		}, nil
	}

	if err := os.WriteFile(issue.File, []byte(fixed), 0o644); err != nil {
		return types.RepairOutcome{}, err
	}
	return types.RepairOutcome{
		Kind:      "syntax_error",
		Status:    types.RepairSuccess,
		Action:    fmt.Sprintf("Fixed syntax error in %s", issue.File),
		Backup:    backupPath,
		Timestamp: time.Now(),
	}, nil
}

// repairDependencies invokes the external dependency scanner against
// the working tree. Its exit status is reported verbatim.
func (e *Executor) repairDependencies(ctx context.Context) []types.RepairOutcome {
	if _, err := os.Stat(e.requirements); err != nil {
		return []types.RepairOutcome{skippedOutcome(KindDependencies, fmt.Sprintf("%s not found", e.requirements))}
	}

	cmd := exec.CommandContext(ctx, "pipreqs", e.root, "--force", "--encoding=utf-8", "--ignore", ".venv,scripts,tests")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return []types.RepairOutcome{{
			Kind:      KindDependencies,
			Status:    types.RepairFailed,
			Error:     fmt.Sprintf("%v: %s", err, output),
			Timestamp: time.Now(),
		}}
	}
	return []types.RepairOutcome{{
		Kind:      KindDependencies,
		Status:    types.RepairSuccess,
		Action:    fmt.Sprintf("Updated %s", e.requirements),
		Timestamp: time.Now(),
	}}
}

func skippedOutcome(kind, reason string) types.RepairOutcome {
	return types.RepairOutcome{
		Kind:      kind,
		Status:    types.RepairSkipped,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}
