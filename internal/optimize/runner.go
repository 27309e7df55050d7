package optimize

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/remedyops/remedy/internal/codescan"
	"github.com/remedyops/remedy/internal/repair"
	"github.com/remedyops/remedy/internal/types"
)

// Optimization kinds accepted by Optimize
const (
	KindCode         = "code"
	KindDependencies = "dependencies"
)

// Improvement is one metric that got strictly better between the
// before and after analysis passes. Regressions are omitted, never
// reported as negative improvements.
type Improvement struct {
	Metric      string `json:"metric"`
	Improvement string `json:"improvement"`
	Before      int    `json:"before"`
	After       int    `json:"after"`
}

// Result aggregates one optimization run
type Result struct {
	Timestamp     time.Time             `json:"timestamp"`
	Optimizations []types.RepairOutcome `json:"optimizations"`
	Improvements  []Improvement         `json:"improvements"`
	MetricsBefore types.Metrics         `json:"metrics_before"`
	MetricsAfter  types.Metrics         `json:"metrics_after"`
}

// Runner applies safe code transforms and measures their effect by
// re-running the code analyzer before and after
type Runner struct {
	code    *codescan.Analyzer
	backups *repair.BackupStore
	root    string
}

// NewRunner creates an optimization runner
func NewRunner(code *codescan.Analyzer, backupDir, root string) *Runner {
	if root == "" {
		root = "."
	}
	return &Runner{
		code:    code,
		backups: repair.NewBackupStore(backupDir),
		root:    root,
	}
}

// Optimize captures metrics, applies the requested transforms,
// re-measures, and reports per-metric improvements
func (r *Runner) Optimize(ctx context.Context, kinds []string) (*Result, error) {
	if len(kinds) == 0 {
		kinds = []string{KindCode, KindDependencies}
	}
	requested := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		requested[k] = true
	}

	result := &Result{Timestamp: time.Now()}

	before, err := r.code.Analyze(ctx, nil)
	if err != nil {
		return nil, err
	}
	result.MetricsBefore = before.Metrics

	if requested[KindCode] {
		result.Optimizations = append(result.Optimizations, r.optimizeCode(before)...)
	}
	if requested[KindDependencies] {
		result.Optimizations = append(result.Optimizations, r.optimizeDependencies(ctx)...)
	}

	after, err := r.code.Analyze(ctx, nil)
	if err != nil {
		return nil, err
	}
	result.MetricsAfter = after.Metrics

	result.Improvements = improvements(result.MetricsBefore, result.MetricsAfter)
	return result, nil
}

func (r *Runner) optimizeCode(report *codescan.Report) []types.RepairOutcome {
	var outcomes []types.RepairOutcome
	for _, opt := range report.Optimizations {
		switch opt.Type {
		case "inefficient_iteration":
			outcomes = append(outcomes, r.optimizeIteration(opt))
		case "multiple_append":
			outcomes = append(outcomes, types.RepairOutcome{
				Kind:      "multiple_append",
				Status:    types.RepairSkipped,
				Reason:    "requires manual review",
				Timestamp: time.Now(),
			})
		}
	}
	return outcomes
}

// optimizeIteration rewrites index-based iteration to direct
// iteration. This is a literal textual substitution with no semantic
// verification; the pre-mutation backup is the only safety net.
func (r *Runner) optimizeIteration(opt types.Optimization) types.RepairOutcome {
	if opt.File == "" {
		return types.RepairOutcome{
			Kind:      "inefficient_iteration",
			Status:    types.RepairSkipped,
			Reason:    "file not recorded",
			Timestamp: time.Now(),
		}
	}

	content, err := os.ReadFile(opt.File)
	if err != nil {
		return types.RepairOutcome{
			Kind:      "inefficient_iteration",
			Status:    types.RepairSkipped,
			Reason:    "file not found",
			Timestamp: time.Now(),
		}
	}

	optimized := strings.ReplaceAll(string(content), "for i in range(len(", "for i, item in enumerate(")
	if optimized == string(content) {
		return types.RepairOutcome{
			Kind:      "inefficient_iteration",
			Status:    types.RepairSkipped,
			Reason:    "no changes needed",
			Timestamp: time.Now(),
		}
	}

	backupPath, err := r.backups.Create(opt.File)
	if err != nil {
		return types.RepairOutcome{
			Kind:      "inefficient_iteration",
			Status:    types.RepairFailed,
			Error:     err.Error(),
			Timestamp: time.Now(),
		}
	}

	if err := os.WriteFile(opt.File, []byte(optimized), 0o644); err != nil {
		if restoreErr := r.backups.Restore(opt.File, backupPath); restoreErr != nil {
			fmt.Fprintf(os.Stderr, "warning: restoring %s from backup: %v\n", opt.File, restoreErr)
		}
		return types.RepairOutcome{
			Kind:      "inefficient_iteration",
			Status:    types.RepairFailed,
			Error:     err.Error(),
			Backup:    backupPath,
			Timestamp: time.Now(),
		}
	}

	return types.RepairOutcome{
		Kind:      "inefficient_iteration",
		Status:    types.RepairSuccess,
		Action:    fmt.Sprintf("Optimized iteration in %s", opt.File),
		Backup:    backupPath,
		Timestamp: time.Now(),
	}
}

// optimizeDependencies checks for outdated packages and surfaces the
// result as a suggestion; nothing is upgraded automatically
func (r *Runner) optimizeDependencies(ctx context.Context) []types.RepairOutcome {
	cmd := exec.CommandContext(ctx, "pip", "list", "--outdated")
	output, err := cmd.Output()
	if err != nil || len(strings.TrimSpace(string(output))) == 0 {
		return nil
	}
	return []types.RepairOutcome{{
		Kind:       KindDependencies,
		Status:     types.RepairSuggested,
		Action:     "Update outdated dependencies",
		Suggestion: string(output),
		Timestamp:  time.Now(),
	}}
}

// improvements computes a percentage improvement per metric, only when
// the after-value is strictly lower than the before-value
func improvements(before, after types.Metrics) []Improvement {
	metrics := []struct {
		name   string
		before int
		after  int
	}{
		{"total_issues", before.TotalIssues, after.TotalIssues},
		{"high_severity", before.HighSeverity, after.HighSeverity},
		{"optimization_opportunities", before.OptimizationOpportunities, after.OptimizationOpportunities},
	}

	var out []Improvement
	for _, m := range metrics {
		if m.before > m.after {
			pct := float64(m.before-m.after) / float64(m.before) * 100
			out = append(out, Improvement{
				Metric:      m.name,
				Improvement: fmt.Sprintf("%.1f%%", pct),
				Before:      m.before,
				After:       m.after,
			})
		}
	}
	return out
}
