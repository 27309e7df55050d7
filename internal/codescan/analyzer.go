package codescan

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/remedyops/remedy/internal/model"
	"github.com/remedyops/remedy/internal/types"
)

// Report is the result of one code analysis pass
type Report struct {
	Timestamp       time.Time            `json:"timestamp"`
	FilesAnalyzed   int                  `json:"files_analyzed"`
	Issues          []types.Issue        `json:"issues"`
	Optimizations   []types.Optimization `json:"optimizations"`
	Metrics         types.Metrics        `json:"metrics"`
	Recommendations []string             `json:"recommendations"`
}

// Analyzer walks Python sources applying structural and textual
// pattern checks
type Analyzer struct {
	client            model.Client
	root              string
	longFunctionLines int
}

// New creates a code analyzer rooted at the given directory
func New(client model.Client, root string) *Analyzer {
	return &Analyzer{
		client:            client,
		root:              root,
		longFunctionLines: DefaultLongFunctionLines,
	}
}

// SetLongFunctionLines overrides the long-function threshold
func (a *Analyzer) SetLongFunctionLines(n int) {
	if n > 0 {
		a.longFunctionLines = n
	}
}

// Analyze inspects the given files, or the whole tree under root when
// paths is empty. A single file's parse failure becomes a
// syntax_error issue; it never aborts the batch.
func (a *Analyzer) Analyze(ctx context.Context, paths []string) (*Report, error) {
	files, err := pythonFiles(a.root, paths)
	if err != nil {
		return nil, fmt.Errorf("enumerating source files: %w", err)
	}

	report := &Report{
		Timestamp:     time.Now(),
		FilesAnalyzed: len(files),
	}

	for _, file := range files {
		issues, opts := a.analyzeFile(ctx, file)
		report.Issues = append(report.Issues, issues...)
		report.Optimizations = append(report.Optimizations, opts...)
	}

	report.Metrics = calculateMetrics(report.Issues, report.Optimizations)
	report.Recommendations = a.recommendations(ctx, report)
	return report, nil
}

func (a *Analyzer) analyzeFile(ctx context.Context, file string) ([]types.Issue, []types.Optimization) {
	content, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot read %s: %v\n", file, err)
		return nil, nil
	}

	tree, err := parseTree(ctx, content)
	if err != nil {
		return []types.Issue{{
			Kind:     "syntax_error",
			Severity: types.SeverityHigh,
			File:     file,
			Line:     1,
			Message:  fmt.Sprintf("Parse failure: %v", err),
		}}, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		// Damaged tree: report the single syntax_error issue and skip
		// the structural passes for this file
		return []types.Issue{syntaxErrorIssue(root, file)}, nil
	}

	var issues []types.Issue
	issues = append(issues, treeIssues(root, content, file, a.longFunctionLines)...)
	issues = append(issues, lineIssues(string(content), file)...)

	return issues, findOptimizations(string(content), file)
}

func calculateMetrics(issues []types.Issue, opts []types.Optimization) types.Metrics {
	m := types.Metrics{
		TotalIssues:               len(issues),
		OptimizationOpportunities: len(opts),
	}
	for _, issue := range issues {
		switch issue.Severity {
		case types.SeverityHigh:
			m.HighSeverity++
		case types.SeverityMedium:
			m.MediumSeverity++
		case types.SeverityLow:
			m.LowSeverity++
		}
	}
	return m
}

func (a *Analyzer) recommendations(ctx context.Context, report *Report) []string {
	topIssues := report.Issues
	if len(topIssues) > 10 {
		topIssues = topIssues[:10]
	}
	topOpts := report.Optimizations
	if len(topOpts) > 5 {
		topOpts = topOpts[:5]
	}

	prompt := "Analyze these code issues and provide specific, actionable recommendations to improve code quality."
	response, err := a.client.Analyze(ctx, prompt, map[string]any{
		"issues":        topIssues,
		"optimizations": topOpts,
		"metrics":       report.Metrics,
	})
	if err == nil && strings.TrimSpace(response) != "" {
		return model.ParseRecommendations(response)
	}

	var recs []string
	if report.Metrics.HighSeverity > 0 {
		recs = append(recs, "Address high-severity issues immediately")
	}
	if report.Metrics.OptimizationOpportunities > 0 {
		recs = append(recs, "Review and implement optimization opportunities")
	}
	return recs
}
