package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/remedyops/remedy/internal/codescan"
	"github.com/remedyops/remedy/internal/config"
	"github.com/remedyops/remedy/internal/history"
	"github.com/remedyops/remedy/internal/knowledge"
	"github.com/remedyops/remedy/internal/logscan"
	"github.com/remedyops/remedy/internal/model"
	"github.com/remedyops/remedy/internal/optimize"
	"github.com/remedyops/remedy/internal/repair"
	"github.com/remedyops/remedy/internal/types"
)

// Manager wires the analyzers, repair executor, optimizer and stores
// into one lifecycle. It owns the status snapshot and the run history.
type Manager struct {
	cfg       *config.Config
	client    model.Client
	logs      *logscan.Analyzer
	code      *codescan.Analyzer
	repairs   *repair.Executor
	optimizer *optimize.Runner
	knowledge *knowledge.Store
	history   *history.Store
}

// AuditReport combines one log analysis and one code analysis
type AuditReport struct {
	Timestamp       time.Time        `json:"timestamp"`
	Logs            *logscan.Report  `json:"log_analysis"`
	Code            *codescan.Report `json:"code_analysis"`
	Recommendations []string         `json:"recommendations"`
}

// Status is the operational snapshot returned by the status command
type Status struct {
	Model         model.Profile  `json:"model"`
	ModelEnabled  bool           `json:"model_enabled"`
	LastRun       *time.Time     `json:"last_run,omitempty"`
	LastOperation string         `json:"last_operation,omitempty"`
	LastResults   map[string]any `json:"last_results,omitempty"`
	RecentRuns    []*history.Run `json:"recent_runs,omitempty"`
}

// statusSnapshot is the on-disk shape of the status file
type statusSnapshot struct {
	LastRun       time.Time      `json:"last_run"`
	LastOperation string         `json:"last_operation"`
	Results       map[string]any `json:"results"`
}

// New builds a fully wired manager from configuration
func New(cfg *config.Config) (*Manager, error) {
	client := model.New(&model.Config{
		Backend:            cfg.Backend,
		APIKey:             cfg.APIKey,
		Endpoint:           cfg.Endpoint,
		Model:              cfg.Model,
		MaxConcurrentCalls: cfg.MaxConcurrentCalls,
		CallsPerMinute:     cfg.CallsPerMinute,
	})

	logs := logscan.New(client, cfg.DebugLog, cfg.ErrorLog)
	code := codescan.New(client, cfg.Root)
	if cfg.LongFunctionLines > 0 {
		code.SetLongFunctionLines(cfg.LongFunctionLines)
	}

	repairs := repair.NewExecutor(&repair.Config{
		Client:       client,
		Logs:         logs,
		Code:         code,
		BackupDir:    cfg.BackupDir,
		Requirements: cfg.Requirements,
		Root:         cfg.Root,
		LogRepairCap: cfg.LogRepairCap,
		WindowHours:  cfg.WindowHours,
	})

	know := knowledge.Load(cfg.KnowledgePath, knowledge.WithTrustThreshold(cfg.TrustThreshold))

	hist, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return nil, fmt.Errorf("opening run history: %w", err)
	}

	return &Manager{
		cfg:       cfg,
		client:    client,
		logs:      logs,
		code:      code,
		repairs:   repairs,
		optimizer: optimize.NewRunner(code, cfg.BackupDir, cfg.Root),
		knowledge: know,
		history:   hist,
	}, nil
}

// Close releases the manager's resources
func (m *Manager) Close() error {
	return m.history.Close()
}

// Client exposes the model client profile for display
func (m *Manager) Client() model.Client {
	return m.client
}

// RecentLogErrors surfaces the newest classified errors from the error
// log for the logs command
func (m *Manager) RecentLogErrors(count int) []types.LogErrorRecord {
	return m.logs.RecentErrors(count)
}

// RecentRuns returns run history, newest first
func (m *Manager) RecentRuns(ctx context.Context, limit int) ([]*history.Run, error) {
	return m.history.RecentRuns(ctx, limit)
}

// RunFullAudit analyzes logs and source together and merges their
// recommendations with the knowledge store's insights
func (m *Manager) RunFullAudit(ctx context.Context) (*AuditReport, error) {
	started := time.Now()

	logReport := m.logs.Analyze(ctx, m.cfg.WindowHours, logscan.ScopeAll)
	codeReport, err := m.code.Analyze(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("analyzing source: %w", err)
	}

	report := &AuditReport{
		Timestamp: started,
		Logs:      logReport,
		Code:      codeReport,
	}

	seen := make(map[string]bool)
	for _, recs := range [][]string{logReport.Recommendations, codeReport.Recommendations} {
		for _, rec := range recs {
			if !seen[rec] {
				seen[rec] = true
				report.Recommendations = append(report.Recommendations, rec)
			}
		}
	}
	insights := m.knowledge.Insights(ctx, m.client)
	for _, rec := range insights.Recommendations {
		if !seen[rec] {
			seen[rec] = true
			report.Recommendations = append(report.Recommendations, rec)
		}
	}

	m.saveStatus("audit", map[string]any{
		"log_errors":    len(logReport.Errors),
		"log_warnings":  len(logReport.Warnings),
		"code_issues":   len(codeReport.Issues),
		"high_severity": codeReport.Metrics.HighSeverity,
	})
	m.recordRun(ctx, "audit", started, "completed", 0, 0, 0, map[string]any{
		"log_errors":  len(logReport.Errors),
		"code_issues": len(codeReport.Issues),
	})
	return report, nil
}

// RunAutoRepair executes repairs and feeds every applied fix back into
// the knowledge store
func (m *Manager) RunAutoRepair(ctx context.Context, kinds []string) (*repair.Result, error) {
	started := time.Now()

	result, err := m.repairs.AutoRepair(ctx, kinds)
	if err != nil {
		m.recordRun(ctx, "repair", started, "failed", 0, 0, 0, map[string]any{"error": err.Error()})
		return nil, err
	}

	// No message text is recorded here: the outcome carries the fix
	// action, not the triggering error line
	for _, outcome := range result.Repairs {
		if outcome.Status == types.RepairSuccess {
			o := outcome
			m.knowledge.LearnFromError(outcome.Kind, "", &o)
		}
	}

	m.saveStatus("repair", map[string]any{
		"success": result.Success,
		"failed":  result.Failed,
		"skipped": result.Skipped,
	})
	m.recordRun(ctx, "repair", started, "completed",
		result.Success, result.Failed, result.Skipped, nil)
	return result, nil
}

// RunOptimization executes optimizations, feeding each attempt back
// into the knowledge store whether it succeeded or not
func (m *Manager) RunOptimization(ctx context.Context, kinds []string) (*optimize.Result, error) {
	started := time.Now()

	result, err := m.optimizer.Optimize(ctx, kinds)
	if err != nil {
		m.recordRun(ctx, "optimize", started, "failed", 0, 0, 0, map[string]any{"error": err.Error()})
		return nil, err
	}

	improvement := ""
	if len(result.Improvements) > 0 {
		improvement = result.Improvements[0].Improvement
	}
	for _, outcome := range result.Optimizations {
		m.knowledge.LearnFromOptimization(outcome.Kind, outcome.Status == types.RepairSuccess, improvement)
	}

	applied, failed, skipped := 0, 0, 0
	for _, outcome := range result.Optimizations {
		switch outcome.Status {
		case types.RepairSuccess:
			applied++
		case types.RepairFailed:
			failed++
		default:
			skipped++
		}
	}

	m.saveStatus("optimize", map[string]any{
		"applied":      applied,
		"improvements": len(result.Improvements),
	})
	m.recordRun(ctx, "optimize", started, "completed", applied, failed, skipped, nil)
	return result, nil
}

// InsightsReport summarizes learned error and fix patterns
func (m *Manager) InsightsReport(ctx context.Context) *types.Insights {
	return m.knowledge.Insights(ctx, m.client)
}

// CurrentStatus merges the status snapshot, client profile and recent
// run history
func (m *Manager) CurrentStatus(ctx context.Context) *Status {
	profile := m.client.Profile()
	status := &Status{
		Model:        profile,
		ModelEnabled: profile.Backend != model.BackendDisabled,
	}

	if data, err := os.ReadFile(m.cfg.StatusPath); err == nil {
		var snap statusSnapshot
		if err := json.Unmarshal(data, &snap); err == nil {
			status.LastRun = &snap.LastRun
			status.LastOperation = snap.LastOperation
			status.LastResults = snap.Results
		}
	}

	if runs, err := m.history.RecentRuns(ctx, 5); err == nil {
		status.RecentRuns = runs
	}
	return status
}

// saveStatus writes the last-run snapshot. Failures are reported but
// never abort the operation that produced the results.
func (m *Manager) saveStatus(operation string, results map[string]any) {
	snap := statusSnapshot{
		LastRun:       time.Now(),
		LastOperation: operation,
		Results:       results,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: encoding status: %v\n", err)
		return
	}
	if err := os.WriteFile(m.cfg.StatusPath, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "warning: writing status: %v\n", err)
	}
}

// recordRun inserts a run-history row. History failures are warnings,
// not operation failures.
func (m *Manager) recordRun(ctx context.Context, kind string, started time.Time, outcome string, success, failed, skipped int, detail map[string]any) {
	run := &history.Run{
		ID:         uuid.New().String(),
		Kind:       kind,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Status:     outcome,
		Success:    success,
		Failed:     failed,
		Skipped:    skipped,
		Detail:     detail,
	}
	if err := m.history.RecordRun(ctx, run); err != nil {
		fmt.Fprintf(os.Stderr, "warning: recording run history: %v\n", err)
	}
}
