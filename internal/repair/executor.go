package repair

import (
	"context"
	"time"

	"github.com/remedyops/remedy/internal/codescan"
	"github.com/remedyops/remedy/internal/logscan"
	"github.com/remedyops/remedy/internal/model"
	"github.com/remedyops/remedy/internal/types"
)

// Repair kinds accepted by AutoRepair
const (
	KindLogs         = "logs"
	KindCode         = "code"
	KindDependencies = "dependencies"
)

// DefaultLogRepairCap bounds log-derived repairs per run
const DefaultLogRepairCap = 5

// Result aggregates one auto-repair run. Every outcome is counted into
// exactly one of success/failed/skipped (suggested counts as skipped:
// nothing was applied).
type Result struct {
	Timestamp time.Time             `json:"timestamp"`
	Repairs   []types.RepairOutcome `json:"repairs"`
	Success   int                   `json:"success"`
	Failed    int                   `json:"failed"`
	Skipped   int                   `json:"skipped"`
}

// Executor attempts automated fixes for problems found by the log and
// code analyzers. One fix per matching issue; a single repair's
// failure never aborts the batch.
type Executor struct {
	client       model.Client
	logs         *logscan.Analyzer
	code         *codescan.Analyzer
	backups      *BackupStore
	requirements string
	root         string
	logRepairCap int
	windowHours  int
}

// Config holds executor construction parameters
type Config struct {
	Client       model.Client
	Logs         *logscan.Analyzer
	Code         *codescan.Analyzer
	BackupDir    string
	Requirements string // dependency manifest path
	Root         string // working tree for the dependency tool
	LogRepairCap int    // default 5
	WindowHours  int    // log analysis window (default 24)
}

// NewExecutor creates a repair executor
func NewExecutor(cfg *Config) *Executor {
	limit := cfg.LogRepairCap
	if limit <= 0 {
		limit = DefaultLogRepairCap
	}
	hours := cfg.WindowHours
	if hours <= 0 {
		hours = 24
	}
	root := cfg.Root
	if root == "" {
		root = "."
	}
	return &Executor{
		client:       cfg.Client,
		logs:         cfg.Logs,
		code:         cfg.Code,
		backups:      NewBackupStore(cfg.BackupDir),
		requirements: cfg.Requirements,
		root:         root,
		logRepairCap: limit,
		windowHours:  hours,
	}
}

// AutoRepair runs fresh log and code analyses, then attempts one fix
// per matching issue. kinds defaults to all of logs, code and
// dependencies.
func (e *Executor) AutoRepair(ctx context.Context, kinds []string) (*Result, error) {
	if len(kinds) == 0 {
		kinds = []string{KindLogs, KindCode, KindDependencies}
	}
	requested := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		requested[k] = true
	}

	result := &Result{Timestamp: time.Now()}

	if requested[KindLogs] {
		logReport := e.logs.Analyze(ctx, e.windowHours, logscan.ScopeAll)
		result.Repairs = append(result.Repairs, e.repairLogIssues(ctx, logReport)...)
	}

	if requested[KindCode] {
		codeReport, err := e.code.Analyze(ctx, nil)
		if err != nil {
			return nil, err
		}
		result.Repairs = append(result.Repairs, e.repairCodeIssues(ctx, codeReport)...)
	}

	if requested[KindDependencies] {
		result.Repairs = append(result.Repairs, e.repairDependencies(ctx)...)
	}

	for _, r := range result.Repairs {
		switch r.Status {
		case types.RepairSuccess:
			result.Success++
		case types.RepairFailed:
			result.Failed++
		default:
			result.Skipped++
		}
	}
	return result, nil
}
