package types

import "time"

// Severity indicates how urgent a detected issue is
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Issue is one problem detected in a source file.
// Issues are never mutated after creation; a fresh analysis pass
// supersedes them.
type Issue struct {
	Kind     string   `json:"kind"`
	Severity Severity `json:"severity"`
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Message  string   `json:"message"`
	Detail   string   `json:"detail,omitempty"`
}

// Optimization is an optimization opportunity found in a source file.
// Unlike Issues, optimizations are safe to ignore.
type Optimization struct {
	Type       string `json:"type"`
	Suggestion string `json:"suggestion"`
	File       string `json:"file"`
}

// LogErrorRecord is one classified error line from a log source.
// Timestamp is nil when the line carried no parseable timestamp.
type LogErrorRecord struct {
	Line      string     `json:"line"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Type      string     `json:"type"`
}

// LogWarningRecord is one warning line from a log source
type LogWarningRecord struct {
	Line      string     `json:"line"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// RepairStatus is the outcome category of a single repair attempt
type RepairStatus string

const (
	RepairSuccess RepairStatus = "success"
	RepairFailed  RepairStatus = "failed"
	RepairSkipped RepairStatus = "skipped"

	// RepairSuggested means the model proposed a fix that requires
	// manual application (the fix is outside the deterministic catalog)
	RepairSuggested RepairStatus = "suggested"
)

// RepairOutcome records one repair attempt. Immutable once recorded.
type RepairOutcome struct {
	Kind       string       `json:"type"`
	Status     RepairStatus `json:"status"`
	Action     string       `json:"action,omitempty"`
	Reason     string       `json:"reason,omitempty"`
	Error      string       `json:"error,omitempty"`
	Suggestion string       `json:"suggestion,omitempty"`
	Backup     string       `json:"backup,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
}

// Metrics are pure aggregates over a code analysis pass
type Metrics struct {
	TotalIssues               int `json:"total_issues"`
	HighSeverity              int `json:"high_severity"`
	MediumSeverity            int `json:"medium_severity"`
	LowSeverity               int `json:"low_severity"`
	OptimizationOpportunities int `json:"optimization_opportunities"`
}

// ErrorPattern is the running tally for one error type in the
// knowledge store. Never deleted once created.
type ErrorPattern struct {
	Type      string    `json:"type"`
	Count     int       `json:"count"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	Messages  []string  `json:"messages"`
}

// FixPattern tracks success/failure counts for one (error type, fix
// action) pair
type FixPattern struct {
	ErrorType    string `json:"error_type"`
	FixAction    string `json:"fix_action"`
	SuccessCount int    `json:"success_count"`
	FailureCount int    `json:"failure_count"`
}

// Attempts returns the total recorded attempts for this fix
func (f *FixPattern) Attempts() int {
	return f.SuccessCount + f.FailureCount
}

// SuccessRate returns success_count / attempts, or 0 with no attempts
func (f *FixPattern) SuccessRate() float64 {
	total := f.Attempts()
	if total == 0 {
		return 0
	}
	return float64(f.SuccessCount) / float64(total)
}

// OptimizationPattern tracks outcomes for one optimization type
type OptimizationPattern struct {
	Attempts     int      `json:"attempts"`
	Successes    int      `json:"successes"`
	Improvements []string `json:"improvements"`
}

// SuggestedFix is a fix the knowledge store trusts enough to recommend
type SuggestedFix struct {
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// CommonError is one entry in the insights summary, ranked by count
type CommonError struct {
	Type      string    `json:"type"`
	Count     int       `json:"count"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// EffectiveFix is one entry in the insights summary, ranked by raw
// success count rather than rate so small-sample outliers don't
// dominate
type EffectiveFix struct {
	ErrorType     string  `json:"error_type"`
	FixAction     string  `json:"fix_action"`
	SuccessRate   float64 `json:"success_rate"`
	TotalAttempts int     `json:"total_attempts"`
}

// Insights summarizes what the knowledge store has learned
type Insights struct {
	Timestamp       time.Time      `json:"timestamp"`
	CommonErrors    []CommonError  `json:"common_errors"`
	EffectiveFixes  []EffectiveFix `json:"effective_fixes"`
	Recommendations []string       `json:"recommendations"`
}
