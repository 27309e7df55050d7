package logscan

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/remedyops/remedy/internal/model"
	"github.com/remedyops/remedy/internal/types"
)

// Scope selects which log sources to read
const (
	ScopeDebug = "debug"
	ScopeError = "error"
	ScopeAll   = "all"
)

// SourceReport is the per-file slice of an analysis. A missing or
// unreadable file is recorded in Err rather than failing the run, and
// its (empty) records are excluded from the aggregate lists.
type SourceReport struct {
	File      string                   `json:"file"`
	Errors    []types.LogErrorRecord   `json:"errors"`
	Warnings  []types.LogWarningRecord `json:"warnings"`
	InfoCount int                      `json:"info_count"`
	Lines     int                      `json:"total_lines"`
	Err       string                   `json:"error,omitempty"`
}

// Report is the result of one log analysis window
type Report struct {
	Timestamp       time.Time                `json:"timestamp"`
	PeriodHours     int                      `json:"period_hours"`
	Sources         map[string]SourceReport  `json:"sources"`
	Errors          []types.LogErrorRecord   `json:"errors"`
	Warnings        []types.LogWarningRecord `json:"warnings"`
	Histogram       map[string]int           `json:"patterns"`
	Recommendations []string                 `json:"recommendations"`
}

// Analyzer reads time-windowed log records, tags error and warning
// lines, and classifies errors by pattern
type Analyzer struct {
	client   model.Client
	debugLog string
	errorLog string
}

// New creates a log analyzer over the given debug and error logs
func New(client model.Client, debugLog, errorLog string) *Analyzer {
	return &Analyzer{client: client, debugLog: debugLog, errorLog: errorLog}
}

// Analyze reads the selected log sources and classifies every line in
// the window. windowHours bounds how far back lines are considered;
// lines with no parseable timestamp are always included.
func (a *Analyzer) Analyze(ctx context.Context, windowHours int, scope string) *Report {
	if windowHours <= 0 {
		windowHours = 24
	}
	if scope != ScopeDebug && scope != ScopeError {
		scope = ScopeAll
	}

	report := &Report{
		Timestamp:   time.Now(),
		PeriodHours: windowHours,
		Sources:     make(map[string]SourceReport),
		Histogram:   make(map[string]int),
	}

	cutoff := time.Now().Add(-time.Duration(windowHours) * time.Hour)

	// Sources are read in a fixed order (debug, then error) so the
	// aggregate record order is stable; downstream repair caps take a
	// prefix of it
	type source struct {
		name string
		path string
	}
	var sources []source
	if scope == ScopeDebug || scope == ScopeAll {
		sources = append(sources, source{ScopeDebug, a.debugLog})
	}
	if scope == ScopeError || scope == ScopeAll {
		sources = append(sources, source{ScopeError, a.errorLog})
	}

	for _, s := range sources {
		src := a.analyzeFile(s.path, cutoff)
		report.Sources[s.name] = src
		if src.Err == "" {
			report.Errors = append(report.Errors, src.Errors...)
			report.Warnings = append(report.Warnings, src.Warnings...)
		}
	}

	for _, rec := range report.Errors {
		report.Histogram[rec.Type]++
	}

	report.Recommendations = a.recommendations(ctx, report)
	return report
}

// analyzeFile scans one log source line by line
func (a *Analyzer) analyzeFile(path string, cutoff time.Time) SourceReport {
	src := SourceReport{File: path}

	f, err := os.Open(path)
	if err != nil {
		src.Err = fmt.Sprintf("log file not found: %s", path)
		return src
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		src.Lines++

		ts := extractTimestamp(line)
		if ts != nil && ts.Before(cutoff) {
			continue
		}

		switch {
		case isErrorLine(line):
			src.Errors = append(src.Errors, types.LogErrorRecord{
				Line:      strings.TrimSpace(line),
				Timestamp: ts,
				Type:      classifyError(line),
			})
		case isWarningLine(line):
			src.Warnings = append(src.Warnings, types.LogWarningRecord{
				Line:      strings.TrimSpace(line),
				Timestamp: ts,
			})
		case strings.Contains(strings.ToUpper(line), "INFO"):
			src.InfoCount++
		}
	}
	if err := scanner.Err(); err != nil {
		src.Err = err.Error()
	}

	return src
}

// recommendations asks the model for advice on the observed errors,
// falling back to canned per-category strings when the model is
// unreachable or returns nothing usable
func (a *Analyzer) recommendations(ctx context.Context, report *Report) []string {
	if len(report.Errors) == 0 {
		return []string{"No errors found in the analyzed period."}
	}

	sample := report.Errors
	if len(sample) > 5 {
		sample = sample[:5]
	}

	prompt := fmt.Sprintf(`Analyze these application errors and provide specific recommendations.

Error counts by type: %v

Provide actionable recommendations to fix these issues.`, report.Histogram)

	response, err := a.client.Analyze(ctx, prompt, map[string]any{
		"error_count":    len(report.Errors),
		"error_patterns": report.Histogram,
		"sample_errors":  sample,
	})
	if err == nil && strings.TrimSpace(response) != "" {
		return model.ParseRecommendations(response)
	}

	return fallbackRecommendations(report.Histogram)
}

// canned recommendations, one per error category
var categoryAdvice = map[string]string{
	"import_errors":    "Check and update requirements.txt for missing dependencies",
	"api_errors":       "Verify API key validity and network connectivity",
	"attribute_errors": "Review code for missing method/attribute implementations",
	"type_errors":      "Review type conversions and operand types at the reported call sites",
	"value_errors":     "Validate input values before passing them to library calls",
	"key_errors":       "Guard dictionary lookups with existence checks or defaults",
	"ssl_errors":       "Check SSL certificate configuration and proxy settings",
	"database_errors":  "Verify database connectivity and schema migrations",
	"unknown":          "Review unclassified errors manually",
}

func fallbackRecommendations(histogram map[string]int) []string {
	var recs []string
	for _, cat := range errorCategories {
		if histogram[cat.name] > 0 {
			recs = append(recs, categoryAdvice[cat.name])
		}
	}
	if histogram["unknown"] > 0 {
		recs = append(recs, categoryAdvice["unknown"])
	}
	return recs
}

// RecentErrors returns up to count of the newest error lines from the
// error log, scanning at most the last 100 lines
func (a *Analyzer) RecentErrors(count int) []types.LogErrorRecord {
	data, err := os.ReadFile(a.errorLog)
	if err != nil {
		return nil
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > 100 {
		lines = lines[len(lines)-100:]
	}

	var errors []types.LogErrorRecord
	for i := len(lines) - 1; i >= 0 && len(errors) < count; i-- {
		if isErrorLine(lines[i]) {
			errors = append(errors, types.LogErrorRecord{
				Line:      strings.TrimSpace(lines[i]),
				Timestamp: extractTimestamp(lines[i]),
				Type:      classifyError(lines[i]),
			})
		}
	}
	return errors
}
