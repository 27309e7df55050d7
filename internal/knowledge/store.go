package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/remedyops/remedy/internal/types"
)

// DefaultTrustThreshold is the success rate a fix pattern must exceed
// before the store will suggest it
const DefaultTrustThreshold = 0.70

// data is the on-disk shape of the knowledge file. The whole record is
// read at startup and rewritten on every mutation.
type data struct {
	ErrorPatterns        map[string]*types.ErrorPattern        `json:"error_patterns"`
	FixPatterns          map[string]*types.FixPattern          `json:"fix_patterns"`
	OptimizationPatterns map[string]*types.OptimizationPattern `json:"optimization_patterns"`
	LearnedRules         []string                              `json:"learned_rules"`
}

func emptyData() *data {
	return &data{
		ErrorPatterns:        make(map[string]*types.ErrorPattern),
		FixPatterns:          make(map[string]*types.FixPattern),
		OptimizationPatterns: make(map[string]*types.OptimizationPattern),
		LearnedRules:         []string{},
	}
}

// Store is the persisted statistical ledger of which fixes worked for
// which error types. It is a single process-wide structure; nothing
// else may write the backing file concurrently.
type Store struct {
	path           string
	trustThreshold float64
	data           *data
}

// Option configures a Store
type Option func(*Store)

// WithTrustThreshold overrides the suggestion trust threshold
func WithTrustThreshold(threshold float64) Option {
	return func(s *Store) {
		if threshold > 0 {
			s.trustThreshold = threshold
		}
	}
}

// Load opens the knowledge store at path, reading any existing state.
// A missing or corrupt file yields an empty store rather than an
// error: losing learned state is recoverable, refusing to start is
// not.
func Load(path string, opts ...Option) *Store {
	s := &Store{
		path:           path,
		trustThreshold: DefaultTrustThreshold,
		data:           emptyData(),
	}
	for _, opt := range opts {
		opt(s)
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		loaded := emptyData()
		if err := json.Unmarshal(raw, loaded); err != nil {
			fmt.Fprintf(os.Stderr, "warning: knowledge file %s is corrupt, starting fresh: %v\n", path, err)
		} else {
			s.data = loaded
			if s.data.ErrorPatterns == nil {
				s.data.ErrorPatterns = make(map[string]*types.ErrorPattern)
			}
			if s.data.FixPatterns == nil {
				s.data.FixPatterns = make(map[string]*types.FixPattern)
			}
			if s.data.OptimizationPatterns == nil {
				s.data.OptimizationPatterns = make(map[string]*types.OptimizationPattern)
			}
		}
	}
	return s
}

// save rewrites the whole knowledge file. Write-through, best-effort:
// a failure is logged but the in-memory mutation is kept.
func (s *Store) save() {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "warning: saving knowledge base: %v\n", err)
			return
		}
	}
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: saving knowledge base: %v\n", err)
		return
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "warning: saving knowledge base: %v\n", err)
	}
}

// LearnFromError records one classified error, and optionally the
// outcome of a fix attempted for it. Every call flushes the store.
func (s *Store) LearnFromError(errorType, message string, fix *types.RepairOutcome) {
	if errorType == "" {
		errorType = "unknown"
	}

	now := time.Now()
	pattern, ok := s.data.ErrorPatterns[errorType]
	if !ok {
		pattern = &types.ErrorPattern{
			Type:      errorType,
			FirstSeen: now,
			Messages:  []string{},
		}
		s.data.ErrorPatterns[errorType] = pattern
	}
	pattern.Count++
	pattern.LastSeen = now

	if message != "" && !contains(pattern.Messages, message) {
		pattern.Messages = append(pattern.Messages, message)
	}

	if fix != nil && fix.Action != "" {
		key := errorType + "_" + fix.Action
		fp, ok := s.data.FixPatterns[key]
		if !ok {
			fp = &types.FixPattern{ErrorType: errorType, FixAction: fix.Action}
			s.data.FixPatterns[key] = fp
		}
		if fix.Status == types.RepairSuccess {
			fp.SuccessCount++
		} else {
			fp.FailureCount++
		}
	}

	s.save()
}

// LearnFromOptimization records one optimization attempt and its
// result. Every call flushes the store.
func (s *Store) LearnFromOptimization(optType string, success bool, improvement string) {
	if optType == "" {
		optType = "unknown"
	}

	pattern, ok := s.data.OptimizationPatterns[optType]
	if !ok {
		pattern = &types.OptimizationPattern{Improvements: []string{}}
		s.data.OptimizationPatterns[optType] = pattern
	}
	pattern.Attempts++
	if success {
		pattern.Successes++
		if improvement != "" {
			pattern.Improvements = append(pattern.Improvements, improvement)
		}
	}

	s.save()
}

// SuggestedFix returns a fix for the error type only when a learned
// pattern's success rate exceeds the trust threshold with at least one
// attempt recorded. Below threshold it returns nil, forcing the caller
// back to first-principles repair or an AI suggestion.
func (s *Store) SuggestedFix(errorType string) *types.SuggestedFix {
	var best *types.FixPattern
	for _, fp := range s.data.FixPatterns {
		if fp.ErrorType != errorType || fp.Attempts() == 0 {
			continue
		}
		if fp.SuccessRate() <= s.trustThreshold {
			continue
		}
		if best == nil || fp.SuccessRate() > best.SuccessRate() {
			best = fp
		}
	}
	if best == nil {
		return nil
	}
	return &types.SuggestedFix{
		Action:     best.FixAction,
		Confidence: best.SuccessRate(),
		Source:     "learned_pattern",
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
