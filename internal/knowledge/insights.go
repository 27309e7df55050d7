package knowledge

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/remedyops/remedy/internal/model"
	"github.com/remedyops/remedy/internal/types"
)

// insightsLimit caps each insights list at the top 5 entries
const insightsLimit = 5

// Insights summarizes learned patterns: the most common error types by
// count and the most effective fixes by raw success count. Ranking by
// raw counts rather than rate keeps small-sample outliers from
// dominating the summary.
func (s *Store) Insights(ctx context.Context, client model.Client) *types.Insights {
	insights := &types.Insights{
		Timestamp:       time.Now(),
		CommonErrors:    []types.CommonError{},
		EffectiveFixes:  []types.EffectiveFix{},
		Recommendations: []string{},
	}

	errors := make([]*types.ErrorPattern, 0, len(s.data.ErrorPatterns))
	for _, p := range s.data.ErrorPatterns {
		errors = append(errors, p)
	}
	sort.Slice(errors, func(i, j int) bool {
		if errors[i].Count != errors[j].Count {
			return errors[i].Count > errors[j].Count
		}
		return errors[i].Type < errors[j].Type
	})
	for _, p := range errors[:min(len(errors), insightsLimit)] {
		insights.CommonErrors = append(insights.CommonErrors, types.CommonError{
			Type:      p.Type,
			Count:     p.Count,
			FirstSeen: p.FirstSeen,
			LastSeen:  p.LastSeen,
		})
	}

	fixes := make([]*types.FixPattern, 0, len(s.data.FixPatterns))
	for _, p := range s.data.FixPatterns {
		if p.Attempts() > 0 {
			fixes = append(fixes, p)
		}
	}
	sort.Slice(fixes, func(i, j int) bool {
		if fixes[i].SuccessCount != fixes[j].SuccessCount {
			return fixes[i].SuccessCount > fixes[j].SuccessCount
		}
		return fixes[i].ErrorType < fixes[j].ErrorType
	})
	for _, p := range fixes[:min(len(fixes), insightsLimit)] {
		insights.EffectiveFixes = append(insights.EffectiveFixes, types.EffectiveFix{
			ErrorType:     p.ErrorType,
			FixAction:     p.FixAction,
			SuccessRate:   p.SuccessRate(),
			TotalAttempts: p.Attempts(),
		})
	}

	if client != nil {
		insights.Recommendations = s.aiRecommendations(ctx, client, insights)
	}
	return insights
}

// aiRecommendations asks the model for advice based on the learned
// patterns. An unreachable model yields no recommendations; the
// statistical summary stands on its own.
func (s *Store) aiRecommendations(ctx context.Context, client model.Client, insights *types.Insights) []string {
	if len(insights.CommonErrors) == 0 && len(insights.EffectiveFixes) == 0 {
		return []string{}
	}

	prompt := "Based on these learned error and fix patterns, provide actionable recommendations to prevent recurring issues."
	response, err := client.Analyze(ctx, prompt, map[string]any{
		"common_errors":   insights.CommonErrors,
		"effective_fixes": insights.EffectiveFixes,
	})
	if err != nil || strings.TrimSpace(response) == "" {
		return []string{}
	}
	return model.ParseRecommendations(response)
}
