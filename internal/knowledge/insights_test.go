package knowledge

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remedyops/remedy/internal/model"
)

func TestInsights_RanksErrorsByCount(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "knowledge.json"))

	for i := 0; i < 3; i++ {
		s.LearnFromError("import_errors", "m", nil)
	}
	for i := 0; i < 5; i++ {
		s.LearnFromError("api_errors", "m", nil)
	}
	s.LearnFromError("key_errors", "m", nil)

	insights := s.Insights(context.Background(), nil)

	require.Len(t, insights.CommonErrors, 3)
	assert.Equal(t, "api_errors", insights.CommonErrors[0].Type)
	assert.Equal(t, 5, insights.CommonErrors[0].Count)
	assert.Equal(t, "import_errors", insights.CommonErrors[1].Type)
	assert.Equal(t, "key_errors", insights.CommonErrors[2].Type)
}

func TestInsights_CapsAtTopFive(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "knowledge.json"))

	for i := 0; i < 7; i++ {
		s.LearnFromError(fmt.Sprintf("type_%d", i), "m", nil)
	}

	insights := s.Insights(context.Background(), nil)
	assert.Len(t, insights.CommonErrors, 5)
}

func TestInsights_RanksFixesBySuccessCount(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "knowledge.json"))

	// one success at 100% rate
	s.LearnFromError("key_errors", "m", successFix("guard_lookup"))
	// three successes at 75% rate
	for i := 0; i < 3; i++ {
		s.LearnFromError("import_errors", "m", successFix("add_to_requirements"))
	}
	s.LearnFromError("import_errors", "m", failedFix("add_to_requirements"))

	insights := s.Insights(context.Background(), nil)

	require.Len(t, insights.EffectiveFixes, 2)
	assert.Equal(t, "add_to_requirements", insights.EffectiveFixes[0].FixAction)
	assert.Equal(t, 4, insights.EffectiveFixes[0].TotalAttempts)
	assert.InDelta(t, 0.75, insights.EffectiveFixes[0].SuccessRate, 0.001)
	assert.Equal(t, "guard_lookup", insights.EffectiveFixes[1].FixAction)
}

func TestInsights_EmptyStore(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "knowledge.json"))

	client := model.New(&model.Config{Backend: "disabled"})
	insights := s.Insights(context.Background(), client)

	assert.Empty(t, insights.CommonErrors)
	assert.Empty(t, insights.EffectiveFixes)
	assert.Empty(t, insights.Recommendations)
}

func TestInsights_UnreachableModelYieldsNoRecommendations(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "knowledge.json"))
	s.LearnFromError("import_errors", "m", nil)

	client := model.New(&model.Config{Backend: "disabled"})
	insights := s.Insights(context.Background(), client)

	assert.Empty(t, insights.Recommendations)
	assert.Len(t, insights.CommonErrors, 1)
}
