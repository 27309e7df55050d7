package repair

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remedyops/remedy/internal/codescan"
	"github.com/remedyops/remedy/internal/model"
	"github.com/remedyops/remedy/internal/types"
)

func codeReport(issues ...types.Issue) *codescan.Report {
	return &codescan.Report{Issues: issues}
}

// scriptedClient lets a test control the model response, including
// side effects while the repair is in flight
type scriptedClient struct {
	analyze func(prompt string) (string, error)
}

func (c *scriptedClient) Analyze(ctx context.Context, prompt string, contextData map[string]any) (string, error) {
	return c.analyze(prompt)
}

func (c *scriptedClient) Profile() model.Profile {
	return model.Profile{Backend: model.BackendAnthropic, Model: "scripted"}
}

func TestRepairCodeIssue_FixesBareExcept(t *testing.T) {
	e, dir := testExecutor(t)
	file := filepath.Join(dir, "app.py")
	source := "try:\n    run()\nexcept:\n    pass\n"
	require.NoError(t, os.WriteFile(file, []byte(source), 0o644))

	outcome := e.repairCodeIssue(context.Background(), types.Issue{
		Kind:     "bare_except",
		Severity: types.SeverityHigh,
		File:     file,
		Line:     3,
	})

	assert.Equal(t, types.RepairSuccess, outcome.Status)
	assert.NotEmpty(t, outcome.Backup)

	fixed, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "try:\n    run()\nexcept Exception:\n    pass\n", string(fixed))

	// the backup preserves the pre-repair content
	backed, err := os.ReadFile(outcome.Backup)
	require.NoError(t, err)
	assert.Equal(t, source, string(backed))
}

func TestRepairCodeIssue_BareExceptIdempotent(t *testing.T) {
	e, dir := testExecutor(t)
	file := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(file, []byte("except Exception:\n    pass\n"), 0o644))

	outcome := e.repairCodeIssue(context.Background(), types.Issue{
		Kind: "bare_except",
		File: file,
	})

	assert.Equal(t, types.RepairSkipped, outcome.Status)
	assert.Equal(t, "no changes needed", outcome.Reason)
}

func TestRepairCodeIssue_MissingFileSkipped(t *testing.T) {
	e, dir := testExecutor(t)

	outcome := e.repairCodeIssue(context.Background(), types.Issue{
		Kind: "bare_except",
		File: filepath.Join(dir, "gone.py"),
	})

	assert.Equal(t, types.RepairSkipped, outcome.Status)
}

func TestRepairCodeIssue_NoFixAvailable(t *testing.T) {
	e, dir := testExecutor(t)
	file := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0o644))

	outcome := e.repairCodeIssue(context.Background(), types.Issue{
		Kind: "hardcoded_paths",
		File: file,
	})

	assert.Equal(t, types.RepairSkipped, outcome.Status)
	assert.Contains(t, outcome.Reason, "hardcoded_paths")
}

func TestRepairCodeIssue_SyntaxErrorWithoutModelLeavesFileIntact(t *testing.T) {
	e, dir := testExecutor(t)
	file := filepath.Join(dir, "broken.py")
	source := "def broken(:\n"
	require.NoError(t, os.WriteFile(file, []byte(source), 0o644))

	outcome := e.repairCodeIssue(context.Background(), types.Issue{
		Kind:    "syntax_error",
		File:    file,
		Line:    1,
		Message: "Syntax error near line 1",
	})

	assert.Equal(t, types.RepairFailed, outcome.Status)

	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, source, string(content))
}

func TestRepairCodeIssue_RestoresBackupWhenRewriteFails(t *testing.T) {
	e, dir := testExecutor(t)
	file := filepath.Join(dir, "broken.py")
	source := "def broken(:\n"
	require.NoError(t, os.WriteFile(file, []byte(source), 0o644))

	// The model call swaps the file for a dangling symlink, so the
	// rewrite fails after the backup was taken
	e.client = &scriptedClient{analyze: func(string) (string, error) {
		require.NoError(t, os.Remove(file))
		require.NoError(t, os.Symlink(filepath.Join(dir, "missing", "target.py"), file))
		return "```python\ndef fixed():\n    pass\n```", nil
	}}

	outcome := e.repairCodeIssue(context.Background(), types.Issue{
		Kind:    "syntax_error",
		File:    file,
		Line:    1,
		Message: "Syntax error near line 1",
	})

	assert.Equal(t, types.RepairFailed, outcome.Status)
	assert.NotEmpty(t, outcome.Backup)

	// the file ends byte-identical to its pre-repair content
	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, source, string(content))
}

func TestRepairCodeIssues_OnlyHighSeverityAttempted(t *testing.T) {
	e, dir := testExecutor(t)
	file := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(file, []byte("except:\n    pass\n"), 0o644))

	report := codeReport(
		types.Issue{Kind: "bare_except", Severity: types.SeverityMedium, File: file},
		types.Issue{Kind: "bare_except", Severity: types.SeverityHigh, File: file},
	)
	outcomes := e.repairCodeIssues(context.Background(), report)

	assert.Len(t, outcomes, 1)
}

func TestRepairDependencies_MissingManifestSkipped(t *testing.T) {
	e, _ := testExecutor(t)

	outcomes := e.repairDependencies(context.Background())

	require.Len(t, outcomes, 1)
	assert.Equal(t, types.RepairSkipped, outcomes[0].Status)
}
