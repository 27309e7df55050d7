package repair

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remedyops/remedy/internal/logscan"
	"github.com/remedyops/remedy/internal/model"
	"github.com/remedyops/remedy/internal/types"
)

func testExecutor(t *testing.T) (*Executor, string) {
	t.Helper()
	dir := t.TempDir()
	e := NewExecutor(&Config{
		Client:       model.New(&model.Config{Backend: "disabled"}),
		BackupDir:    filepath.Join(dir, "backups"),
		Requirements: filepath.Join(dir, "requirements.txt"),
		Root:         dir,
	})
	return e, dir
}

func logReport(errors ...types.LogErrorRecord) *logscan.Report {
	return &logscan.Report{Errors: errors}
}

func TestRepairImportError_AppendsToRequirements(t *testing.T) {
	e, _ := testExecutor(t)
	require.NoError(t, os.WriteFile(e.requirements, []byte("requests\n"), 0o644))

	outcome := e.repairImportError(types.LogErrorRecord{
		Line: "ERROR ModuleNotFoundError: No module named 'foo'",
		Type: "import_errors",
	})

	assert.Equal(t, types.RepairSuccess, outcome.Status)
	assert.Contains(t, outcome.Action, "foo")

	content, err := os.ReadFile(e.requirements)
	require.NoError(t, err)
	assert.Equal(t, "requests\nfoo\n", string(content))
}

func TestRepairImportError_MapsPackageNames(t *testing.T) {
	e, _ := testExecutor(t)

	outcome := e.repairImportError(types.LogErrorRecord{
		Line: `ERROR No module named 'PIL'`,
		Type: "import_errors",
	})

	require.Equal(t, types.RepairSuccess, outcome.Status)
	content, err := os.ReadFile(e.requirements)
	require.NoError(t, err)
	assert.Equal(t, "Pillow\n", string(content))
}

func TestRepairImportError_AlreadyPresentSkips(t *testing.T) {
	e, _ := testExecutor(t)
	require.NoError(t, os.WriteFile(e.requirements, []byte("pillow==10.0\n"), 0o644))

	outcome := e.repairImportError(types.LogErrorRecord{
		Line: `ERROR No module named 'PIL'`,
		Type: "import_errors",
	})

	assert.Equal(t, types.RepairSkipped, outcome.Status)

	content, err := os.ReadFile(e.requirements)
	require.NoError(t, err)
	assert.Equal(t, "pillow==10.0\n", string(content))
}

func TestRepairImportError_NoModuleName(t *testing.T) {
	e, _ := testExecutor(t)

	outcome := e.repairImportError(types.LogErrorRecord{
		Line: "ERROR ImportError: something vague",
		Type: "import_errors",
	})

	assert.Equal(t, types.RepairSkipped, outcome.Status)
}

func TestRepairLogIssues_APIErrorsAlwaysSkipped(t *testing.T) {
	e, _ := testExecutor(t)

	outcomes := e.repairLogIssues(context.Background(), logReport(
		types.LogErrorRecord{Line: "ERROR HTTP 500 error", Type: "api_errors"},
	))

	require.Len(t, outcomes, 1)
	assert.Equal(t, types.RepairSkipped, outcomes[0].Status)
	assert.Equal(t, "API errors require manual verification", outcomes[0].Reason)
	assert.NotEmpty(t, outcomes[0].Suggestion)

	// nothing on disk was touched
	_, err := os.Stat(e.requirements)
	assert.True(t, os.IsNotExist(err))
}

func TestRepairLogIssues_UnhandledTypeSkipped(t *testing.T) {
	e, _ := testExecutor(t)

	outcomes := e.repairLogIssues(context.Background(), logReport(
		types.LogErrorRecord{Line: "ERROR ValueError: bad", Type: "value_errors"},
	))

	require.Len(t, outcomes, 1)
	assert.Equal(t, types.RepairSkipped, outcomes[0].Status)
	assert.Contains(t, outcomes[0].Reason, "value_errors")
}

func TestRepairLogIssues_CapsPerRun(t *testing.T) {
	e, _ := testExecutor(t)

	var errors []types.LogErrorRecord
	for i := 0; i < 10; i++ {
		errors = append(errors, types.LogErrorRecord{
			Line: fmt.Sprintf("ERROR KeyError: '%d'", i),
			Type: "key_errors",
		})
	}

	outcomes := e.repairLogIssues(context.Background(), logReport(errors...))
	assert.Len(t, outcomes, DefaultLogRepairCap)
}

func TestRepairAttributeError_UnreachableModelSkips(t *testing.T) {
	e, _ := testExecutor(t)

	outcome := e.repairAttributeError(context.Background(), types.LogErrorRecord{
		Line: "ERROR AttributeError: 'NoneType' object has no attribute 'get'",
		Type: "attribute_errors",
	})

	assert.Equal(t, types.RepairSkipped, outcome.Status)
	assert.Equal(t, "could not generate fix", outcome.Reason)
}
