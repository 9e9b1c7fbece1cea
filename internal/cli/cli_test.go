package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calldraft/calldraft/internal/server"
	apperrors "github.com/calldraft/calldraft/pkg/errors"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"shifts.csv":      "date,day,night\n2024-07-01,1,1\n2024-07-02,1,0\n",
		"rotations.csv":   "name,2024-07-01\nAda,Wards\nBo,Vacation\nCy,Clinic\n",
		"preferences.csv": "name,preferred_shifts\nAda,\nBo,\nCy,night\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	cfg := `
draft:
  name: test-year
  shifts_file: ` + filepath.Join(dir, "shifts.csv") + `
  rotations_file: ` + filepath.Join(dir, "rotations.csv") + `
  preferences_file: ` + filepath.Join(dir, "preferences.csv") + `
database:
  driver: sqlite
  path: ` + filepath.Join(dir, "draft.db") + `
`
	path := filepath.Join(dir, "calldraft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := Execute(context.Background(), server.BuildInfo{Version: "1.2.3", GitCommit: "abc"}, args, &out)
	return out.String(), err
}

func TestVersion_SkipsBootstrap(t *testing.T) {
	out, err := run(t, "version", "--config", "/does/not/exist.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "calldraft 1.2.3 (abc")
}

func TestAssignPersistsAcrossRuns(t *testing.T) {
	cfg := writeFixture(t)

	out, err := run(t, "--config", cfg, "assign", "Cy", "2024-07-01", "night")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-07-01 night -> Cy")

	out, err = run(t, "--config", cfg, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "test-year")
	assert.Contains(t, out, "Cy")

	out, err = run(t, "--config", cfg, "demand")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-07-02")
	assert.NotContains(t, out, "night")

	out, err = run(t, "--config", cfg, "events")
	require.NoError(t, err)
	assert.Contains(t, out, "AssignShift")

	out, err = run(t, "--config", cfg, "clear", "2024-07-01", "night")
	require.NoError(t, err)
	assert.Contains(t, out, "已清空")

	out, err = run(t, "--config", cfg, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "暂无分配")
}

func TestAssign_NotRequired(t *testing.T) {
	cfg := writeFixture(t)
	_, err := run(t, "--config", cfg, "assign", "Cy", "2024-07-02", "night")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeShiftNotRequired))

	_, err = run(t, "--config", cfg, "assign", "Cy")
	assert.Error(t, err)
}

func TestRecommend(t *testing.T) {
	cfg := writeFixture(t)
	out, err := run(t, "--config", cfg, "recommend", "--date", "2024-07-01", "--shift", "night")
	require.NoError(t, err)
	assert.Contains(t, out, "推荐 (1)")
	assert.Contains(t, out, "Cy")
	assert.Contains(t, out, "硬限制 (1)")

	_, err = run(t, "--config", cfg, "recommend", "--date", "07/01", "--shift", "night")
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInput))
}

func TestReset_RequiresConfirmation(t *testing.T) {
	cfg := writeFixture(t)
	_, err := run(t, "--config", cfg, "assign", "Ada", "2024-07-01", "day")
	require.NoError(t, err)

	_, err = run(t, "--config", cfg, "reset")
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidInput))

	out, err := run(t, "--config", cfg, "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "已清空全部分配")
}

func TestStatsConstraintsExport(t *testing.T) {
	cfg := writeFixture(t)

	out, err := run(t, "--config", cfg, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "0 / 3")

	out, err = run(t, "--config", cfg, "constraints")
	require.NoError(t, err)
	assert.Contains(t, out, "blocked_rotation")

	path := filepath.Join(t.TempDir(), "out.xlsx")
	out, err = run(t, "--config", cfg, "export", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestDraftFlagSeparatesState(t *testing.T) {
	cfg := writeFixture(t)
	_, err := run(t, "--config", cfg, "--draft", "other", "assign", "Ada", "2024-07-01", "day")
	require.NoError(t, err)

	out, err := run(t, "--config", cfg, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "暂无分配")
}
