package hooks

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteAll(t *testing.T) {
	ctx := context.Background()
	workDir := t.TempDir()
	vars := Variables{Path: "CLAUDE.md", Lines: 42}

	tests := []struct {
		name     string
		hooks    []*HookConfig
		expected string
	}{
		{
			name:     "no hooks",
			hooks:    []*HookConfig{},
			expected: "",
		},
		{
			name:     "variables expanded",
			hooks:    []*HookConfig{{Command: "echo {{path}} {{lines}}", Timeout: 5}},
			expected: "CLAUDE.md 42\n",
		},
		{
			name: "outputs joined in order",
			hooks: []*HookConfig{
				{Command: "echo first", Timeout: 5},
				{Command: "true", Timeout: 5},
				{Command: "echo second", Timeout: 5},
			},
			expected: "first\n\nsecond\n",
		},
		{
			name:     "nil and empty hooks skipped",
			hooks:    []*HookConfig{nil, {Command: ""}},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := ExecuteAll(ctx, tt.hooks, workDir, vars)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, output)
		})
	}
}

func TestExecute_FailureIsReportedInOutput(t *testing.T) {
	out, err := Execute(context.Background(), &HookConfig{Command: "echo oops >&2; exit 3"}, t.TempDir(), Variables{})
	require.NoError(t, err)
	assert.Contains(t, out, "[Hook command failed: exit status 3]")
	assert.Contains(t, out, "[stderr]\noops")
}

func TestExecute_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExecuteAll(ctx, []*HookConfig{{Command: "echo test", Timeout: 5}}, t.TempDir(), Variables{})
	assert.Error(t, err)
}

func TestRunPostSave(t *testing.T) {
	workDir := t.TempDir()

	out, err := RunPostSave(context.Background(), workDir, Variables{})
	require.NoError(t, err)
	assert.Empty(t, out, "missing config is not an error")

	cfg := "version: 1\nhooks:\n  post_save:\n    - command: cat {{path}}\n"
	require.NoError(t, os.WriteFile(filepath.Join(workDir, ConfigFileName), []byte(cfg), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "CLAUDE.md"), []byte("# Doc\n"), 0o644))

	out, err = RunPostSave(context.Background(), workDir, Variables{Path: "CLAUDE.md"})
	require.NoError(t, err)
	assert.Equal(t, "# Doc\n", out)

	require.NoError(t, os.WriteFile(filepath.Join(workDir, ConfigFileName), []byte("hooks: ["), 0o644))
	_, err = RunPostSave(context.Background(), workDir, Variables{})
	assert.Error(t, err)
}
