package statediff

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stateFile = "var/lib/pkgctl/deployments.toml"

const pendingState = `
[[deployment]]
checksum = "b2c4"
osname = "fedora"
pending = true
packages = [
  "bash-5.2.26-3.fc40.x86_64",
  "htop-3.3.0-1.fc40.x86_64",
  "kernel-6.8.9-300.fc40.x86_64",
  "vim-enhanced-2:9.1.031-1.fc40.x86_64",
]
requested_packages = ["htop", "vim-enhanced"]

[[deployment]]
checksum = "a1f0"
osname = "fedora"
booted = true
packages = [
  "bash-5.2.26-1.fc40.x86_64",
  "kernel-6.9.1-200.fc40.x86_64",
  "nano-7.2-6.fc40.x86_64",
  "htop-3.3.0-1.fc40.x86_64",
]
requested_packages = ["nano", "htop"]
`

func writeState(t *testing.T, content string) string {
	t.Helper()
	sysroot := t.TempDir()
	path := filepath.Join(sysroot, stateFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return sysroot
}

func TestStateInspectorDiff(t *testing.T) {
	sysroot := writeState(t, pendingState)

	d, err := StateInspector{StateFile: stateFile}.Diff(sysroot)
	require.NoError(t, err)
	require.False(t, d.Empty())

	require.Len(t, d.Upgraded, 1)
	assert.Equal(t, "bash", d.Upgraded[0].To.Name)
	assert.Equal(t, "5.2.26-1.fc40", d.Upgraded[0].From.EVR())
	require.Len(t, d.Downgraded, 1)
	assert.Equal(t, "kernel", d.Downgraded[0].To.Name)
	require.Len(t, d.Removed, 1)
	assert.Equal(t, "nano-7.2-6.fc40.x86_64", d.Removed[0].String())
	require.Len(t, d.Added, 1)
	assert.Equal(t, "vim-enhanced-2:9.1.031-1.fc40.x86_64", d.Added[0].String())
	assert.Len(t, d.Prior, 4)
	assert.Len(t, d.Next, 4)
}

func TestStateInspectorDiff_EmptyWhenDefaultIsBooted(t *testing.T) {
	sysroot := writeState(t, `
[[deployment]]
checksum = "a1f0"
booted = true
packages = ["bash-5.2.26-1.fc40.x86_64"]

[[deployment]]
checksum = "0000"
packages = ["bash-5.2.0-1.fc40.x86_64"]
`)
	d, err := StateInspector{StateFile: stateFile}.Diff(sysroot)
	require.NoError(t, err)
	assert.True(t, d.Empty())
}

func TestStateInspectorDiff_EmptyWhenNothingBooted(t *testing.T) {
	sysroot := writeState(t, "[[deployment]]\nchecksum = \"a\"\npackages = [\"bash-1-1.x86_64\"]\n")
	d, err := StateInspector{StateFile: stateFile}.Diff(sysroot)
	require.NoError(t, err)
	assert.True(t, d.Empty())
}

func TestStateInspectorDiff_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "unknown key", content: "[[deployment]]\nchecksum = \"a\"\nlayers = 3\n", wantErr: "invalid deployment state"},
		{name: "two booted", content: "[[deployment]]\nbooted = true\n[[deployment]]\nbooted = true\n", wantErr: "more than one booted"},
		{name: "bad package", content: "[[deployment]]\npackages = [\"bash\"]\n[[deployment]]\nbooted = true\n", wantErr: `invalid package "bash"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sysroot := writeState(t, tt.content)
			_, err := StateInspector{StateFile: stateFile}.Diff(sysroot)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStateInspectorDiff_MissingFile(t *testing.T) {
	_, err := StateInspector{StateFile: stateFile}.Diff(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read deployment state")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLayeredPackages(t *testing.T) {
	sysroot := writeState(t, pendingState)
	got, err := StateInspector{StateFile: stateFile}.LayeredPackages(sysroot)
	require.NoError(t, err)
	assert.Equal(t, []string{"htop", "nano"}, got)

	sysroot = writeState(t, "[[deployment]]\nrequested_packages = [\"x\"]\n")
	got, err = StateInspector{StateFile: stateFile}.LayeredPackages(sysroot)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestComputeKeepsNewestPerSlot(t *testing.T) {
	parse := func(s string) Package {
		p, err := ParseNEVRA(s)
		require.NoError(t, err)
		return p
	}
	prior := []Package{parse("kernel-6.8.1-1.x86_64"), parse("kernel-6.9.1-1.x86_64")}
	next := []Package{parse("kernel-6.9.1-1.x86_64"), parse("kernel-6.10.0-1.x86_64")}

	d := Compute(prior, next)
	require.Len(t, d.Upgraded, 1)
	assert.Equal(t, "6.10.0", d.Upgraded[0].To.Version)
	assert.Equal(t, "kernel-6.8.1-1.x86_64", d.Prior[0].String())
}

func TestRenderSummary(t *testing.T) {
	d, err := StateInspector{StateFile: stateFile}.Diff(writeState(t, pendingState))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Render(&out, d, RenderOptions{Format: FormatSummary, MaxLines: 40}))
	assert.Equal(t, strings.Join([]string{
		"Upgraded:",
		"  bash.x86_64 5.2.26-1.fc40 -> 5.2.26-3.fc40",
		"Downgraded:",
		"  kernel.x86_64 6.9.1-200.fc40 -> 6.8.9-300.fc40",
		"Removed:",
		"  nano-7.2-6.fc40.x86_64",
		"Added:",
		"  vim-enhanced-2:9.1.031-1.fc40.x86_64",
		"",
	}, "\n"), out.String())
}

func TestRenderSummary_Color(t *testing.T) {
	d, err := StateInspector{StateFile: stateFile}.Diff(writeState(t, pendingState))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Render(&out, d, RenderOptions{Format: FormatSummary, Color: true}))
	assert.Contains(t, out.String(), "\x1b[")
}

func TestRenderUnified(t *testing.T) {
	d, err := StateInspector{StateFile: stateFile}.Diff(writeState(t, pendingState))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Render(&out, d, RenderOptions{Format: FormatUnified, MaxLines: 40}))
	text := out.String()
	assert.Contains(t, text, "--- booted")
	assert.Contains(t, text, "+++ pending")
	assert.Contains(t, text, "-nano-7.2-6.fc40.x86_64")
	assert.Contains(t, text, "+vim-enhanced-2:9.1.031-1.fc40.x86_64")
	assert.NotContains(t, text, "\x1b[")
}

func TestRenderTruncates(t *testing.T) {
	d, err := StateInspector{StateFile: stateFile}.Diff(writeState(t, pendingState))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Render(&out, d, RenderOptions{Format: FormatSummary, MaxLines: 2}))
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "... (truncated to 2 lines; set output.diff_max_lines to see more)", lines[2])
}

func TestRenderEmpty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Render(&out, Diff{}, RenderOptions{}))
	assert.Equal(t, "No package changes.\n", out.String())
}
