package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/langreg/pkg/properties"
	"github.com/platinummonkey/langreg/pkg/registration"
)

func loadArtifact(t *testing.T, out string) *properties.Properties {
	t.Helper()
	f, err := os.Open(filepath.Join(out, registration.ArtifactPath))
	require.NoError(t, err)
	defer f.Close()

	p, err := properties.Load(f)
	require.NoError(t, err)
	return p
}

func TestGenerate_RoundPerPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "round1/sl.yaml", slDescriptor)
	writeFile(t, dir, "round2/js.hcl", jsDescriptor)
	out := filepath.Join(dir, "out")

	var stdout, stderr bytes.Buffer
	root := newRootCommand(&stdout, &stderr)
	err := root.ExecuteArgs([]string{
		"generate", "-out", out, "-sink", "filesystem",
		filepath.Join(dir, "round1"), filepath.Join(dir, "round2"),
	})
	require.NoError(t, err, stderr.String())

	p := loadArtifact(t, out)
	className, _ := p.Get("entry1.className")
	assert.Equal(t, "com.example.sl.SLLanguage", className)
	className, _ = p.Get("entry2.className")
	assert.Equal(t, "com.example.js.JSLanguage", className)
	dep, _ := p.Get("entry2.dependentLanguage.0")
	assert.Equal(t, "sl", dep)

	assert.Contains(t, stderr.String(), "Wrote 2 registration(s)")
	assert.Empty(t, stdout.String())
}

func TestGenerate_ErrorDiagnosticsExitNonZero(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/sl.yaml", slDescriptor)
	writeFile(t, dir, "src/hidden.yaml", hiddenDescriptor)
	out := filepath.Join(dir, "out")

	var stdout, stderr bytes.Buffer
	cmd := newGenerateCommand(&stdout, &stderr)
	err := cmd.Run([]string{"-out", out, filepath.Join(dir, "src")})
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))
	assert.Contains(t, err.Error(), "1 error(s) reported")
	assert.Contains(t, stderr.String(), "error: com.example.bad.Hidden: Registered language class must be public")

	// The valid declaration is still written
	p := loadArtifact(t, out)
	id, _ := p.Get("entry1.id")
	assert.Equal(t, "sl", id)
	_, ok := p.Get("entry2.className")
	assert.False(t, ok)
}

func TestGenerate_ExpectedErrorIsSuppressed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "expected.yaml", expectedDescriptor)

	var stdout, stderr bytes.Buffer
	cmd := newGenerateCommand(&stdout, &stderr)
	err := cmd.Run([]string{"-out", filepath.Join(dir, "out"), path})
	require.NoError(t, err)
	assert.NotContains(t, stderr.String(), "must be public")

	// Nothing was accepted so nothing is written
	_, statErr := os.Stat(filepath.Join(dir, "out", registration.ArtifactPath))
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerate_DryRun(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sl.yaml", slDescriptor)

	var stdout, stderr bytes.Buffer
	cmd := newGenerateCommand(&stdout, &stderr)
	require.NoError(t, cmd.Run([]string{"-dry-run", path}))

	output := stdout.String()
	assert.Contains(t, output, "#"+registration.GeneratorComment+"\n")
	assert.Contains(t, output, "entry1.id=sl\n")
	assert.Contains(t, output, "entry1.implementationName=Simple Language\n")
	assert.NotContains(t, stderr.String(), "Wrote")
}

func TestGenerate_Errors(t *testing.T) {
	dir := t.TempDir()
	broken := writeFile(t, dir, "broken.hcl", "type \"Unclosed\" {\n")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "no paths",
			args:    []string{"-sink", "memory"},
			wantErr: "at least one descriptor path is required",
		},
		{
			name:    "unparsable descriptor",
			args:    []string{"-sink", "memory", broken},
			wantErr: "round for " + broken,
		},
		{
			name:    "missing path",
			args:    []string{"-sink", "memory", filepath.Join(dir, "missing")},
			wantErr: "round for",
		},
		{
			name:    "unknown sink",
			args:    []string{"-sink", "ftp", dir},
			wantErr: "invalid sink",
		},
		{
			name:    "missing config file",
			args:    []string{"-config", filepath.Join(dir, "nope.yaml"), dir},
			wantErr: "failed to read config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			cmd := newGenerateCommand(&stdout, &stderr)
			err := cmd.Run(tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGenerate_RedisClaimsShareRun(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	dir := t.TempDir()
	src := writeFile(t, dir, "sl.yaml", slDescriptor)
	cfgPath := writeFile(t, dir, "langreg.yaml", "claims:\n  backend: redis\n  redis_url: redis://"+mr.Addr()+"\n")

	first := filepath.Join(dir, "first")
	second := filepath.Join(dir, "second")

	var stdout, stderr bytes.Buffer
	err = newGenerateCommand(&stdout, &stderr).Run([]string{
		"-config", cfgPath, "-run-id", "build-42", "-out", first, src,
	})
	require.NoError(t, err, stderr.String())
	assert.FileExists(t, filepath.Join(first, registration.ArtifactPath))

	// A second writer in the same run loses the claim silently
	stderr.Reset()
	err = newGenerateCommand(&stdout, &stderr).Run([]string{
		"-config", cfgPath, "-run-id", "build-42", "-out", second, src,
	})
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(second, registration.ArtifactPath))
	assert.NotContains(t, stderr.String(), "error:")

	// A different run claims again
	err = newGenerateCommand(&stdout, &stderr).Run([]string{
		"-config", cfgPath, "-run-id", "build-43", "-out", second, src,
	})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(second, registration.ArtifactPath))
}
