package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	settings, err := Load(filepath.Join(t.TempDir(), DefaultFile))

	require.NoError(t, err)
	assert.Equal(t, "3.1.0", settings.Tool.Version)
	assert.Equal(t, "binwalkv3", settings.Image.Tag)
	assert.Equal(t, "Dockerfile", settings.Image.Dockerfile)
	assert.Equal(t, ".venv", settings.Python.VenvDir)
	assert.Equal(t, "requirements.txt", settings.Python.Manifest)
}

func TestLoadAppliesDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("tool:\n  version: \"3.0.2\"\n"), 0644))

	settings, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "3.0.2", settings.Tool.Version)
	assert.Equal(t, "binwalkv3", settings.Image.Tag)
	assert.Equal(t, ".venv", settings.Python.VenvDir)
}

func TestLoadParsesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	content := `
tool:
  version: "3.1.0"
  sha256: "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
image:
  tag: firmscan
python:
  venv_dir: env
  manifest: deps.txt
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	settings, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "firmscan", settings.Image.Tag)
	assert.Equal(t, "env", settings.Python.VenvDir)
	assert.Equal(t, "deps.txt", settings.Python.Manifest)
	assert.NotEmpty(t, settings.Tool.SHA256)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("tool: [broken"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateRejectsVersionPrefix(t *testing.T) {
	settings := NewDefaultSettings()
	settings.Tool.Version = "v3.1.0"

	err := settings.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prefix")
}

func TestValidateRejectsEmptyFields(t *testing.T) {
	for _, mutate := range []func(*Settings){
		func(s *Settings) { s.Tool.Version = "" },
		func(s *Settings) { s.Image.Tag = "" },
		func(s *Settings) { s.Python.VenvDir = "" },
		func(s *Settings) { s.Python.Manifest = "" },
	} {
		settings := NewDefaultSettings()
		mutate(settings)
		assert.Error(t, settings.Validate())
	}
}

func TestDerivedArtifactNames(t *testing.T) {
	settings := NewDefaultSettings()

	assert.Equal(t,
		"https://github.com/ReFirmLabs/binwalk/archive/refs/tags/v3.1.0.tar.gz",
		settings.ArchiveURL())
	assert.Equal(t, "binwalk-3.1.0.tar.gz", settings.ArchiveName())
	assert.Equal(t, "binwalk-3.1.0", settings.SourceDir())
}

func TestArchiveURLOverrideWins(t *testing.T) {
	settings := NewDefaultSettings()
	settings.Tool.ArchiveURL = "https://mirror.example.com/binwalk.tar.gz"

	assert.Equal(t, "https://mirror.example.com/binwalk.tar.gz", settings.ArchiveURL())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	settings := NewDefaultSettings()
	settings.Image.Tag = "firmscan"

	require.NoError(t, settings.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)
}
