package gitrepo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
}

func TestDetectModeCompose(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "docker-compose.yml")

	mode, err := DetectMode(dir)
	require.NoError(t, err)
	assert.Equal(t, ModeCompose, mode)
}

func TestDetectModeDockerfile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Dockerfile")

	mode, err := DetectMode(dir)
	require.NoError(t, err)
	assert.Equal(t, ModeDockerfile, mode)
}

func TestDetectModeComposeWinsOverDockerfile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Dockerfile")
	writeFile(t, dir, "docker-compose.yml")

	mode, err := DetectMode(dir)
	require.NoError(t, err)
	assert.Equal(t, ModeCompose, mode)
}

func TestDetectModeNothingToDeploy(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "README.md")

	_, err := DetectMode(dir)
	assert.Error(t, err)
}

func TestMarkerFile(t *testing.T) {
	assert.Equal(t, "docker-compose.yml", ModeCompose.MarkerFile())
	assert.Equal(t, "Dockerfile", ModeDockerfile.MarkerFile())
	assert.Equal(t, "", Mode("svn").MarkerFile())
}

func TestDetectModeIgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "Dockerfile"), 0755))

	_, err := DetectMode(dir)
	assert.Error(t, err)
}
