package gitrepo

import (
	"fmt"
	"os"
	"path/filepath"
)

// Mode selects the build/run strategy for a repository.
type Mode string

const (
	// ModeCompose runs the stack via docker compose.
	ModeCompose Mode = "compose"
	// ModeDockerfile builds a single image and runs one container.
	ModeDockerfile Mode = "dockerfile"
)

const (
	composeFile    = "docker-compose.yml"
	dockerfileName = "Dockerfile"
)

// MarkerFile returns the repository file that selects this mode.
func (m Mode) MarkerFile() string {
	switch m {
	case ModeCompose:
		return composeFile
	case ModeDockerfile:
		return dockerfileName
	}
	return ""
}

// DetectMode inspects the repository root. docker-compose.yml wins over
// Dockerfile; neither present is fatal before any SSH connection happens.
func DetectMode(dir string) (Mode, error) {
	if fileExists(filepath.Join(dir, composeFile)) {
		return ModeCompose, nil
	}
	if fileExists(filepath.Join(dir, dockerfileName)) {
		return ModeDockerfile, nil
	}
	return "", fmt.Errorf("neither %s nor %s found in %s: nothing to deploy", composeFile, dockerfileName, dir)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
