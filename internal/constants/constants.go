package constants

import (
	"fmt"
	"path"
	"time"
)

// Nginx paths on the target server
const (
	SitesAvailableDir = "/etc/nginx/sites-available"
	SitesEnabledDir   = "/etc/nginx/sites-enabled"
)

// Timing
const (
	// ConnectTimeout bounds the SSH dial and the connectivity probe.
	ConnectTimeout = 10 * time.Second
	// PostStartDelay is how long the deployer waits before listing containers.
	PostStartDelay = 10 * time.Second
)

// Deployment defaults
const (
	DefaultBranch  = "main"
	DefaultSSHPort = 22
)

// RemoteAppDir returns the deployment directory for a repository under the
// SSH user's home.
func RemoteAppDir(sshUser, repoName string) string {
	return path.Join("/home", sshUser, repoName)
}

// ImageName returns the Docker image tag used for Dockerfile-mode builds.
func ImageName(repoName string) string {
	return repoName + "_app"
}

// ContainerName returns the container name used for Dockerfile-mode runs.
func ContainerName(repoName string) string {
	return repoName + "_container"
}

// SiteConfigPath returns the sites-available config path for a repository.
func SiteConfigPath(repoName string) string {
	return path.Join(SitesAvailableDir, repoName+".conf")
}

// SiteEnabledPath returns the sites-enabled symlink path for a repository.
func SiteEnabledPath(repoName string) string {
	return path.Join(SitesEnabledDir, repoName+".conf")
}

// LogFileName returns the per-run deploy log filename for a start time.
func LogFileName(t time.Time) string {
	return fmt.Sprintf("deploy_%s.log", t.Format("20060102_150405"))
}
