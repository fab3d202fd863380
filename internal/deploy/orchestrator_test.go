package deploy

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipit-cli/shipit/internal/gitrepo"
	"github.com/shipit-cli/shipit/internal/ssh"
)

func newTestOrchestrator(t *testing.T, mock *ssh.MockExecutor, mode gitrepo.Mode) *Orchestrator {
	t.Helper()

	orch, err := NewOrchestrator(mock, "shop", mode, 8080, "/home/deploy/shop", io.Discard)
	require.NoError(t, err)
	orch.startupDelay = 0
	orch.sleep = func(time.Duration) {}
	return orch
}

// syncedHostMock answers the pre-deploy file checks as if the sync already
// ran; everything else goes to override, or succeeds.
func syncedHostMock(override func(command string) (*ssh.ExecResult, error)) *ssh.MockExecutor {
	return &ssh.MockExecutor{
		ExecFunc: func(command string) (*ssh.ExecResult, error) {
			if strings.HasPrefix(command, "test -") {
				return &ssh.ExecResult{Stdout: "exists\n"}, nil
			}
			if override != nil {
				return override(command)
			}
			return &ssh.ExecResult{}, nil
		},
	}
}

func TestDeployContainersComposeMode(t *testing.T) {
	mock := syncedHostMock(nil)
	orch := newTestOrchestrator(t, mock, gitrepo.ModeCompose)

	require.NoError(t, orch.DeployContainers())

	joined := strings.Join(mock.Commands, "\n")
	assert.Contains(t, joined, "docker compose down")
	assert.Contains(t, joined, "docker compose up -d --build")
	assert.Contains(t, joined, "sudo docker ps")
	assert.NotContains(t, joined, "docker build -t")
	assert.NotContains(t, joined, "docker run")
}

func TestDeployContainersDockerfileMode(t *testing.T) {
	mock := syncedHostMock(nil)
	orch := newTestOrchestrator(t, mock, gitrepo.ModeDockerfile)

	require.NoError(t, orch.DeployContainers())

	joined := strings.Join(mock.Commands, "\n")
	assert.Contains(t, joined, "docker build -t 'shop_app' .")
	assert.Contains(t, joined, "--name 'shop_container'")
	assert.Contains(t, joined, "-p 8080:8080")
	assert.NotContains(t, joined, "docker compose up")
}

func TestDeployContainersToleratesComposeDownFailure(t *testing.T) {
	mock := syncedHostMock(func(command string) (*ssh.ExecResult, error) {
		if strings.Contains(command, "compose down") {
			return &ssh.ExecResult{ExitCode: 1, Stderr: "no stack"}, nil
		}
		return &ssh.ExecResult{}, nil
	})
	orch := newTestOrchestrator(t, mock, gitrepo.ModeCompose)

	assert.NoError(t, orch.DeployContainers())
}

func TestDeployContainersAbortsOnRunFailure(t *testing.T) {
	mock := syncedHostMock(func(command string) (*ssh.ExecResult, error) {
		if strings.Contains(command, "docker run") {
			return &ssh.ExecResult{ExitCode: 125, Stderr: "port already allocated"}, nil
		}
		return &ssh.ExecResult{}, nil
	})
	orch := newTestOrchestrator(t, mock, gitrepo.ModeDockerfile)

	err := orch.DeployContainers()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port already allocated")
}

func TestDeployContainersRequiresSyncedFiles(t *testing.T) {
	// Every check answers "not there": nothing was synced.
	mock := &ssh.MockExecutor{
		ExecFunc: func(command string) (*ssh.ExecResult, error) {
			return &ssh.ExecResult{ExitCode: 1}, nil
		},
	}
	orch := newTestOrchestrator(t, mock, gitrepo.ModeCompose)

	err := orch.DeployContainers()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not synced")

	// No container may be touched on an unsynced host.
	joined := strings.Join(mock.Commands, "\n")
	assert.NotContains(t, joined, "docker compose")
	assert.NotContains(t, joined, "docker rm")
}

func TestDeployContainersChecksModeFile(t *testing.T) {
	// The directory is there but the compose file is not.
	mock := &ssh.MockExecutor{
		ExecFunc: func(command string) (*ssh.ExecResult, error) {
			if strings.HasPrefix(command, "test -d") {
				return &ssh.ExecResult{Stdout: "exists\n"}, nil
			}
			return &ssh.ExecResult{ExitCode: 1}, nil
		},
	}
	orch := newTestOrchestrator(t, mock, gitrepo.ModeCompose)

	err := orch.DeployContainers()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docker-compose.yml")
}

func TestStopOldContainersRemovesByImageAndName(t *testing.T) {
	mock := syncedHostMock(nil)
	orch := newTestOrchestrator(t, mock, gitrepo.ModeDockerfile)

	require.NoError(t, orch.DeployContainers())

	// A leftover container started from the repository's image under any
	// other name must be removed too, not just the fixed container name.
	joined := strings.Join(mock.Commands, "\n")
	assert.Contains(t, joined, "--filter ancestor='shop_app'")
	assert.Contains(t, joined, "--filter name='shop_container'")
}

func TestConfigureProxyWritesEnablesTestsReloads(t *testing.T) {
	mock := &ssh.MockExecutor{}
	orch := newTestOrchestrator(t, mock, gitrepo.ModeCompose)

	require.NoError(t, orch.ConfigureProxy())

	joined := strings.Join(mock.Commands, "\n")
	assert.Contains(t, joined, "/etc/nginx/sites-available/shop.conf")
	assert.Contains(t, joined, "ln -sfn")
	assert.Contains(t, joined, "nginx -t")
	assert.Contains(t, joined, "systemctl reload nginx")

	// Reload must come after the config test.
	testIdx, reloadIdx := -1, -1
	for i, cmd := range mock.Commands {
		if strings.Contains(cmd, "nginx -t") {
			testIdx = i
		}
		if strings.Contains(cmd, "systemctl reload nginx") {
			reloadIdx = i
		}
	}
	require.GreaterOrEqual(t, testIdx, 0)
	require.GreaterOrEqual(t, reloadIdx, 0)
	assert.Less(t, testIdx, reloadIdx)
}

func TestConfigureProxyFailedTestSkipsReload(t *testing.T) {
	mock := &ssh.MockExecutor{
		ExecFunc: func(command string) (*ssh.ExecResult, error) {
			if strings.Contains(command, "nginx -t") {
				return &ssh.ExecResult{ExitCode: 1, Stderr: "syntax error"}, nil
			}
			return &ssh.ExecResult{}, nil
		},
	}
	orch := newTestOrchestrator(t, mock, gitrepo.ModeCompose)

	err := orch.ConfigureProxy()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keeping previous configuration")

	// The previous config keeps serving: no reload happened.
	for _, cmd := range mock.Commands {
		assert.NotContains(t, cmd, "systemctl reload nginx")
	}
}

func TestNewOrchestratorRejectsBadInput(t *testing.T) {
	mock := &ssh.MockExecutor{}

	_, err := NewOrchestrator(mock, "bad name", gitrepo.ModeCompose, 8080, "/tmp", io.Discard)
	assert.Error(t, err)

	_, err = NewOrchestrator(mock, "shop", gitrepo.ModeCompose, 0, "/tmp", io.Discard)
	assert.Error(t, err)

	_, err = NewOrchestrator(mock, "shop", gitrepo.Mode("svn"), 8080, "/tmp", io.Discard)
	assert.Error(t, err)
}
