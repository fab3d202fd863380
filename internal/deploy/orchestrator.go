// Package deploy runs the remote stages of the pipeline: container
// deployment, reverse-proxy configuration, and post-deploy validation.
package deploy

import (
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/shipit-cli/shipit/internal/constants"
	"github.com/shipit-cli/shipit/internal/gitrepo"
	"github.com/shipit-cli/shipit/internal/nginx"
	"github.com/shipit-cli/shipit/internal/security"
	"github.com/shipit-cli/shipit/internal/ssh"
)

// Orchestrator drives the remote deployment stages for one repository.
// Stages run forward-only: any non-tolerated failure aborts the run and
// leaves the remote state as-is.
type Orchestrator struct {
	exec      ssh.Executor
	repoName  string
	mode      gitrepo.Mode
	appPort   int
	remoteDir string
	out       io.Writer
	onMessage func(string)

	// startupDelay is how long to wait before listing containers; tests
	// shorten it.
	startupDelay time.Duration
	sleep        func(time.Duration)
}

// NewOrchestrator creates an orchestrator for a detected deploy mode.
func NewOrchestrator(exec ssh.Executor, repoName string, mode gitrepo.Mode, appPort int, remoteDir string, out io.Writer) (*Orchestrator, error) {
	if err := security.ValidateRepoName(repoName); err != nil {
		return nil, fmt.Errorf("invalid repository name: %w", err)
	}
	if err := security.ValidatePort(appPort); err != nil {
		return nil, fmt.Errorf("invalid application port: %w", err)
	}
	if mode != gitrepo.ModeCompose && mode != gitrepo.ModeDockerfile {
		return nil, fmt.Errorf("unknown deploy mode %q", mode)
	}
	return &Orchestrator{
		exec:         exec,
		repoName:     repoName,
		mode:         mode,
		appPort:      appPort,
		remoteDir:    remoteDir,
		out:          out,
		startupDelay: constants.PostStartDelay,
		sleep:        time.Sleep,
	}, nil
}

// OnMessage sets a callback for stage status messages.
func (o *Orchestrator) OnMessage(fn func(string)) {
	o.onMessage = fn
}

func (o *Orchestrator) message(msg string) {
	if o.onMessage != nil {
		o.onMessage(msg)
	}
}

// DeployContainers stops whatever is running for this repository and brings
// up the new version according to the deploy mode.
func (o *Orchestrator) DeployContainers() error {
	if err := o.verifySyncedFiles(); err != nil {
		return err
	}

	o.message("Stopping old containers...")
	o.stopOldContainers()

	switch o.mode {
	case gitrepo.ModeCompose:
		o.message("Starting compose stack...")
		if err := o.composeUp(); err != nil {
			return err
		}
	case gitrepo.ModeDockerfile:
		o.message("Building image...")
		if err := o.buildImage(); err != nil {
			return err
		}
		o.message("Starting container...")
		if err := o.runContainer(); err != nil {
			return err
		}
	}

	o.sleep(o.startupDelay)

	o.message("Running containers:")
	result, err := o.exec.Exec("sudo docker ps")
	if err != nil {
		return fmt.Errorf("failed to list containers: %w", err)
	}
	o.message(strings.TrimRight(result.Stdout, "\n"))

	return nil
}

// verifySyncedFiles confirms the synced tree actually landed: the remote
// directory and the file that selected the deploy mode must both be present
// before any container is touched.
func (o *Orchestrator) verifySyncedFiles() error {
	exists, err := ssh.RemoteDirExists(o.exec, o.remoteDir)
	if err != nil {
		return fmt.Errorf("failed to verify synced files: %w", err)
	}
	if !exists {
		return fmt.Errorf("remote directory %s not found: files were not synced", o.remoteDir)
	}

	marker := path.Join(o.remoteDir, o.mode.MarkerFile())
	exists, err = ssh.RemoteFileExists(o.exec, marker)
	if err != nil {
		return fmt.Errorf("failed to verify synced files: %w", err)
	}
	if !exists {
		return fmt.Errorf("%s not found on server: sync incomplete", marker)
	}
	return nil
}

// stopOldContainers is tolerated: a host with nothing running yet has no
// stack to bring down. Containers running the repository's image are removed
// whatever their name; the fixed container name is cleared too so docker run
// can reuse it.
func (o *Orchestrator) stopOldContainers() {
	_, _ = o.exec.Exec(fmt.Sprintf("cd %s && sudo docker compose down --remove-orphans 2>/dev/null || true",
		security.ShellEscape(o.remoteDir)))
	_, _ = o.exec.Exec(fmt.Sprintf("sudo docker ps -aq --filter ancestor=%s | xargs -r sudo docker rm -f",
		security.ShellEscape(constants.ImageName(o.repoName))))
	_, _ = o.exec.Exec(fmt.Sprintf("sudo docker ps -aq --filter name=%s | xargs -r sudo docker rm -f",
		security.ShellEscape(constants.ContainerName(o.repoName))))
}

func (o *Orchestrator) composeUp() error {
	cmd := fmt.Sprintf("cd %s && sudo docker compose up -d --build", security.ShellEscape(o.remoteDir))
	if err := o.exec.ExecStream(cmd, o.out); err != nil {
		return fmt.Errorf("compose up failed: %w", err)
	}
	return nil
}

func (o *Orchestrator) buildImage() error {
	cmd := fmt.Sprintf("cd %s && sudo docker build -t %s .",
		security.ShellEscape(o.remoteDir),
		security.ShellEscape(constants.ImageName(o.repoName)))
	if err := o.exec.ExecStream(cmd, o.out); err != nil {
		return fmt.Errorf("image build failed: %w", err)
	}
	return nil
}

func (o *Orchestrator) runContainer() error {
	cmd := fmt.Sprintf("sudo docker run -d --name %s --restart unless-stopped -p %d:%d %s",
		security.ShellEscape(constants.ContainerName(o.repoName)),
		o.appPort, o.appPort,
		security.ShellEscape(constants.ImageName(o.repoName)))

	result, err := o.exec.Exec(cmd)
	if err != nil {
		return fmt.Errorf("docker run failed: %w", err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("docker run failed (exit %d): %s", result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// ConfigureProxy writes the Nginx site config, enables it, validates the
// full configuration, and reloads. A failed validation aborts before the
// reload so the previous configuration keeps serving traffic.
func (o *Orchestrator) ConfigureProxy() error {
	content, err := nginx.NewGenerator().GenerateSiteConfig(nginx.SiteConfig{
		Name: o.repoName,
		Port: o.appPort,
	})
	if err != nil {
		return err
	}

	o.message("Writing reverse-proxy configuration...")
	if err := o.run(nginx.WriteSiteCommand(o.repoName, content)); err != nil {
		return fmt.Errorf("failed to write site config: %w", err)
	}

	if err := o.run(nginx.EnableSiteCommand(o.repoName)); err != nil {
		return fmt.Errorf("failed to enable site: %w", err)
	}

	o.message("Validating Nginx configuration...")
	if err := o.run(nginx.TestCommand()); err != nil {
		return fmt.Errorf("nginx configuration test failed, keeping previous configuration: %w", err)
	}

	o.message("Reloading Nginx...")
	if err := o.run(nginx.ReloadCommand()); err != nil {
		return fmt.Errorf("failed to reload nginx: %w", err)
	}

	return nil
}

func (o *Orchestrator) run(cmd string) error {
	result, err := o.exec.Exec(cmd)
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		msg := strings.TrimSpace(result.Stderr)
		if msg == "" {
			msg = strings.TrimSpace(result.Stdout)
		}
		return fmt.Errorf("command failed (exit %d): %s", result.ExitCode, msg)
	}
	return nil
}
