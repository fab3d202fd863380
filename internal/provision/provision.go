// Package provision prepares a bare host for deployments: Docker, Compose,
// and Nginx installed, services enabled and running.
package provision

import (
	"fmt"
	"io"

	"github.com/shipit-cli/shipit/internal/security"
	"github.com/shipit-cli/shipit/internal/ssh"
)

// Preparer installs and enables the remote environment
type Preparer struct {
	exec    ssh.Executor
	sshUser string
	out     io.Writer
}

// NewPreparer creates a preparer for the given remote user. Install output
// streams to out so the operator can watch long package installs.
func NewPreparer(exec ssh.Executor, sshUser string, out io.Writer) (*Preparer, error) {
	if err := security.ValidateUnixUser(sshUser); err != nil {
		return nil, fmt.Errorf("invalid ssh user: %w", err)
	}
	return &Preparer{exec: exec, sshUser: sshUser, out: out}, nil
}

// installCommands returns the fixed provisioning batch. The usermod step is
// tolerated: it fails on hosts without a docker group and the deploy still
// works through sudo.
func (p *Preparer) installCommands() []string {
	return []string{
		"sudo apt-get update -y",
		"sudo DEBIAN_FRONTEND=noninteractive apt-get install -y docker.io docker-compose-plugin nginx curl",
		"sudo systemctl enable --now docker",
		"sudo systemctl enable --now nginx",
		fmt.Sprintf("sudo usermod -aG docker %s || true", security.ShellEscape(p.sshUser)),
	}
}

// versionCommands report what got installed, for the log.
func (p *Preparer) versionCommands() []string {
	return []string{
		"docker --version",
		"docker compose version",
		"nginx -v",
	}
}

// Prepare runs the provisioning batch, aborting on the first failure of a
// non-tolerated step.
func (p *Preparer) Prepare() error {
	for _, cmd := range p.installCommands() {
		if err := p.exec.ExecStream(cmd, p.out); err != nil {
			return fmt.Errorf("provisioning step failed (%s): %w", cmd, err)
		}
	}

	for _, cmd := range p.versionCommands() {
		result, err := p.exec.Exec(cmd)
		if err != nil {
			return fmt.Errorf("failed to check versions: %w", err)
		}
		if result.ExitCode != 0 {
			return fmt.Errorf("%s failed (exit %d): %s", cmd, result.ExitCode, result.Stderr)
		}
		// nginx -v prints its version on stderr
		if p.out != nil {
			fmt.Fprint(p.out, result.Stdout)
			fmt.Fprint(p.out, result.Stderr)
		}
	}

	return nil
}
