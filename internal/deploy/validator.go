package deploy

import (
	"fmt"
	"strings"

	"github.com/shipit-cli/shipit/internal/ssh"
)

// Validator runs the best-effort post-deployment checks: service status,
// container list, and a local HTTP probe against the proxied port.
type Validator struct {
	exec      ssh.Executor
	appPort   int
	onMessage func(string)
	onWarning func(string)
}

// NewValidator creates a validator for the given application port.
func NewValidator(exec ssh.Executor, appPort int) *Validator {
	return &Validator{exec: exec, appPort: appPort}
}

// OnMessage sets a callback for check results.
func (v *Validator) OnMessage(fn func(string)) {
	v.onMessage = fn
}

// OnWarning sets a callback for tolerated failures.
func (v *Validator) OnWarning(fn func(string)) {
	v.onWarning = fn
}

func (v *Validator) message(msg string) {
	if v.onMessage != nil {
		v.onMessage(msg)
	}
}

func (v *Validator) warn(msg string) {
	if v.onWarning != nil {
		v.onWarning(msg)
	}
}

// Validate reports the remote state. Only a lost connection is an error;
// failing checks are surfaced as warnings because the deployment itself has
// already succeeded.
func (v *Validator) Validate() error {
	result, err := v.exec.Exec("systemctl is-active docker")
	if err != nil {
		return fmt.Errorf("failed to check docker service: %w", err)
	}
	if state := strings.TrimSpace(result.Stdout); state == "active" {
		v.message("Docker service: active")
	} else {
		v.warn(fmt.Sprintf("Docker service state: %s", state))
	}

	result, err = v.exec.Exec("sudo docker ps --format '{{.Names}}\t{{.Status}}\t{{.Ports}}'")
	if err != nil {
		return fmt.Errorf("failed to list containers: %w", err)
	}
	if result.ExitCode == 0 && strings.TrimSpace(result.Stdout) != "" {
		v.message("Containers:\n" + strings.TrimRight(result.Stdout, "\n"))
	} else {
		v.warn("no running containers reported")
	}

	// HTTP probe through the local port; failure is tolerated because slow
	// apps may still be starting.
	probe := fmt.Sprintf("curl -sI -o /dev/null -w '%%{http_code}' --max-time 10 http://localhost:%d/", v.appPort)
	result, err = v.exec.Exec(probe)
	if err != nil {
		return fmt.Errorf("failed to run HTTP probe: %w", err)
	}
	if result.ExitCode == 0 {
		v.message(fmt.Sprintf("HTTP probe on port %d: %s", v.appPort, strings.TrimSpace(result.Stdout)))
	} else {
		v.warn(fmt.Sprintf("HTTP probe on port %d failed (the app may still be starting)", v.appPort))
	}

	return nil
}
