package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shipit-cli/shipit/internal/security"
)

// ValidationError represents a single invalid parameter
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors holds multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are validation errors
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// ValidateParams checks deployment parameters before anything touches the
// network or filesystem. The first invalid answer is fatal upstream, so
// errors are collected but never retried.
func ValidateParams(p *Params) ValidationErrors {
	var errors ValidationErrors

	if err := security.ValidateRepoURL(p.RepoURL); err != nil {
		errors = append(errors, ValidationError{Field: "repo_url", Message: err.Error()})
	}

	if p.Token == "" {
		errors = append(errors, ValidationError{Field: "token", Message: "access token is required"})
	}

	if err := security.ValidateBranch(p.Branch); err != nil {
		errors = append(errors, ValidationError{Field: "branch", Message: err.Error()})
	}

	if err := security.ValidateUnixUser(p.SSHUser); err != nil {
		errors = append(errors, ValidationError{Field: "ssh_user", Message: err.Error()})
	}

	if p.Host == "" {
		errors = append(errors, ValidationError{Field: "host", Message: "server address is required"})
	}

	if p.SSHPort != 0 {
		if err := security.ValidatePort(p.SSHPort); err != nil {
			errors = append(errors, ValidationError{Field: "ssh_port", Message: err.Error()})
		}
	}

	if p.KeyPath == "" {
		errors = append(errors, ValidationError{Field: "key_path", Message: "SSH key path is required"})
	} else if _, err := os.Stat(expandHome(p.KeyPath)); err != nil {
		errors = append(errors, ValidationError{Field: "key_path", Message: fmt.Sprintf("SSH key file not found: %s", p.KeyPath)})
	}

	if err := security.ValidatePort(p.AppPort); err != nil {
		errors = append(errors, ValidationError{Field: "app_port", Message: err.Error()})
	}

	return errors
}

// expandHome expands a leading ~/ so key paths saved in the registry
// validate the same way the SSH client resolves them.
func expandHome(p string) string {
	if len(p) >= 2 && p[:2] == "~/" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(homeDir, p[2:])
	}
	return p
}

// ValidateServerConfig validates a saved server entry
func ValidateServerConfig(config *ServerConfig) ValidationErrors {
	var errors ValidationErrors

	if config.Host == "" {
		errors = append(errors, ValidationError{Field: "host", Message: "server host is required"})
	}

	if err := security.ValidateUnixUser(config.User); err != nil {
		errors = append(errors, ValidationError{Field: "user", Message: err.Error()})
	}

	if config.Port < 1 || config.Port > 65535 {
		errors = append(errors, ValidationError{Field: "port", Message: "port must be between 1 and 65535"})
	}

	return errors
}
