package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validParams(t *testing.T) *Params {
	t.Helper()

	keyPath := filepath.Join(t.TempDir(), "id_ed25519")
	if err := os.WriteFile(keyPath, []byte("fake key material"), 0600); err != nil {
		t.Fatalf("failed to write key file: %v", err)
	}

	return &Params{
		RepoURL: "https://github.com/acme/shop.git",
		Token:   "ghp_token",
		Branch:  "main",
		SSHUser: "deploy",
		Host:    "203.0.113.10",
		SSHPort: 22,
		KeyPath: keyPath,
		AppPort: 8080,
	}
}

func TestValidateParams(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(p *Params)
		wantErrors bool
	}{
		{
			name:       "all valid",
			mutate:     func(p *Params) {},
			wantErrors: false,
		},
		{
			name:       "empty repo url",
			mutate:     func(p *Params) { p.RepoURL = "" },
			wantErrors: true,
		},
		{
			name:       "empty token",
			mutate:     func(p *Params) { p.Token = "" },
			wantErrors: true,
		},
		{
			name:       "empty branch",
			mutate:     func(p *Params) { p.Branch = "" },
			wantErrors: true,
		},
		{
			name:       "empty ssh user",
			mutate:     func(p *Params) { p.SSHUser = "" },
			wantErrors: true,
		},
		{
			name:       "empty host",
			mutate:     func(p *Params) { p.Host = "" },
			wantErrors: true,
		},
		{
			name:       "missing key file",
			mutate:     func(p *Params) { p.KeyPath = "/nonexistent/id_rsa" },
			wantErrors: true,
		},
		{
			name:       "empty key path",
			mutate:     func(p *Params) { p.KeyPath = "" },
			wantErrors: true,
		},
		{
			name:       "zero app port",
			mutate:     func(p *Params) { p.AppPort = 0 },
			wantErrors: true,
		},
		{
			name:       "out of range app port",
			mutate:     func(p *Params) { p.AppPort = 70000 },
			wantErrors: true,
		},
		{
			name:       "invalid ssh port",
			mutate:     func(p *Params) { p.SSHPort = -5 },
			wantErrors: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validParams(t)
			tt.mutate(params)

			errs := ValidateParams(params)
			if errs.HasErrors() != tt.wantErrors {
				t.Errorf("ValidateParams() errors = %v, wantErrors %v", errs, tt.wantErrors)
			}
		})
	}
}

func TestValidateServerConfig(t *testing.T) {
	tests := []struct {
		name       string
		config     *ServerConfig
		wantErrors bool
	}{
		{
			name:       "valid",
			config:     &ServerConfig{Host: "vps.example.com", User: "deploy", Port: 22},
			wantErrors: false,
		},
		{
			name:       "missing host",
			config:     &ServerConfig{User: "deploy", Port: 22},
			wantErrors: true,
		},
		{
			name:       "missing user",
			config:     &ServerConfig{Host: "vps.example.com", Port: 22},
			wantErrors: true,
		},
		{
			name:       "bad port",
			config:     &ServerConfig{Host: "vps.example.com", User: "deploy", Port: 0},
			wantErrors: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateServerConfig(tt.config)
			if errs.HasErrors() != tt.wantErrors {
				t.Errorf("ValidateServerConfig() errors = %v, wantErrors %v", errs, tt.wantErrors)
			}
		})
	}
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := ValidationErrors{
		{Field: "host", Message: "server address is required"},
		{Field: "app_port", Message: "port must be between 1 and 65535, got 0"},
	}

	msg := errs.Error()
	if msg != "host: server address is required; app_port: port must be between 1 and 65535, got 0" {
		t.Errorf("unexpected message: %q", msg)
	}
}
