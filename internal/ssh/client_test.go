package ssh

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewClientDefaultPort(t *testing.T) {
	client := NewClient("example.com", "deploy", 0, "")
	if client.Port != 22 {
		t.Errorf("Port = %d, expected 22", client.Port)
	}

	client = NewClient("example.com", "deploy", 2222, "")
	if client.Port != 2222 {
		t.Errorf("Port = %d, expected 2222", client.Port)
	}
}

func TestExecWithoutConnection(t *testing.T) {
	client := NewClient("example.com", "deploy", 22, "")

	if _, err := client.Exec("echo hi"); err == nil {
		t.Error("Exec() on unconnected client expected error, got nil")
	}
	if _, err := client.ExecWithOutput("echo hi"); err == nil {
		t.Error("ExecWithOutput() on unconnected client expected error, got nil")
	}
	if err := client.Probe(); err == nil {
		t.Error("Probe() on unconnected client expected error, got nil")
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true for unconnected client")
	}
}

func TestCloseWithoutConnection(t *testing.T) {
	client := NewClient("example.com", "deploy", 22, "")
	if err := client.Close(); err != nil {
		t.Errorf("Close() on unconnected client error = %v", err)
	}
}

func TestExpandHome(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~/.ssh/id_ed25519", filepath.Join(homeDir, ".ssh", "id_ed25519")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := expandHome(tt.input); got != tt.expected {
			t.Errorf("expandHome(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestLoadPrivateKeyFromEnv(t *testing.T) {
	t.Setenv("SHIPIT_SSH_KEY", "not a valid key")

	client := NewClient("example.com", "deploy", 22, "")
	_, err := client.loadPrivateKey()
	if err == nil {
		t.Fatal("expected error for invalid SHIPIT_SSH_KEY")
	}
	if !strings.Contains(err.Error(), "SHIPIT_SSH_KEY") {
		t.Errorf("error should mention SHIPIT_SSH_KEY: %v", err)
	}
}
