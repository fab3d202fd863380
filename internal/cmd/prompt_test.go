package cmd

import (
	"bufio"
	"strings"
	"testing"

	"github.com/shipit-cli/shipit/internal/config"
)

// withStdin replaces the shared prompt reader with scripted input, one line
// per answer.
func withStdin(t *testing.T, input string) {
	t.Helper()
	old := stdinReader
	stdinReader = bufio.NewReader(strings.NewReader(input))
	t.Cleanup(func() { stdinReader = old })
}

func TestPromptStringReturnsDefaultOnEmptyAnswer(t *testing.T) {
	withStdin(t, "\n")

	got, err := PromptString("Branch", "main")
	if err != nil {
		t.Fatalf("PromptString() error = %v", err)
	}
	if got != "main" {
		t.Errorf("PromptString() = %q, expected default %q", got, "main")
	}
}

func TestPromptRequiredEmptyAnswerIsFatal(t *testing.T) {
	withStdin(t, "\n")

	_, err := PromptRequired("Repository URL")
	if err == nil {
		t.Fatal("PromptRequired() expected error for empty answer")
	}
	if !strings.Contains(err.Error(), "Repository URL") {
		t.Errorf("error should name the missing parameter: %v", err)
	}
}

func TestPromptsShareOneReader(t *testing.T) {
	// Both answers arrive in a single buffered write; a per-prompt reader
	// would swallow the second line with the first.
	withStdin(t, "first\nsecond\n")

	got, err := PromptString("A", "")
	if err != nil || got != "first" {
		t.Fatalf("first prompt = %q, %v", got, err)
	}
	got, err = PromptString("B", "")
	if err != nil || got != "second" {
		t.Fatalf("second prompt = %q, %v", got, err)
	}
}

func TestPromptMissingStopsAtFirstEmptyRequiredAnswer(t *testing.T) {
	// Only one line of input: if the collector moved on past the empty
	// repository URL, the next prompt would fail on EOF instead.
	withStdin(t, "\n")

	err := promptMissing(&config.Params{})
	if err == nil {
		t.Fatal("promptMissing() expected error for empty repository URL")
	}
	if !strings.Contains(err.Error(), "Repository URL") {
		t.Errorf("failure should surface at the repository URL prompt: %v", err)
	}
}

func TestPromptMissingEmptyTokenIsFatal(t *testing.T) {
	withStdin(t, "https://github.com/acme/shop.git\n\n")

	err := promptMissing(&config.Params{})
	if err == nil {
		t.Fatal("promptMissing() expected error for empty token")
	}
	if !strings.Contains(err.Error(), "token") && !strings.Contains(err.Error(), "Access") {
		t.Errorf("failure should surface at the token prompt: %v", err)
	}
}

func TestPromptMissingSkipsAnsweredParams(t *testing.T) {
	withStdin(t, "8080\n")

	params := &config.Params{
		RepoURL: "https://github.com/acme/shop.git",
		Token:   "ghp_token",
		Branch:  "main",
		SSHUser: "deploy",
		Host:    "203.0.113.10",
		KeyPath: "/tmp/id_ed25519",
	}
	if err := promptMissing(params); err != nil {
		t.Fatalf("promptMissing() error = %v", err)
	}
	if params.AppPort != 8080 {
		t.Errorf("AppPort = %d, expected 8080", params.AppPort)
	}
}
