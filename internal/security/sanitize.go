package security

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// repoNameRegex validates derived repository names. They end up in
	// container names, image tags and Nginx filenames, so they must be
	// DNS-compatible.
	repoNameRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9._-]{0,126}[a-zA-Z0-9])?$`)

	// serverNameRegex validates saved server configuration names
	serverNameRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9_-]{0,62}[a-zA-Z0-9])?$`)

	// branchRegex validates git branch names; intentionally stricter than
	// git itself since branches are interpolated into remote commands
	branchRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9._/-]{0,254})?$`)

	// unixUserRegex validates Unix usernames (POSIX rules)
	unixUserRegex = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)

	// tokenInURLRegex matches userinfo credentials embedded in clone URLs
	tokenInURLRegex = regexp.MustCompile(`(https?://)[^/@\s]+@`)
)

// ValidateRepoName validates a derived repository name.
func ValidateRepoName(name string) error {
	if name == "" {
		return fmt.Errorf("repository name cannot be empty")
	}
	if len(name) > 128 {
		return fmt.Errorf("repository name too long (max 128 characters)")
	}
	if !repoNameRegex.MatchString(name) {
		return fmt.Errorf("repository name must contain only letters, numbers, dots, underscores, and hyphens")
	}
	return nil
}

// ValidateServerName validates a saved server name.
func ValidateServerName(name string) error {
	if name == "" {
		return fmt.Errorf("server name cannot be empty")
	}
	if len(name) > 64 {
		return fmt.Errorf("server name too long (max 64 characters)")
	}
	if !serverNameRegex.MatchString(name) {
		return fmt.Errorf("server name must contain only letters, numbers, underscores, and hyphens")
	}
	return nil
}

// ValidateBranch validates a git branch name.
func ValidateBranch(branch string) error {
	if branch == "" {
		return fmt.Errorf("branch cannot be empty")
	}
	if len(branch) > 255 {
		return fmt.Errorf("branch name too long (max 255 characters)")
	}
	if strings.Contains(branch, "..") {
		return fmt.Errorf("branch name cannot contain '..'")
	}
	if !branchRegex.MatchString(branch) {
		return fmt.Errorf("branch name contains invalid characters")
	}
	return nil
}

// ValidateUnixUser validates the SSH username.
func ValidateUnixUser(user string) error {
	if user == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if len(user) > 32 {
		return fmt.Errorf("username too long (max 32 characters)")
	}
	if !unixUserRegex.MatchString(user) {
		return fmt.Errorf("username must start with a lowercase letter or underscore, followed by lowercase letters, numbers, underscores, or hyphens")
	}
	return nil
}

// ValidatePort validates a TCP port number.
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

// ValidateRepoURL validates a clone URL. Only http(s) URLs are accepted
// because token auth is embedded as userinfo.
func ValidateRepoURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("repository URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid repository URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("repository URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("repository URL has no host")
	}
	if u.Path == "" || u.Path == "/" {
		return fmt.Errorf("repository URL has no path")
	}
	return nil
}

// ShellEscape escapes a string for safe use in remote shell commands by
// wrapping it in single quotes using the POSIX pattern: ' -> '\''
func ShellEscape(s string) string {
	escaped := strings.ReplaceAll(s, "'", "'\\''")
	return "'" + escaped + "'"
}

// MaskToken masks an access token wherever it appears in a string, including
// userinfo embedded in clone URLs. Used before any command or URL is logged.
func MaskToken(s, token string) string {
	out := s
	if token != "" {
		out = strings.ReplaceAll(out, token, "****")
	}
	return tokenInURLRegex.ReplaceAllString(out, "${1}****@")
}
