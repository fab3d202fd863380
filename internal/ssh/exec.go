package ssh

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/ssh"
)

// ExecResult holds the captured result of a remote command
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Exec executes a command on the remote server and captures its output.
// A non-zero remote exit status is reported through ExitCode, not err.
func (c *Client) Exec(command string) (*ExecResult, error) {
	session, err := c.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	err = session.Run(command)

	result := &ExecResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		if exitErr, ok := err.(*ssh.ExitError); ok {
			result.ExitCode = exitErr.ExitStatus()
		} else {
			return result, fmt.Errorf("failed to execute command: %w", err)
		}
	}

	return result, nil
}

// ExecWithOutput executes a command and returns trimmed stdout, turning a
// non-zero exit status into an error.
func (c *Client) ExecWithOutput(command string) (string, error) {
	result, err := c.Exec(command)
	if err != nil {
		return "", err
	}

	output := strings.TrimSpace(result.Stdout)
	if result.ExitCode != 0 {
		errMsg := strings.TrimSpace(result.Stderr)
		if errMsg == "" {
			errMsg = output
		}
		return output, fmt.Errorf("command failed (exit %d): %s", result.ExitCode, errMsg)
	}

	return output, nil
}

// ExecStream executes a command and streams combined output to the writer,
// for long operations the operator wants to watch (installs, builds).
func (c *Client) ExecStream(command string, out io.Writer) error {
	session, err := c.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	session.Stdout = out
	session.Stderr = out

	return session.Run(command)
}
