package ssh

import "io"

// Executor abstracts remote command execution so pipeline stages can be
// tested without a live connection.
type Executor interface {
	Exec(command string) (*ExecResult, error)
	ExecStream(command string, out io.Writer) error
}

var _ Executor = (*Client)(nil)
