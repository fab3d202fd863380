package ssh

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/shipit-cli/shipit/internal/constants"
)

// Client represents an SSH client connection to a deployment target
type Client struct {
	Host    string
	User    string
	Port    int
	KeyPath string
	client  *ssh.Client
}

// NewClient creates a new SSH client
func NewClient(host, user string, port int, keyPath string) *Client {
	if port == 0 {
		port = constants.DefaultSSHPort
	}
	return &Client{
		Host:    host,
		User:    user,
		Port:    port,
		KeyPath: keyPath,
	}
}

// Connect establishes an SSH connection
func (c *Client) Connect() error {
	signer, err := c.loadPrivateKey()
	if err != nil {
		return fmt.Errorf("failed to load private key: %w", err)
	}

	hostKeyCallback, err := c.hostKeyCallback()
	if err != nil {
		return fmt.Errorf("host key verification failed: %w", err)
	}

	config := &ssh.ClientConfig{
		User: c.User,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		HostKeyCallback: hostKeyCallback,
		Timeout:         constants.ConnectTimeout,
	}

	addr := fmt.Sprintf("%s:%d", c.Host, c.Port)
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	c.client = client
	return nil
}

// Close closes the SSH connection
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// IsConnected returns true if the client is connected
func (c *Client) IsConnected() bool {
	return c.client != nil
}

// Probe runs a trivial remote command to verify non-interactive access.
// One failed attempt is terminal upstream, so there is no retry here.
func (c *Client) Probe() error {
	output, err := c.ExecWithOutput("echo shipit-probe")
	if err != nil {
		return fmt.Errorf("connectivity probe failed: %w", err)
	}
	if output != "shipit-probe" {
		return fmt.Errorf("connectivity probe returned unexpected output: %q", output)
	}
	return nil
}

// loadPrivateKey loads the SSH private key
func (c *Client) loadPrivateKey() (ssh.Signer, error) {
	// CI/CD: key content can be injected via environment
	if envKey := os.Getenv("SHIPIT_SSH_KEY"); envKey != "" {
		signer, err := ssh.ParsePrivateKey([]byte(envKey))
		if err != nil {
			return nil, fmt.Errorf("failed to parse SHIPIT_SSH_KEY: %w", err)
		}
		return signer, nil
	}

	keyPath := expandHome(c.KeyPath)
	if keyPath == "" {
		return nil, fmt.Errorf("no SSH key configured (set SHIPIT_SSH_KEY for CI/CD)")
	}

	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return signer, nil
}

// hostKeyCallback returns the host key verification callback. A valid
// known_hosts file is required unless explicitly overridden for CI/CD via
// SHIPIT_KNOWN_HOSTS or SHIPIT_SKIP_HOST_KEY_CHECK=true.
func (c *Client) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if knownHostsContent := os.Getenv("SHIPIT_KNOWN_HOSTS"); knownHostsContent != "" {
		tmpFile, err := os.CreateTemp("", "known_hosts")
		if err != nil {
			return nil, fmt.Errorf("failed to create temp known_hosts: %w", err)
		}
		defer os.Remove(tmpFile.Name())

		if _, err := tmpFile.WriteString(knownHostsContent); err != nil {
			return nil, fmt.Errorf("failed to write temp known_hosts: %w", err)
		}
		tmpFile.Close()

		callback, err := knownhosts.New(tmpFile.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to parse SHIPIT_KNOWN_HOSTS: %w", err)
		}
		return callback, nil
	}

	if os.Getenv("SHIPIT_SKIP_HOST_KEY_CHECK") == "true" {
		return ssh.InsecureIgnoreHostKey(), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}

	knownHostsPath := filepath.Join(homeDir, ".ssh", "known_hosts")

	if _, err := os.Stat(knownHostsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("SSH known_hosts file not found at %s. "+
			"Connect to the server manually first with: ssh %s@%s -p %d\n"+
			"For CI/CD, set SHIPIT_KNOWN_HOSTS or SHIPIT_SKIP_HOST_KEY_CHECK=true",
			knownHostsPath, c.User, c.Host, c.Port)
	}

	callback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read known_hosts: %w", err)
	}

	return callback, nil
}

// NewSession creates a new SSH session
func (c *Client) NewSession() (*ssh.Session, error) {
	if c.client == nil {
		return nil, fmt.Errorf("not connected")
	}
	return c.client.NewSession()
}

// expandHome expands a leading ~/ in a path
func expandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
