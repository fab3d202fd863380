package ssh

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/shipit-cli/shipit/internal/security"
)

// UploadFile uploads a local file to the remote server via the SCP protocol.
func (c *Client) UploadFile(localPath, remotePath string) error {
	localFile, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open local file: %w", err)
	}
	defer localFile.Close()

	fileInfo, err := localFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat local file: %w", err)
	}

	session, err := c.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	remoteDir := path.Dir(remotePath)
	if _, err := c.Exec(fmt.Sprintf("mkdir -p %s", security.ShellEscape(remoteDir))); err != nil {
		return fmt.Errorf("failed to create remote directory: %w", err)
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}

	filename := path.Base(remotePath)
	go func() {
		defer stdin.Close()
		// SCP protocol: C<mode> <size> <filename>\n<data>\0
		fmt.Fprintf(stdin, "C0644 %d %s\n", fileInfo.Size(), filename)
		_, _ = io.Copy(stdin, localFile)
		fmt.Fprint(stdin, "\x00")
	}()

	if err := session.Run(fmt.Sprintf("scp -t %s", security.ShellEscape(remotePath))); err != nil {
		return fmt.Errorf("scp failed: %w", err)
	}

	return nil
}

// SyncDirectory mirrors a local directory to the remote path, skipping the
// named top-level entries (version-control metadata). The remote directory
// is replaced wholesale: one-way sync, local wins.
func (c *Client) SyncDirectory(localDir, remoteDir string, exclude []string) error {
	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[name] = true
	}

	// Clear the target first so deleted local files disappear remotely too.
	clearCmd := fmt.Sprintf("rm -rf %s && mkdir -p %s",
		security.ShellEscape(remoteDir), security.ShellEscape(remoteDir))
	if result, err := c.Exec(clearCmd); err != nil {
		return fmt.Errorf("failed to prepare remote directory: %w", err)
	} else if result.ExitCode != 0 {
		return fmt.Errorf("failed to prepare remote directory: %s", result.Stderr)
	}

	return filepath.Walk(localDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(localDir, p)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		// Excludes match the first path element only.
		first := relPath
		if i := len(filepath.VolumeName(relPath)); i > 0 {
			first = relPath[i:]
		}
		if idx := indexSeparator(first); idx >= 0 {
			first = first[:idx]
		}
		if excluded[first] {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		remotePath := path.Join(remoteDir, filepath.ToSlash(relPath))

		if info.IsDir() {
			result, err := c.Exec(fmt.Sprintf("mkdir -p %s", security.ShellEscape(remotePath)))
			if err != nil {
				return err
			}
			if result.ExitCode != 0 {
				return fmt.Errorf("failed to create %s: %s", remotePath, result.Stderr)
			}
			return nil
		}

		// Symlinks and other irregular files are skipped.
		if !info.Mode().IsRegular() {
			return nil
		}

		return c.UploadFile(p, remotePath)
	})
}

func indexSeparator(s string) int {
	for i := 0; i < len(s); i++ {
		if os.IsPathSeparator(s[i]) {
			return i
		}
	}
	return -1
}

// RemoteFileExists checks if a regular file exists on the remote server.
func RemoteFileExists(exec Executor, remotePath string) (bool, error) {
	result, err := exec.Exec(fmt.Sprintf("test -f %s && echo 'exists'", security.ShellEscape(remotePath)))
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(result.Stdout) == "exists", nil
}

// RemoteDirExists checks if a directory exists on the remote server.
func RemoteDirExists(exec Executor, remotePath string) (bool, error) {
	result, err := exec.Exec(fmt.Sprintf("test -d %s && echo 'exists'", security.ShellEscape(remotePath)))
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(result.Stdout) == "exists", nil
}
