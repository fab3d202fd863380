package ssh

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/crypto/ssh"
)

// KeyInfo describes a private key found on disk
type KeyInfo struct {
	Path        string
	Name        string
	Type        string
	IsEncrypted bool
}

// DiscoverKeys scans ~/.ssh/ for private keys, sorted by preference:
// ed25519 first, then rsa, then the rest. Used to suggest a default when
// prompting for the key path.
func DiscoverKeys() ([]KeyInfo, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}

	sshDir := filepath.Join(homeDir, ".ssh")
	entries, err := os.ReadDir(sshDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read .ssh directory: %w", err)
	}

	var keys []KeyInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasSuffix(name, ".pub") ||
			name == "known_hosts" ||
			name == "authorized_keys" ||
			name == "config" {
			continue
		}
		if !strings.HasPrefix(name, "id_") && !strings.HasSuffix(name, ".pem") {
			continue
		}

		info, err := InspectKey(filepath.Join(sshDir, name))
		if err != nil {
			continue
		}
		keys = append(keys, *info)
	}

	sort.Slice(keys, func(i, j int) bool {
		return keyTypePriority(keys[i].Type) < keyTypePriority(keys[j].Type)
	})

	return keys, nil
}

func keyTypePriority(keyType string) int {
	switch keyType {
	case "ed25519":
		return 1
	case "rsa":
		return 2
	case "ecdsa":
		return 3
	default:
		return 4
	}
}

// InspectKey parses a key file and reports its type and whether it is
// passphrase-protected.
func InspectKey(path string) (*KeyInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	info := &KeyInfo{
		Path: path,
		Name: filepath.Base(path),
	}

	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		if _, ok := err.(*ssh.PassphraseMissingError); ok {
			info.IsEncrypted = true
			info.Type = "encrypted"
			return info, nil
		}
		return nil, fmt.Errorf("not a valid private key: %w", err)
	}

	keyType := signer.PublicKey().Type()
	switch {
	case strings.Contains(keyType, "ed25519"):
		info.Type = "ed25519"
	case strings.Contains(keyType, "rsa"):
		info.Type = "rsa"
	case strings.Contains(keyType, "ecdsa"):
		info.Type = "ecdsa"
	default:
		info.Type = keyType
	}

	return info, nil
}
