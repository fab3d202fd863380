// Package nginx generates reverse-proxy site configuration and the remote
// commands that install, validate, and reload it.
package nginx

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"text/template"

	"github.com/shipit-cli/shipit/internal/constants"
	"github.com/shipit-cli/shipit/internal/security"
)

// SiteConfig describes a single proxied application
type SiteConfig struct {
	Name string
	Port int
}

// Generator renders Nginx site configuration files
type Generator struct{}

// NewGenerator creates a new config generator
func NewGenerator() *Generator {
	return &Generator{}
}

const siteTemplate = `# {{ .Name }} - managed by shipit
server {
    listen 80;
    server_name _;

    location / {
        proxy_pass http://localhost:{{ .Port }};
        proxy_set_header Host $host;
        proxy_set_header X-Real-IP $remote_addr;
        proxy_set_header X-Forwarded-For $proxy_add_x_forwarded_for;
        proxy_set_header X-Forwarded-Proto $scheme;
    }
}
`

// GenerateSiteConfig renders the server block proxying all traffic to the
// application port on localhost.
func (g *Generator) GenerateSiteConfig(site SiteConfig) (string, error) {
	if err := security.ValidateRepoName(site.Name); err != nil {
		return "", fmt.Errorf("invalid site name: %w", err)
	}
	if err := security.ValidatePort(site.Port); err != nil {
		return "", fmt.Errorf("invalid site port: %w", err)
	}

	t, err := template.New("site").Parse(siteTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, site); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// WriteSiteCommand returns the remote command that writes the site config to
// sites-available. Content travels base64 encoded so the config cannot break
// out of the command.
func WriteSiteCommand(name, content string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(content))
	return fmt.Sprintf("echo '%s' | base64 -d | sudo tee %s > /dev/null",
		encoded, security.ShellEscape(constants.SiteConfigPath(name)))
}

// EnableSiteCommand returns the command that symlinks the site into
// sites-enabled. ln -sfn overwrites any prior symlink, which keeps re-runs
// idempotent.
func EnableSiteCommand(name string) string {
	return fmt.Sprintf("sudo ln -sfn %s %s",
		security.ShellEscape(constants.SiteConfigPath(name)),
		security.ShellEscape(constants.SiteEnabledPath(name)))
}

// TestCommand returns the configuration validation command. It must pass
// before any reload so a broken config never takes down the running proxy.
func TestCommand() string {
	return "sudo nginx -t"
}

// ReloadCommand returns the service reload command.
func ReloadCommand() string {
	return "sudo systemctl reload nginx"
}
