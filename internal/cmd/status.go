package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shipit-cli/shipit/internal/config"
	"github.com/shipit-cli/shipit/internal/deploy"
	"github.com/shipit-cli/shipit/internal/security"
	"github.com/shipit-cli/shipit/internal/ssh"
)

var statusCmd = &cobra.Command{
	Use:   "status <server>",
	Short: "Show the deployment state of a server",
	Long: `Runs the post-deployment checks on demand: Docker service state,
running containers, and an HTTP probe against the application port.

Example:
  shipit status production --port 8080`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

var statusAppPort int

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().IntVarP(&statusAppPort, "port", "p", 80, "Application port to probe")
}

func runStatus(cmd *cobra.Command, args []string) error {
	serverName := args[0]

	if err := security.ValidatePort(statusAppPort); err != nil {
		return err
	}

	client, err := connectSavedServer(serverName)
	if err != nil {
		return err
	}
	defer client.Close()

	validator := deploy.NewValidator(client, statusAppPort)
	validator.OnMessage(func(msg string) { PrintInfo("%s", msg) })
	validator.OnWarning(func(msg string) { PrintWarning("%s", msg) })

	return validator.Validate()
}

// connectSavedServer opens an SSH connection to a server from the registry.
func connectSavedServer(name string) (*ssh.Client, error) {
	if err := security.ValidateServerName(name); err != nil {
		return nil, fmt.Errorf("invalid server name: %w", err)
	}

	globalCfg, err := config.LoadGlobalConfig()
	if err != nil {
		return nil, err
	}

	srv, err := globalCfg.GetServer(name)
	if err != nil {
		return nil, err
	}

	client := ssh.NewClient(srv.Host, srv.User, srv.Port, srv.KeyPath)
	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to '%s': %w", name, err)
	}
	return client, nil
}
