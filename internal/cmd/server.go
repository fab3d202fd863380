package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shipit-cli/shipit/internal/config"
	"github.com/shipit-cli/shipit/internal/security"
	"github.com/shipit-cli/shipit/internal/ssh"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Manage saved deployment servers",
	Long:  `Commands to add, list, and remove saved deployment servers so 'shipit deploy --server <name>' can skip the connection prompts.`,
}

var serverAddCmd = &cobra.Command{
	Use:   "add <name> <user@host>",
	Short: "Add a server to the registry",
	Long: `Adds a server to the global configuration.

Example:
  shipit server add production deploy@my-vps.com
  shipit server add staging user@staging.example.com --ssh-port 2222`,
	Args: cobra.ExactArgs(2),
	RunE: runServerAdd,
}

var serverListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved servers",
	RunE:  runServerList,
}

var serverRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a saved server",
	Args:  cobra.ExactArgs(1),
	RunE:  runServerRemove,
}

var (
	serverSSHPort int
	serverKeyPath string
	skipSSHTest   bool
)

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.AddCommand(serverAddCmd)
	serverCmd.AddCommand(serverListCmd)
	serverCmd.AddCommand(serverRemoveCmd)

	serverAddCmd.Flags().IntVar(&serverSSHPort, "ssh-port", 22, "SSH port")
	serverAddCmd.Flags().StringVarP(&serverKeyPath, "key", "k", "", "SSH private key path")
	serverAddCmd.Flags().BoolVar(&skipSSHTest, "skip-test", false, "Skip SSH connection test")
}

func runServerAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	hostSpec := args[1]

	if err := security.ValidateServerName(name); err != nil {
		return fmt.Errorf("invalid server name: %w", err)
	}

	parts := strings.SplitN(hostSpec, "@", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid host format, use user@host")
	}
	user, host := parts[0], parts[1]

	globalCfg, err := config.LoadGlobalConfig()
	if err != nil {
		return fmt.Errorf("failed to load global config: %w", err)
	}

	keyPath := serverKeyPath
	if keyPath == "" {
		keyPath = defaultKeyPath()
	}

	serverCfg := config.ServerConfig{
		Host:    host,
		User:    user,
		Port:    serverSSHPort,
		KeyPath: keyPath,
	}

	if errs := config.ValidateServerConfig(&serverCfg); errs.HasErrors() {
		return fmt.Errorf("invalid server configuration: %w", errs)
	}

	if err := globalCfg.AddServer(name, serverCfg); err != nil {
		return err
	}

	if err := config.SaveGlobalConfig(globalCfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	PrintSuccess("Added server '%s' (%s@%s)", name, user, host)

	if skipSSHTest {
		PrintInfo("Skipping SSH connection test (--skip-test)")
		return nil
	}

	PrintInfo("Testing SSH connection...")
	client := ssh.NewClient(host, user, serverSSHPort, keyPath)
	if err := client.Connect(); err != nil {
		PrintWarning("SSH connection could not be established: %v", err)
		PrintInfo("Test manually with: ssh %s@%s -p %d", user, host, serverSSHPort)
		return nil
	}
	defer client.Close()

	if err := client.Probe(); err != nil {
		PrintWarning("SSH probe failed: %v", err)
		return nil
	}

	PrintSuccess("SSH connection successful")
	return nil
}

func runServerList(cmd *cobra.Command, args []string) error {
	globalCfg, err := config.LoadGlobalConfig()
	if err != nil {
		return err
	}

	names := globalCfg.ListServers()
	if len(names) == 0 {
		PrintInfo("No servers configured. Add one with: shipit server add <name> <user@host>")
		return nil
	}
	sort.Strings(names)

	for _, name := range names {
		srv := globalCfg.Servers[name]
		fmt.Printf("  %-20s %s@%s:%d", name, srv.User, srv.Host, srv.Port)
		if srv.KeyPath != "" {
			fmt.Printf("  (key: %s)", srv.KeyPath)
		}
		fmt.Println()
	}
	return nil
}

func runServerRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	globalCfg, err := config.LoadGlobalConfig()
	if err != nil {
		return err
	}

	if err := globalCfg.RemoveServer(name); err != nil {
		return err
	}

	if err := config.SaveGlobalConfig(globalCfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	PrintSuccess("Removed server '%s'", name)
	return nil
}
