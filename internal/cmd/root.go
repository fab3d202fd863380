package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is set at build time
	Version = "dev"

	// Global flags
	verbose bool
	yesFlag bool // CI/CD: never prompt, fail on missing values
)

var rootCmd = &cobra.Command{
	Use:   "shipit",
	Short: "Provision a server and deploy a containerized Git repository",
	Long: `Shipit provisions a remote Linux host over SSH and deploys a
containerized application behind an Nginx reverse proxy.

It clones the repository, detects whether it deploys via docker compose or a
plain Dockerfile, installs Docker and Nginx on the target host, syncs the
working tree, starts the containers, and wires up the reverse proxy.

Quick start:
  shipit deploy                  # interactive: prompts for everything
  shipit server add prod deploy@my-vps.com
  shipit deploy --server prod    # reuse saved connection details

CI/CD Environment Variables:
  SHIPIT_REPO_URL             Repository clone URL
  SHIPIT_TOKEN                Access token for private repositories
  SHIPIT_BRANCH               Branch to deploy (default: main)
  SHIPIT_SSH_USER             Remote SSH username
  SHIPIT_HOST                 Server address
  SHIPIT_KEY_PATH             SSH private key path
  SHIPIT_APP_PORT             Container port
  SHIPIT_SSH_KEY              SSH private key content
  SHIPIT_KNOWN_HOSTS          SSH known_hosts content
  SHIPIT_SKIP_HOST_KEY_CHECK  Skip host key verification (true/false)`,
	Version: Version,
}

// ExecuteContext runs the root command with the given context. Errors are
// printed here with the error marker, so cobra's own reporting is silenced.
func ExecuteContext(ctx context.Context) error {
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		PrintError("%v", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed logs")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false, "Never prompt; fail when a required value is missing (CI/CD mode)")

	rootCmd.SetVersionTemplate(`shipit {{.Version}}
`)
}

// IsVerbose returns true if verbose mode is enabled
func IsVerbose() bool {
	return verbose
}

// IsYesMode returns true if --yes flag is set (CI/CD mode)
func IsYesMode() bool {
	return yesFlag
}

// PrintError prints a formatted error message
func PrintError(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "❌ "+msg+"\n", args...)
}

// PrintSuccess prints a success message
func PrintSuccess(msg string, args ...interface{}) {
	fmt.Printf("✅ "+msg+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(msg string, args ...interface{}) {
	fmt.Printf("ℹ️  "+msg+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(msg string, args ...interface{}) {
	fmt.Printf("⚠️  "+msg+"\n", args...)
}

// PrintVerbose prints a message only in verbose mode
func PrintVerbose(msg string, args ...interface{}) {
	if verbose {
		fmt.Printf("   "+msg+"\n", args...)
	}
}
