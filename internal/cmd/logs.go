package cmd

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shipit-cli/shipit/internal/constants"
	"github.com/shipit-cli/shipit/internal/gitrepo"
	"github.com/shipit-cli/shipit/internal/security"
)

var logsCmd = &cobra.Command{
	Use:   "logs <server> <repo-url-or-name>",
	Short: "Show application container logs from a server",
	Long: `Displays logs from the deployed application container.

Example:
  shipit logs production https://github.com/acme/shop.git
  shipit logs production shop --tail 50
  shipit logs production shop -f`,
	Args: cobra.ExactArgs(2),
	RunE: runRemoteLogs,
}

var (
	logsFollow bool
	logsTail   string
	logsSince  string
)

var (
	logTailRegex  = regexp.MustCompile(`^([0-9]+|all)$`)
	logSinceRegex = regexp.MustCompile(`^([0-9]+[smhd])+$|^[0-9]{4}-[0-9]{2}-[0-9]{2}(T[0-9]{2}:[0-9]{2}:[0-9]{2})?$`)
)

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output")
	logsCmd.Flags().StringVar(&logsTail, "tail", "100", "Number of lines to show")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show logs since timestamp (e.g., 2h, 30m)")
}

func runRemoteLogs(cmd *cobra.Command, args []string) error {
	serverName := args[0]
	repoArg := args[1]

	if err := validateLogTail(logsTail); err != nil {
		return fmt.Errorf("invalid --tail value: %w", err)
	}
	if err := validateLogSince(logsSince); err != nil {
		return fmt.Errorf("invalid --since value: %w", err)
	}

	repoName := repoArg
	if derived, err := gitrepo.DeriveName(repoArg); err == nil {
		repoName = derived
	}
	if err := security.ValidateRepoName(repoName); err != nil {
		return fmt.Errorf("invalid repository name: %w", err)
	}

	client, err := connectSavedServer(serverName)
	if err != nil {
		return err
	}
	defer client.Close()

	logCmd := fmt.Sprintf("sudo docker logs --tail %s", logsTail)
	if logsSince != "" {
		logCmd += fmt.Sprintf(" --since %s", logsSince)
	}
	if logsFollow {
		logCmd += " -f"
	}
	logCmd += " " + security.ShellEscape(constants.ContainerName(repoName))

	return client.ExecStream(logCmd, os.Stdout)
}

func validateLogTail(tail string) error {
	if tail == "" {
		return nil
	}
	if !logTailRegex.MatchString(tail) {
		return fmt.Errorf("tail must be a positive integer or 'all'")
	}
	if tail != "all" {
		n, err := strconv.Atoi(tail)
		if err != nil {
			return fmt.Errorf("invalid tail value: %w", err)
		}
		if n > 100000 {
			return fmt.Errorf("tail value too large (max 100000)")
		}
	}
	return nil
}

func validateLogSince(since string) error {
	if since == "" {
		return nil
	}
	if len(since) > 64 {
		return fmt.Errorf("since value too long")
	}
	if !logSinceRegex.MatchString(since) {
		return fmt.Errorf("since must be a duration (e.g., '2h', '30m') or timestamp (e.g., '2024-01-15')")
	}
	return nil
}
