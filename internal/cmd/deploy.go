package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shipit-cli/shipit/internal/config"
	"github.com/shipit-cli/shipit/internal/constants"
	"github.com/shipit-cli/shipit/internal/deploy"
	"github.com/shipit-cli/shipit/internal/gitrepo"
	"github.com/shipit-cli/shipit/internal/logging"
	"github.com/shipit-cli/shipit/internal/provision"
	"github.com/shipit-cli/shipit/internal/security"
	"github.com/shipit-cli/shipit/internal/ssh"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Provision the server and deploy the repository",
	Long: `Runs the full deployment pipeline:

1. Collect parameters (prompts for anything not given by flags or SHIPIT_* env)
2. Clone the repository, or update an existing local clone
3. Detect the deploy mode (docker-compose.yml wins over Dockerfile)
4. Verify SSH connectivity
5. Install Docker, Compose, and Nginx on the server
6. Sync the working tree to the server
7. Build and start the containers
8. Write and enable the Nginx reverse-proxy configuration
9. Validate the deployment

Every stage appends to a deploy_<timestamp>.log file in the current
directory. Any failing stage aborts the run with exit code 1.`,
	RunE: runDeploy,
}

var (
	deployServer  string
	deployRepoURL string
	deployToken   string
	deployBranch  string
	deploySSHUser string
	deployHost    string
	deploySSHPort int
	deployKeyPath string
	deployAppPort int
	deployWorkDir string
)

func init() {
	rootCmd.AddCommand(deployCmd)
	deployCmd.Flags().StringVarP(&deployServer, "server", "s", "", "Saved server name (see 'shipit server add')")
	deployCmd.Flags().StringVar(&deployRepoURL, "repo", "", "Repository clone URL")
	deployCmd.Flags().StringVar(&deployToken, "token", "", "Access token for private repositories")
	deployCmd.Flags().StringVarP(&deployBranch, "branch", "b", "", "Branch to deploy (default: main)")
	deployCmd.Flags().StringVarP(&deploySSHUser, "user", "u", "", "Remote SSH username")
	deployCmd.Flags().StringVar(&deployHost, "host", "", "Server address")
	deployCmd.Flags().IntVar(&deploySSHPort, "ssh-port", 0, "SSH port (default: 22)")
	deployCmd.Flags().StringVarP(&deployKeyPath, "key", "k", "", "SSH private key path")
	deployCmd.Flags().IntVarP(&deployAppPort, "port", "p", 0, "Container port")
	deployCmd.Flags().StringVar(&deployWorkDir, "workdir", ".", "Directory where repositories are cloned")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	start := time.Now()
	runLog, err := logging.NewRunLog(".", start)
	if err != nil {
		return err
	}
	defer runLog.Close()

	PrintVerbose("Logging to %s", runLog.Path())

	params, err := collectParams()
	if err != nil {
		runLog.WithError(err).Error("parameter collection failed")
		return err
	}

	if err := runPipeline(cmd.Context(), params, runLog); err != nil {
		runLog.WithError(err).Error("deployment failed")
		return err
	}

	runLog.Info("deployment completed")
	PrintSuccess("Deployment complete. Application available at http://%s/", params.Host)
	return nil
}

// collectParams assembles deployment parameters from flags, the shipit.yaml
// defaults file, SHIPIT_* environment variables, the saved server registry,
// and finally interactive prompts. The first invalid or missing required
// value is fatal; there are no retries.
func collectParams() (*config.Params, error) {
	params := &config.Params{
		RepoURL: deployRepoURL,
		Token:   deployToken,
		Branch:  deployBranch,
		SSHUser: deploySSHUser,
		Host:    deployHost,
		SSHPort: deploySSHPort,
		KeyPath: deployKeyPath,
		AppPort: deployAppPort,
	}

	defaults, err := config.LoadDefaults()
	if err != nil {
		return nil, err
	}
	params.Merge(defaults)

	if deployServer != "" {
		if err := security.ValidateServerName(deployServer); err != nil {
			return nil, fmt.Errorf("invalid server name: %w", err)
		}
		globalCfg, err := config.LoadGlobalConfig()
		if err != nil {
			return nil, err
		}
		srv, err := globalCfg.GetServer(deployServer)
		if err != nil {
			return nil, err
		}
		params.Merge(&config.Params{
			SSHUser: srv.User,
			Host:    srv.Host,
			SSHPort: srv.Port,
			KeyPath: srv.KeyPath,
		})
	}

	if IsInteractive() {
		if err := promptMissing(params); err != nil {
			return nil, err
		}
	}

	if params.Branch == "" {
		params.Branch = constants.DefaultBranch
	}
	if params.SSHPort == 0 {
		params.SSHPort = constants.DefaultSSHPort
	}

	if errs := config.ValidateParams(params); errs.HasErrors() {
		return nil, fmt.Errorf("invalid deployment parameters: %w", errs)
	}

	return params, nil
}

// promptMissing asks, in order, for every parameter still unset. The first
// empty required answer is fatal right away: later prompts never run.
func promptMissing(params *config.Params) error {
	var err error

	if params.RepoURL == "" {
		if params.RepoURL, err = PromptRequired("Repository URL"); err != nil {
			return err
		}
	}
	if params.Token == "" {
		if params.Token, err = PromptSecret("Access token"); err != nil {
			return err
		}
		if params.Token == "" {
			return fmt.Errorf("Access token is required")
		}
	}
	if params.Branch == "" {
		if params.Branch, err = PromptString("Branch", constants.DefaultBranch); err != nil {
			return err
		}
	}
	if params.SSHUser == "" {
		if params.SSHUser, err = PromptRequired("SSH username"); err != nil {
			return err
		}
	}
	if params.Host == "" {
		if params.Host, err = PromptRequired("Server address"); err != nil {
			return err
		}
	}
	if params.KeyPath == "" {
		if params.KeyPath, err = PromptString("SSH key path", defaultKeyPath()); err != nil {
			return err
		}
		if params.KeyPath == "" {
			return fmt.Errorf("SSH key path is required")
		}
	}
	if params.AppPort == 0 {
		if params.AppPort, err = PromptPort("Container port", 0); err != nil {
			return err
		}
	}

	return nil
}

// defaultKeyPath suggests the best usable key found in ~/.ssh.
func defaultKeyPath() string {
	keys, err := ssh.DiscoverKeys()
	if err != nil {
		return ""
	}
	for _, key := range keys {
		if !key.IsEncrypted {
			return key.Path
		}
	}
	return ""
}

// runPipeline executes the forward-only deployment chain. Stages marked as
// tolerated inside the lower layers are the only ones allowed to fail.
func runPipeline(ctx context.Context, params *config.Params, runLog *logging.RunLog) error {
	step := func(msg string, args ...interface{}) {
		PrintInfo(msg, args...)
		runLog.Infof(msg, args...)
	}

	repoName, err := gitrepo.DeriveName(params.RepoURL)
	if err != nil {
		return err
	}

	// Stage 1: local repository acquisition
	step("Acquiring repository %s (branch %s)...", repoName, params.Branch)
	acquirer := &gitrepo.Acquirer{BaseDir: deployWorkDir}
	localDir, err := acquirer.Acquire(ctx, params.RepoURL, params.Token, params.Branch)
	if err != nil {
		return err
	}

	// Stage 2: deploy-mode detection, before anything touches the network
	mode, err := gitrepo.DetectMode(localDir)
	if err != nil {
		return err
	}
	step("Deploy mode: %s", mode)

	if err := ctx.Err(); err != nil {
		return err
	}

	// Stage 3: connectivity probe
	step("Connecting to %s@%s:%d...", params.SSHUser, params.Host, params.SSHPort)
	client := ssh.NewClient(params.Host, params.SSHUser, params.SSHPort, params.KeyPath)
	if err := client.Connect(); err != nil {
		return err
	}
	defer client.Close()

	if err := client.Probe(); err != nil {
		return err
	}
	step("SSH connectivity verified")

	// Stage 4: remote environment preparation
	step("Preparing remote environment (Docker, Compose, Nginx)...")
	preparer, err := provision.NewPreparer(client, params.SSHUser, installOutput())
	if err != nil {
		return err
	}
	if err := preparer.Prepare(); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	// Stage 5: file synchronization
	remoteDir := constants.RemoteAppDir(params.SSHUser, repoName)
	step("Syncing files to %s...", remoteDir)
	if err := client.SyncDirectory(localDir, remoteDir, []string{".git"}); err != nil {
		return fmt.Errorf("file sync failed: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	// Stage 6: remote deployment
	orch, err := deploy.NewOrchestrator(client, repoName, mode, params.AppPort, remoteDir, installOutput())
	if err != nil {
		return err
	}
	orch.OnMessage(func(msg string) { step("%s", msg) })
	if err := orch.DeployContainers(); err != nil {
		return err
	}

	// Stage 7: reverse-proxy configuration
	if err := orch.ConfigureProxy(); err != nil {
		return err
	}
	step("Reverse proxy configured: %s -> localhost:%d", constants.SiteConfigPath(repoName), params.AppPort)

	// Stage 8: post-deployment validation (best effort)
	validator := deploy.NewValidator(client, params.AppPort)
	validator.OnMessage(func(msg string) { step("%s", msg) })
	validator.OnWarning(func(msg string) {
		PrintWarning("%s", msg)
		runLog.Warn(msg)
	})
	if err := validator.Validate(); err != nil {
		return err
	}

	return nil
}

// installOutput returns where streamed remote output goes: the terminal in
// verbose mode, nowhere otherwise.
func installOutput() io.Writer {
	if IsVerbose() {
		return os.Stdout
	}
	return io.Discard
}
