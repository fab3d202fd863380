// Package gitrepo acquires the repository to deploy: clone on first run,
// update in place afterwards, always ending up on the requested branch.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/shipit-cli/shipit/internal/security"
)

// Acquirer clones or updates repositories under BaseDir.
type Acquirer struct {
	BaseDir string
}

// DeriveName returns the repository name from a clone URL: the basename of
// the URL path with any .git suffix stripped.
func DeriveName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid repository URL: %w", err)
	}

	name := path.Base(strings.TrimSuffix(u.Path, "/"))
	name = strings.TrimSuffix(name, ".git")

	if err := security.ValidateRepoName(name); err != nil {
		return "", fmt.Errorf("cannot derive repository name from %q: %w", security.MaskToken(rawURL, ""), err)
	}
	return name, nil
}

// Acquire makes sure a checkout of repoURL on the given branch exists under
// BaseDir and returns its path. An existing clone is updated in place; a
// missing branch fails the whole run.
func (a *Acquirer) Acquire(ctx context.Context, repoURL, token, branch string) (string, error) {
	name, err := DeriveName(repoURL)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(a.BaseDir, name)
	auth := tokenAuth(token)

	if _, err := os.Stat(filepath.Join(dir, git.GitDirName)); err == nil {
		if err := a.update(ctx, dir, branch, auth); err != nil {
			return "", err
		}
		return dir, nil
	}

	if err := a.clone(ctx, dir, repoURL, branch, auth); err != nil {
		return "", err
	}
	return dir, nil
}

// tokenAuth builds HTTP basic auth carrying the access token, the transport
// equivalent of embedding the token in the clone URL.
func tokenAuth(token string) *githttp.BasicAuth {
	if token == "" {
		return nil
	}
	return &githttp.BasicAuth{
		Username: "x-access-token",
		Password: token,
	}
}

func (a *Acquirer) clone(ctx context.Context, dir, repoURL, branch string, auth *githttp.BasicAuth) error {
	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:           repoURL,
		Auth:          auth,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  true,
	})
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) || errors.Is(err, git.NoMatchingRefSpecError{}) {
			return fmt.Errorf("branch %q does not exist in %s", branch, security.MaskToken(repoURL, ""))
		}
		return fmt.Errorf("failed to clone repository: %w", err)
	}
	return nil
}

func (a *Acquirer) update(ctx context.Context, dir, branch string, auth *githttp.BasicAuth) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("failed to open existing repository: %w", err)
	}

	if err := repo.FetchContext(ctx, &git.FetchOptions{Auth: auth}); err != nil &&
		!errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to fetch updates: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	branchRef := plumbing.NewBranchReferenceName(branch)
	if err := worktree.Checkout(&git.CheckoutOptions{Branch: branchRef, Force: true}); err != nil {
		// No local branch yet: create one from the remote-tracking ref.
		remoteRef, refErr := repo.Reference(plumbing.NewRemoteReferenceName(git.DefaultRemoteName, branch), true)
		if refErr != nil {
			return fmt.Errorf("branch %q does not exist: %w", branch, err)
		}
		if err := worktree.Checkout(&git.CheckoutOptions{
			Hash:   remoteRef.Hash(),
			Branch: branchRef,
			Create: true,
		}); err != nil {
			return fmt.Errorf("failed to checkout branch %q: %w", branch, err)
		}
	}

	if err := worktree.PullContext(ctx, &git.PullOptions{
		Auth:          auth,
		ReferenceName: branchRef,
	}); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to pull latest changes: %w", err)
	}

	return nil
}
