// Package gitops versions a books directory with git, so that every change
// to the journal and sub-ledgers is an auditable commit.
package gitops

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Repo is a books directory under git.
type Repo struct {
	Dir         string
	AuthorName  string
	AuthorEmail string
}

// IsRepo reports whether the directory has been initialized.
func (r Repo) IsRepo() bool {
	_, err := os.Stat(filepath.Join(r.Dir, ".git"))
	return err == nil
}

// Init runs git init and writes a .gitignore that keeps the import inbox
// out of history.
func (r Repo) Init(ctx context.Context) error {
	if _, err := r.git(ctx, "init", "--quiet"); err != nil {
		return err
	}
	ignore := filepath.Join(r.Dir, ".gitignore")
	if _, err := os.Stat(ignore); os.IsNotExist(err) {
		if err := os.WriteFile(ignore, []byte("/import/*.csv\n"), 0o644); err != nil {
			return fmt.Errorf("writing .gitignore: %w", err)
		}
	}
	return nil
}

// Commit stages everything and commits it. It returns the short hash, or ""
// when there was nothing to commit.
func (r Repo) Commit(ctx context.Context, message string) (string, error) {
	if _, err := r.git(ctx, "add", "-A"); err != nil {
		return "", err
	}
	status, err := r.git(ctx, "status", "--porcelain")
	if err != nil {
		return "", err
	}
	if status == "" {
		return "", nil
	}

	author := fmt.Sprintf("%s <%s>", r.AuthorName, r.AuthorEmail)
	if _, err := r.git(ctx, "commit", "--quiet", "-m", message, "--author", author); err != nil {
		return "", err
	}
	return r.git(ctx, "rev-parse", "--short", "HEAD")
}

func (r Repo) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir
	// Commits must work on machines without a global git identity.
	cmd.Env = append(os.Environ(),
		"GIT_COMMITTER_NAME="+r.AuthorName,
		"GIT_COMMITTER_EMAIL="+r.AuthorEmail,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(stderr.String()), err)
	}
	return strings.TrimSpace(string(out)), nil
}
