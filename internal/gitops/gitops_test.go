package gitops

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) Repo {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	return Repo{Dir: t.TempDir(), AuthorName: "Test Author", AuthorEmail: "test@example.com"}
}

func TestInit(t *testing.T) {
	r := newRepo(t)
	assert.False(t, r.IsRepo())

	require.NoError(t, r.Init(context.Background()))
	assert.True(t, r.IsRepo())

	ignore, err := os.ReadFile(filepath.Join(r.Dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(ignore), "/import/*.csv")
}

func TestCommit(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	require.NoError(t, r.Init(ctx))
	require.NoError(t, os.WriteFile(filepath.Join(r.Dir, "books.yaml"), []byte("business: {}\n"), 0o644))

	hash, err := r.Commit(ctx, "init: books")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	out, err := exec.Command("git", "-C", r.Dir, "log", "--format=%s|%an <%ae>", "-1").Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "init: books|Test Author <test@example.com>")

	// Nothing changed since.
	hash, err = r.Commit(ctx, "noop")
	require.NoError(t, err)
	assert.Empty(t, hash)
}
