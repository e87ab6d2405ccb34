package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	Version, Commit, Date = "v1.2.3", "abc123", "2025-01-01"
	t.Cleanup(func() { Version, Commit, Date = "dev", "none", "unknown" })

	assert.Equal(t, "v1.2.3 (commit: abc123, built: 2025-01-01)", String())
}
