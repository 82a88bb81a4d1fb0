package testutils

import (
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/aretw0/todomvc"
	"github.com/aretw0/todomvc/internal/logging"
	"github.com/aretw0/todomvc/pkg/ids"
	"github.com/stretchr/testify/require"
)

// SetupTestRepo creates a temporary directory and initializes a Loam repository in it.
// Without options the repository is unversioned and lives in the temp dir itself.
// It fails the test immediately on error.
func SetupTestRepo(t *testing.T, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	if len(opts) == 0 {
		opts = []loam.Option{loam.WithVersioning(false), loam.WithForceTemp(false)}
	}
	repo, err := loam.Init(absPath, opts...)
	require.NoError(t, err, "Failed to init loam repo")

	return absPath, repo
}

// NewApp builds an in-memory App with predictable ids (t1, t2, ...) and no logging.
func NewApp(t *testing.T, opts ...todomvc.Option) *todomvc.App {
	t.Helper()

	base := []todomvc.Option{
		todomvc.WithIDGenerator(ids.NewSequence("t")),
		todomvc.WithLogger(logging.NewNop()),
	}
	app, err := todomvc.New(append(base, opts...)...)
	require.NoError(t, err)
	return app
}
