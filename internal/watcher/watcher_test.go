package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_CancelledContextReturns(t *testing.T) {
	t.Parallel()

	w, err := New(t.TempDir(), func(context.Context) {})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = w.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_MissingRoot(t *testing.T) {
	t.Parallel()

	w, err := New(filepath.Join(t.TempDir(), "gone"), func(context.Context) {})
	require.NoError(t, err)

	err = w.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seeding watches")
}

func TestRun_FiresAfterChange(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "proj", "src"), 0o755))

	var fired atomic.Int32
	w, err := New(root, func(context.Context) { fired.Add(1) })
	require.NoError(t, err)
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher a moment to seed its watches, then touch a file.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(root, "proj", "src", "flow.py"), []byte("x"), 0o644))

	require.Eventually(t, func() bool {
		return fired.Load() >= 1
	}, 3*time.Second, 20*time.Millisecond, "callback should fire after the tree settles")

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
