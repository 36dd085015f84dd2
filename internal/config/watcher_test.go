package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := writeFile(t, "fx.yaml", "count: 12\n")
	reload := func() (Config, error) { return Build(path, Flags{}) }

	cfg, err := reload()
	require.NoError(t, err)
	store := NewStore(cfg)

	w, err := NewWatcher(path, reload, store, nil)
	require.NoError(t, err)
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	require.NoError(t, os.WriteFile(path, []byte("count: 33\n"), 0644))
	assert.Eventually(t, func() bool { return store.Get().Count == 33 }, 5*time.Second, 10*time.Millisecond)

	// an invalid edit is ignored
	require.NoError(t, os.WriteFile(path, []byte("count: 999\n"), 0644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 33, store.Get().Count)

	w.Stop()
	w.Stop()
}
