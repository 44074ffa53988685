package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SteakFisher/arazzo-writer/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func start(t *testing.T, w *watch.Watcher) (context.CancelFunc, <-chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	select {
	case <-w.Ready():
	case err := <-done:
		cancel()
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("watcher did not start")
	}

	return cancel, done
}

func stop(t *testing.T, cancel context.CancelFunc, done <-chan error) {
	t.Helper()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_Run_Directory(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	doc := filepath.Join(dir, "pets.arazzo.yaml")
	require.NoError(t, os.WriteFile(doc, []byte("arazzo: 1.0.0\n"), 0o644))

	changed := make(chan string, 10)
	w := watch.New(func(_ context.Context, path string) {
		changed <- path
	}, []string{dir}, watch.WithDebounce(100*time.Millisecond))

	cancel, done := start(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(doc, []byte("arazzo: 1.0.1\n"), 0o644))
	}

	select {
	case path := <-changed:
		assert.Equal(t, doc, path)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case path := <-changed:
		t.Fatalf("unexpected second change for %s", path)
	case <-time.After(300 * time.Millisecond):
	}

	stop(t, cancel, done)
}

func TestWatcher_Run_SingleFile(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	doc := filepath.Join(dir, "a.arazzo.yaml")
	other := filepath.Join(dir, "b.arazzo.yaml")
	require.NoError(t, os.WriteFile(doc, []byte("arazzo: 1.0.0\n"), 0o644))

	changed := make(chan string, 10)
	w := watch.New(func(_ context.Context, path string) {
		changed <- path
	}, []string{doc}, watch.WithDebounce(50*time.Millisecond))

	cancel, done := start(t, w)

	require.NoError(t, os.WriteFile(other, []byte("arazzo: 1.0.0\n"), 0o644))
	require.NoError(t, os.WriteFile(doc, []byte("arazzo: 1.0.1\n"), 0o644))

	select {
	case path := <-changed:
		assert.Equal(t, doc, path)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	stop(t, cancel, done)
}

func TestWatcher_Run_Error(t *testing.T) {
	tests := []struct {
		name    string
		paths   []string
		wantErr string
	}{
		{name: "no paths", paths: nil, wantErr: "no paths to watch"},
		{name: "missing path", paths: []string{filepath.Join(os.TempDir(), "arazzo-writer-missing", "x.yaml")}, wantErr: "failed to watch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := watch.New(func(context.Context, string) {}, tt.paths)

			err := w.Run(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
