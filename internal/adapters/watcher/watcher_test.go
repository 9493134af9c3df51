package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

func startWatcher(t *testing.T, root string, opts ...Option) *Watcher {
	t.Helper()
	opts = append([]Option{
		WithDebounce(30 * time.Millisecond),
		WithRenameWindow(60 * time.Millisecond),
	}, opts...)
	w, err := New(root, opts...)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(w.Stop)
	return w
}

// waitFor skips events until one matches kind and id
func waitFor(t *testing.T, w *Watcher, kind Kind, id string) Event {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case ev, ok := <-w.Events():
			require.True(t, ok, "event channel closed")
			if ev.Kind == kind && ev.ID == id {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s %q", kind, id)
		}
	}
}

// drain collects events until the channel is quiet for d
func drain(w *Watcher, d time.Duration) []Event {
	var out []Event
	for {
		select {
		case ev := <-w.Events():
			out = append(out, ev)
		case <-time.After(d):
			return out
		}
	}
}

func TestWatcher_CreateAndRemove(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	p := filepath.Join(root, "Alpha.md")
	require.NoError(t, os.WriteFile(p, []byte("[[Beta]]"), 0644))
	ev := waitFor(t, w, Created, "Alpha")
	assert.Equal(t, p, ev.Path)

	require.NoError(t, os.Remove(p))
	ev = waitFor(t, w, Removed, "Alpha")
	assert.Equal(t, p, ev.Path)
}

func TestWatcher_RenamePairsWithCreate(t *testing.T) {
	root := t.TempDir()
	old := filepath.Join(root, "Old.md")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0644))
	w := startWatcher(t, root)

	renamed := filepath.Join(root, "New.md")
	require.NoError(t, os.Rename(old, renamed))

	ev := waitFor(t, w, Renamed, "New")
	assert.Equal(t, "Old", ev.OldID)
	assert.Equal(t, old, ev.OldPath)
	assert.Equal(t, renamed, ev.Path)
}

func TestWatcher_MoveOutOfVaultIsRemoval(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	p := filepath.Join(root, "Leaving.md")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	w := startWatcher(t, root)

	require.NoError(t, os.Rename(p, filepath.Join(outside, "Leaving.md")))
	ev := waitFor(t, w, Removed, "Leaving")
	assert.Equal(t, p, ev.Path)
}

func TestWatcher_MoveKeepsNameAcrossDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "archive"), 0755))
	old := filepath.Join(root, "Filed.md")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0644))
	w := startWatcher(t, root)

	moved := filepath.Join(root, "archive", "Filed.md")
	require.NoError(t, os.Rename(old, moved))

	ev := waitFor(t, w, Renamed, "Filed")
	assert.Equal(t, old, ev.OldPath)
	assert.Equal(t, moved, ev.Path)
}

func TestWatcher_UnrelatedCreateDoesNotPairWithRename(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "inbox"), 0755))
	leaving := filepath.Join(root, "Leaving.md")
	require.NoError(t, os.WriteFile(leaving, []byte("x"), 0644))
	w := startWatcher(t, root)

	require.NoError(t, os.Rename(leaving, filepath.Join(outside, "Leaving.md")))
	fresh := filepath.Join(root, "inbox", "Fresh.md")
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0644))

	events := drain(w, 300*time.Millisecond)
	var kinds []string
	for _, ev := range events {
		assert.NotEqual(t, Renamed, ev.Kind, "%s %s from %s", ev.Kind, ev.ID, ev.OldID)
		kinds = append(kinds, ev.Kind.String()+" "+ev.ID)
	}
	assert.Contains(t, kinds, Created.String()+" Fresh")
	assert.Contains(t, kinds, Removed.String()+" Leaving")
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "Busy.md")
	require.NoError(t, os.WriteFile(p, []byte("0"), 0644))
	w := startWatcher(t, root, WithDebounce(100*time.Millisecond))

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_APPEND, 0644)
	require.NoError(t, err)
	for range 5 {
		_, err := f.WriteString("x")
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())

	changed := 0
	for _, ev := range drain(w, 400*time.Millisecond) {
		if ev.Kind == Changed && ev.ID == "Busy" {
			changed++
		}
	}
	assert.Equal(t, 1, changed)
}

func TestWatcher_IgnoresHiddenAndForeignFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".obsidian"), 0755))
	w := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, ".obsidian", "Cache.md"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "image.png"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Visible.md"), []byte("x"), 0644))

	for _, ev := range drain(w, 300*time.Millisecond) {
		assert.Equal(t, "Visible", ev.ID, ev.Kind.String())
	}
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	sub := filepath.Join(root, "projects")
	require.NoError(t, os.Mkdir(sub, 0755))
	waitFor(t, w, Rescan, "")

	require.NoError(t, os.WriteFile(filepath.Join(sub, "Plan.md"), []byte("x"), 0644))
	ev := waitFor(t, w, Created, "Plan")
	assert.Equal(t, filepath.Join(sub, "Plan.md"), ev.Path)
}

func TestWatcher_Lifecycle(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	assert.ErrorIs(t, w.Start(context.Background()), ErrAlreadyStarted)

	w.Stop()
	_, ok := <-w.Events()
	assert.False(t, ok, "Stop closes the event channel")
	assert.ErrorIs(t, w.Start(context.Background()), ErrStopped)
	w.Stop()
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "created", Created.String())
	assert.Equal(t, "rescan", Rescan.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
