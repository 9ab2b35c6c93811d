package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jscheck/internal/config"
)

var quiet = slog.New(slog.DiscardHandler)

func TestDebouncer_BatchesAndSorts(t *testing.T) {
	d := newDebouncer(20*time.Millisecond, quiet)
	defer d.stop()

	var mu sync.Mutex
	var batches [][]string
	handler := func(files []string) error {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, files)
		return nil
	}

	d.add(FileChangeEvent{Path: "b.js"}, handler)
	d.add(FileChangeEvent{Path: "a.js"}, handler)
	d.add(FileChangeEvent{Path: "b.js"}, handler)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a.js", "b.js"}, batches[0])
}

func TestDebouncer_IgnoresEventsAfterStop(t *testing.T) {
	d := newDebouncer(time.Millisecond, quiet)
	d.stop()

	called := false
	d.add(FileChangeEvent{Path: "a.js"}, func([]string) error {
		called = true
		return nil
	})
	time.Sleep(20 * time.Millisecond)
	assert.False(t, called)
}

func TestShouldSkip(t *testing.T) {
	fw := &FileWatcher{config: config.DefaultConfig(), logger: quiet}

	assert.True(t, fw.shouldSkipDir("web/node_modules"))
	assert.True(t, fw.shouldSkipDir("project/dist"))
	assert.False(t, fw.shouldSkipDir("src/components"))

	assert.True(t, fw.shouldSkipFile("src/.app.js"))
	assert.True(t, fw.shouldSkipFile("vendor.min.js"))
	assert.True(t, fw.shouldSkipFile("app.js~"))
	assert.False(t, fw.shouldSkipFile("src/app.js"))
}


func TestFileWatcher_ReportsChangedSources(t *testing.T) {
	dir := t.TempDir()

	fw, err := NewFileWatcher(config.DefaultConfig(), quiet)
	require.NoError(t, err)
	defer fw.Close()

	changed := make(chan []string, 4)
	require.NoError(t, fw.Watch([]string{dir}, func(files []string) error {
		changed <- files
		return nil
	}))
	assert.Equal(t, []string{dir}, fw.GetWatchedPaths())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("use(1);\n"), 0644))

	select {
	case files := <-changed:
		assert.Equal(t, []string{filepath.Join(dir, "app.js")}, files)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}
