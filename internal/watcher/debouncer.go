package watcher

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

type debouncer struct {
	delay    time.Duration
	logger   *slog.Logger
	events   map[string]FileChangeEvent
	timer    *time.Timer
	mutex    sync.Mutex
	stopChan chan struct{}
}

func newDebouncer(delay time.Duration, logger *slog.Logger) *debouncer {
	return &debouncer{
		delay:    delay,
		logger:   logger,
		events:   make(map[string]FileChangeEvent),
		stopChan: make(chan struct{}),
	}
}

func (d *debouncer) add(event FileChangeEvent, handler FileChangeHandler) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	select {
	case <-d.stopChan:
		return
	default:
	}

	d.events[event.Path] = event
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.flush(handler)
	})
}

// flush hands the batched paths to handler in sorted order. The handler runs
// outside the lock so new events keep batching while it works.
func (d *debouncer) flush(handler FileChangeHandler) {
	d.mutex.Lock()
	if len(d.events) == 0 {
		d.mutex.Unlock()
		return
	}
	changedFiles := make([]string, 0, len(d.events))
	for path := range d.events {
		changedFiles = append(changedFiles, path)
	}
	d.events = make(map[string]FileChangeEvent)
	d.mutex.Unlock()

	sort.Strings(changedFiles)
	if err := handler(changedFiles); err != nil {
		d.logger.Error("change handler failed", "files", len(changedFiles), "error", err)
	}
}

func (d *debouncer) stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	close(d.stopChan)
}
