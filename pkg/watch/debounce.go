package watch

import (
	"sync"
	"time"
)

// Debouncer batches change notifications: the flush callback fires once the
// window has passed without further events, or when the batch hits its cap.
type Debouncer struct {
	pending map[string]struct{}
	timer   *time.Timer
	onFlush func(paths []string)
	window  time.Duration
	maxSize int
	mu      sync.Mutex
}

// NewDebouncer creates a debouncer with the given quiet window and batch cap
func NewDebouncer(window time.Duration, maxSize int, onFlush func(paths []string)) *Debouncer {
	return &Debouncer{
		pending: make(map[string]struct{}),
		window:  window,
		maxSize: maxSize,
		onFlush: onFlush,
	}
}

// Add records a changed path and (re)arms the flush timer
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[path] = struct{}{}

	if d.maxSize > 0 && len(d.pending) >= d.maxSize {
		d.flushLocked()
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.Flush)
}

// Flush delivers the pending batch immediately
func (d *Debouncer) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.flushLocked()
}

func (d *Debouncer) flushLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if len(d.pending) == 0 {
		return
	}

	paths := make([]string, 0, len(d.pending))
	for p := range d.pending {
		paths = append(paths, p)
	}
	d.pending = make(map[string]struct{})

	go d.onFlush(paths)
}

// Stop cancels any armed timer without flushing
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
