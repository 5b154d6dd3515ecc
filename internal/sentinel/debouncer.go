package sentinel

import (
	"sort"
	"sync"
	"time"
)

// Debouncer coalesces events per path and hands them over once no new event
// arrived for the window, or as soon as maxBatch distinct paths are pending.
type Debouncer struct {
	window   time.Duration
	maxBatch int
	onFlush  func([]FileEvent)

	mu      sync.Mutex
	pending map[string]FileEvent
	timer   *time.Timer
	stopped bool
}

func NewDebouncer(window time.Duration, maxBatch int, onFlush func([]FileEvent)) *Debouncer {
	if maxBatch <= 0 {
		maxBatch = 1
	}
	return &Debouncer{
		window:   window,
		maxBatch: maxBatch,
		onFlush:  onFlush,
		pending:  make(map[string]FileEvent),
	}
}

func (d *Debouncer) Add(event FileEvent) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}

	d.pending[event.Path] = event
	if len(d.pending) >= d.maxBatch {
		d.emit(d.drainLocked())
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
	d.mu.Unlock()
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.emit(d.drainLocked())
}

// drainLocked empties the pending set. The caller holds mu.
func (d *Debouncer) drainLocked() []FileEvent {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	events := make([]FileEvent, 0, len(d.pending))
	for _, e := range d.pending {
		events = append(events, e)
	}
	d.pending = make(map[string]FileEvent)
	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })
	return events
}

// emit releases mu before calling onFlush.
func (d *Debouncer) emit(events []FileEvent) {
	d.mu.Unlock()
	if len(events) > 0 && d.onFlush != nil {
		d.onFlush(events)
	}
}

func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stop flushes whatever is pending and ignores later events.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	d.emit(d.drainLocked())
}
