package source

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event reports that the collection behind Endpoint changed on disk. An
// empty Endpoint means every collection should be re-fetched.
type Event struct {
	Endpoint string
}

// Watcher is a source that reports changes to its collections.
type Watcher interface {
	Watch(ctx context.Context) (<-chan Event, error)
}

var _ Watcher = (*Files)(nil)

// Watch streams change events for the fixture directory until ctx is
// cancelled. Bursts of writes are coalesced. Callers should drain the
// channel; events are dropped rather than blocking the watcher.
func (f *Files) Watch(ctx context.Context) (<-chan Event, error) {
	if f.Dir == "" {
		return nil, fmt.Errorf("source: fixture directory unknown")
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("source: ensure fixture directory: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("source: create watcher: %w", err)
	}
	if err := watcher.Add(f.Dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("source: watch %s: %w", f.Dir, err)
	}

	events := make(chan Event, 16)
	go func() {
		defer close(events)
		defer watcher.Close()

		var sendMu sync.Mutex
		done := false
		send := func(ev Event) {
			sendMu.Lock()
			defer sendMu.Unlock()
			if done {
				return
			}
			select {
			case events <- ev:
			default:
			}
		}
		throttle := newEventThrottle(100 * time.Millisecond)
		defer func() {
			throttle.Stop()
			sendMu.Lock()
			done = true
			sendMu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				f.logger().Debug("fixture watcher", "err", err)
				throttle.Enqueue(Event{}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				endpoint := f.endpointFor(evt.Name)
				if endpoint == "" {
					continue
				}
				throttle.Enqueue(Event{Endpoint: endpoint}, send)
			}
		}
	}()
	return events, nil
}

// eventThrottle coalesces rapid change notifications so a view re-fetches
// once per burst of writes.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[string]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[ev.Endpoint] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[string]struct{})
	t.timer = nil
	t.mu.Unlock()

	// A full refresh subsumes the per-endpoint ones.
	if _, all := pending[""]; all {
		send(Event{})
		return
	}
	for endpoint := range pending {
		send(Event{Endpoint: endpoint})
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
