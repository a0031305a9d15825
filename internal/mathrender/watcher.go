package mathrender

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/nano/internal/domain"
	"github.com/pscheid92/nano/internal/metrics"
)

// Target is the rendered reply that follows edits of one source message.
type Target struct {
	ChannelID string
	ReplyID   string
	Author    domain.User
}

type watch struct {
	target Target
	timer  clockwork.Timer
}

// EditWatcher remembers recently rendered messages so edits to them can
// re-render their reply. Entries expire after ttl on the given clock.
type EditWatcher struct {
	clock clockwork.Clock
	ttl   time.Duration

	mu      sync.Mutex
	watches map[string]*watch
}

func NewEditWatcher(clock clockwork.Clock, ttl time.Duration) *EditWatcher {
	return &EditWatcher{
		clock:   clock,
		ttl:     ttl,
		watches: make(map[string]*watch),
	}
}

// Watch starts following edits of messageID. Watching the same message
// again replaces the target and restarts the timer.
func (w *EditWatcher) Watch(messageID string, target Target) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if old, ok := w.watches[messageID]; ok {
		old.timer.Stop()
	}

	entry := &watch{target: target}
	entry.timer = w.clock.AfterFunc(w.ttl, func() { w.expire(messageID, entry) })
	w.watches[messageID] = entry
	metrics.EditWatchersActive.Set(float64(len(w.watches)))
}

// Lookup returns the reply that follows messageID, if still watched.
func (w *EditWatcher) Lookup(messageID string) (Target, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	entry, ok := w.watches[messageID]
	if !ok {
		return Target{}, false
	}
	return entry.target, true
}

// Forget stops following messageID, e.g. when it was deleted.
func (w *EditWatcher) Forget(messageID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if entry, ok := w.watches[messageID]; ok {
		entry.timer.Stop()
		delete(w.watches, messageID)
		metrics.EditWatchersActive.Set(float64(len(w.watches)))
	}
}

func (w *EditWatcher) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watches)
}

// Stop cancels every timer.
func (w *EditWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for id, entry := range w.watches {
		entry.timer.Stop()
		delete(w.watches, id)
	}
	metrics.EditWatchersActive.Set(0)
}

func (w *EditWatcher) expire(messageID string, entry *watch) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// a later Watch may have replaced this entry
	if w.watches[messageID] != entry {
		return
	}
	delete(w.watches, messageID)
	metrics.EditWatchersActive.Set(float64(len(w.watches)))
}
