// Package eventbus carries daemon occurrences (rollovers, dispatches,
// reminders, backups) from the engine and the poller to observers,
// without either side knowing the other.
package eventbus

import (
	"sync"
	"time"
)

// Event is one daemon occurrence. Data holds the payload type matching
// Type: TaskRolledOver, ActionResult, ReminderFired or BackupWritten.
type Event struct {
	Type string
	Time time.Time
	Data any
}

// Bus is an in-process fanout. Publish never blocks: a subscriber that
// falls behind loses events rather than stalling the engine or a
// poller pass.
type Bus struct {
	mu   sync.RWMutex
	seq  uint64
	subs map[uint64]chan Event
}

func New() *Bus {
	return &Bus{subs: map[uint64]chan Event{}}
}

func (b *Bus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe returns a buffered event channel and a cancel func that
// closes it. Sends happen under the read lock and the close under the
// write lock, so a send can never race the close.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	b.seq++
	id := b.seq
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			close(ch)
			b.mu.Unlock()
		})
	}
}
