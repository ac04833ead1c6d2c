// Package engine implements the command surface of the daemon: task,
// list and scheme management, schedule normalization on edit, recurring
// rollover on completion, and manual action dispatch.
package engine

import (
	"time"

	"github.com/google/uuid"

	"linkflowd/internal/action"
	"linkflowd/internal/eventbus"
	"linkflowd/internal/store"
	logx "linkflowd/pkg/logx"
)

type Engine struct {
	store      store.Store
	dispatcher *action.Dispatcher
	bus        *eventbus.Bus
	log        logx.Logger

	// newID is swappable in tests.
	newID func(prefix string) string
}

func New(st store.Store, d *action.Dispatcher, bus *eventbus.Bus, log logx.Logger) *Engine {
	return &Engine{
		store:      st,
		dispatcher: d,
		bus:        bus,
		log:        log.With(logx.String("comp", "engine")),
		newID:      NewID,
	}
}

// NewID returns a prefixed random identifier, e.g. "task_4f9c...".
func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

func (e *Engine) publish(typ string, data any) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(eventbus.Event{Type: typ, Time: time.Now(), Data: data})
}
