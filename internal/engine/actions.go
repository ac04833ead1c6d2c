package engine

import (
	"context"
	"errors"
	"fmt"

	"linkflowd/internal/action"
	"linkflowd/internal/eventbus"
	"linkflowd/internal/store"
)

// RunAction dispatches one of a task's bindings on demand. Unlike the
// poller, manual runs fire both url and script kinds and surface the
// error to the caller.
func (e *Engine) RunAction(ctx context.Context, taskID string, position int) error {
	t, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if position < 0 || position >= len(t.Actions) {
		return fmt.Errorf("engine: task %s has no action at position %d", taskID, position)
	}
	binding := t.Actions[position]

	scheme, err := e.store.GetScheme(ctx, binding.SchemeID)
	if errors.Is(err, store.ErrNotFound) {
		derr := &action.DispatchError{
			Reason:   action.ReasonSchemeNotFound,
			SchemeID: binding.SchemeID,
			Err:      err,
		}
		e.publish(eventbus.TypeActionFailed, eventbus.ActionResult{
			TaskID:   taskID,
			SchemeID: binding.SchemeID,
			Manual:   true,
			Error:    derr.Error(),
		})
		return derr
	}
	if err != nil {
		return err
	}

	tgt, derr := e.dispatcher.DispatchBinding(ctx, scheme, binding)
	res := eventbus.ActionResult{
		TaskID:   taskID,
		SchemeID: scheme.ID,
		Kind:     string(scheme.Kind),
		Target:   tgt.Value,
		Manual:   true,
	}
	if derr != nil {
		res.Error = derr.Error()
		e.publish(eventbus.TypeActionFailed, res)
		return derr
	}
	e.publish(eventbus.TypeActionDispatched, res)
	return nil
}
