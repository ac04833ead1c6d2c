package action

import (
	"context"
	"errors"
	"path/filepath"

	"linkflowd/internal/model"
	logx "linkflowd/pkg/logx"
)

// URLOpener hands a URL to the host environment's URL-handling facility.
type URLOpener interface {
	Open(ctx context.Context, url string) error
}

// ScriptRunner launches a local script and reports whether the launch
// succeeded. It must not wait for the script to finish.
type ScriptRunner interface {
	Run(ctx context.Context, path string) error
}

// Dispatcher invokes resolved targets through injected executor
// capabilities. It performs no retries; a failed action needs a new user- or
// poller-triggered attempt.
type Dispatcher struct {
	opener URLOpener
	runner ScriptRunner
	log    logx.Logger
}

func NewDispatcher(opener URLOpener, runner ScriptRunner, log logx.Logger) *Dispatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Dispatcher{opener: opener, runner: runner, log: log}
}

// DispatchBinding resolves and dispatches in one step, returning the
// resolved target alongside any error so callers can report what fired.
func (d *Dispatcher) DispatchBinding(ctx context.Context, s model.Scheme, b model.ActionBinding) (Target, error) {
	t, err := Resolve(s, b)
	if err != nil {
		return Target{}, &DispatchError{Reason: ReasonBadBinding, SchemeID: s.ID, Err: err}
	}
	return t, d.Dispatch(ctx, s.ID, t)
}

// Dispatch executes a resolved target. Any failure comes back as a typed
// *DispatchError, never silently.
func (d *Dispatcher) Dispatch(ctx context.Context, schemeID string, t Target) error {
	if t.Value == "" {
		return &DispatchError{Reason: ReasonBadBinding, SchemeID: schemeID, Err: ErrEmptyTarget}
	}

	switch t.Kind {
	case model.SchemeScript:
		// Relative paths never reach the host shell.
		if !filepath.IsAbs(t.Value) {
			return &DispatchError{Reason: ReasonExecutorRejected, SchemeID: schemeID,
				Err: errors.New("script path is not absolute: " + t.Value)}
		}
		if err := d.runner.Run(ctx, t.Value); err != nil {
			return &DispatchError{Reason: ReasonExecutorRejected, SchemeID: schemeID, Err: err}
		}
		d.log.Debug("script launched", logx.String("path", t.Value))
		return nil
	default:
		if err := d.opener.Open(ctx, t.Value); err != nil {
			return &DispatchError{Reason: ReasonExecutorRejected, SchemeID: schemeID, Err: err}
		}
		d.log.Debug("url opened", logx.String("url", t.Value))
		return nil
	}
}
