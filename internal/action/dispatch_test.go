package action

import (
	"context"
	"errors"
	"testing"

	"linkflowd/internal/model"
	logx "linkflowd/pkg/logx"
)

type fakeOpener struct {
	urls []string
	err  error
}

func (f *fakeOpener) Open(_ context.Context, url string) error {
	f.urls = append(f.urls, url)
	return f.err
}

type fakeRunner struct {
	paths []string
	err   error
}

func (f *fakeRunner) Run(_ context.Context, path string) error {
	f.paths = append(f.paths, path)
	return f.err
}

func TestDispatchURL(t *testing.T) {
	op := &fakeOpener{}
	d := NewDispatcher(op, &fakeRunner{}, logx.Nop())
	err := d.Dispatch(context.Background(), "s1", Target{Kind: model.SchemeURL, Value: "tel://5551234"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(op.urls) != 1 || op.urls[0] != "tel://5551234" {
		t.Fatalf("opener got %v", op.urls)
	}
}

func TestDispatchScript(t *testing.T) {
	run := &fakeRunner{}
	d := NewDispatcher(&fakeOpener{}, run, logx.Nop())
	err := d.Dispatch(context.Background(), "s1", Target{Kind: model.SchemeScript, Value: "/opt/sync.sh"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(run.paths) != 1 || run.paths[0] != "/opt/sync.sh" {
		t.Fatalf("runner got %v", run.paths)
	}
}

func TestDispatchRejectsRelativeScriptPath(t *testing.T) {
	run := &fakeRunner{}
	d := NewDispatcher(&fakeOpener{}, run, logx.Nop())
	err := d.Dispatch(context.Background(), "s1", Target{Kind: model.SchemeScript, Value: "scripts/x.sh"})
	var de *DispatchError
	if !errors.As(err, &de) || de.Reason != ReasonExecutorRejected {
		t.Fatalf("expected executor-rejected, got %v", err)
	}
	if len(run.paths) != 0 {
		t.Fatal("runner must not be called for a relative path")
	}
}

func TestDispatchExecutorFailure(t *testing.T) {
	boom := errors.New("boom")
	d := NewDispatcher(&fakeOpener{err: boom}, &fakeRunner{}, logx.Nop())
	err := d.Dispatch(context.Background(), "s1", Target{Kind: model.SchemeURL, Value: "tel://1"})
	var de *DispatchError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DispatchError, got %v", err)
	}
	if de.Reason != ReasonExecutorRejected || !errors.Is(de, boom) {
		t.Fatalf("got %+v", de)
	}
}

func TestDispatchBindingBadBinding(t *testing.T) {
	d := NewDispatcher(&fakeOpener{}, &fakeRunner{}, logx.Nop())
	s := model.Scheme{ID: "s1", Name: "s1", Template: "x://{param}", Kind: model.SchemeURL}
	_, err := d.DispatchBinding(context.Background(), s, model.ActionBinding{SchemeID: "s1"})
	var de *DispatchError
	if !errors.As(err, &de) || de.Reason != ReasonBadBinding {
		t.Fatalf("expected bad-binding, got %v", err)
	}
	var ae *ArityError
	if !errors.As(err, &ae) {
		t.Fatalf("expected wrapped *ArityError, got %v", err)
	}
}
