package action

import (
	"errors"
	"testing"

	"linkflowd/internal/model"
)

func urlScheme(id, template string) model.Scheme {
	return model.Scheme{ID: id, Name: id, Template: template, Kind: model.SchemeURL, ParamType: model.ParamString}
}

func TestResolveSinglePlaceholder(t *testing.T) {
	s := urlScheme("scheme_tel", "tel://{param}")
	got, err := Resolve(s, model.ActionBinding{SchemeID: s.ID, Params: []string{"5551234"}})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Value != "tel://5551234" || got.Kind != model.SchemeURL {
		t.Fatalf("got %+v", got)
	}
}

func TestResolveMultiplePlaceholdersLeftToRight(t *testing.T) {
	s := urlScheme("scheme_mail", "mailto:{param}?subject={param}")
	got, err := Resolve(s, model.ActionBinding{Params: []string{"a@b.c", "hello"}})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Value != "mailto:a@b.c?subject=hello" {
		t.Fatalf("got %q", got.Value)
	}
}

func TestResolveZeroPlaceholderTemplate(t *testing.T) {
	s := urlScheme("scheme_scan", "weixin://scanqrcode")
	got, err := Resolve(s, model.ActionBinding{Params: nil})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Value != "weixin://scanqrcode" {
		t.Fatalf("got %q", got.Value)
	}
}

func TestResolveArityMismatch(t *testing.T) {
	s := urlScheme("scheme_mail", "mailto:{param}?subject={param}")
	_, err := Resolve(s, model.ActionBinding{Params: []string{"only-one"}})
	var ae *ArityError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *ArityError, got %v", err)
	}
	if ae.Want != 2 || ae.Got != 1 || ae.SchemeID != "scheme_mail" {
		t.Fatalf("got %+v", ae)
	}
}

func TestResolveScriptTakesSingleParam(t *testing.T) {
	s := model.Scheme{ID: "scheme_run", Name: "run", Template: "ignored", Kind: model.SchemeScript}
	got, err := Resolve(s, model.ActionBinding{Params: []string{"  /usr/local/bin/sync.sh  "}})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Value != "/usr/local/bin/sync.sh" || got.Kind != model.SchemeScript {
		t.Fatalf("got %+v", got)
	}

	if _, err := Resolve(s, model.ActionBinding{Params: nil}); err == nil {
		t.Fatal("script without param must fail arity")
	}
}

func TestResolveEmptyTarget(t *testing.T) {
	s := urlScheme("scheme_blank", "{param}")
	_, err := Resolve(s, model.ActionBinding{Params: []string{"   "}})
	if !errors.Is(err, ErrEmptyTarget) {
		t.Fatalf("expected ErrEmptyTarget, got %v", err)
	}

	script := model.Scheme{ID: "s", Name: "s", Kind: model.SchemeScript}
	if _, err := Resolve(script, model.ActionBinding{Params: []string{""}}); !errors.Is(err, ErrEmptyTarget) {
		t.Fatalf("expected ErrEmptyTarget for blank script path, got %v", err)
	}
}
