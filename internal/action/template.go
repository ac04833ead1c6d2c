package action

import (
	"strings"

	"linkflowd/internal/model"
)

// Placeholder is the literal substituted in url-kind templates.
const Placeholder = "{param}"

// Target is an executable external action: either a fully substituted URL or
// a local script path.
type Target struct {
	Kind  model.SchemeKind
	Value string
}

// Arity returns the number of positional parameters a scheme requires: the
// placeholder count for url templates, exactly one (the script path) for
// scripts.
func Arity(s model.Scheme) int {
	if s.Kind == model.SchemeScript {
		return 1
	}
	return strings.Count(s.Template, Placeholder)
}

// Resolve substitutes a binding's positional parameters into the scheme's
// template. Placeholders are replaced left to right; values are not escaped,
// the template author is responsible for producing a valid URI.
func Resolve(s model.Scheme, b model.ActionBinding) (Target, error) {
	want := Arity(s)
	if len(b.Params) != want {
		return Target{}, &ArityError{SchemeID: s.ID, Want: want, Got: len(b.Params)}
	}

	var value string
	switch s.Kind {
	case model.SchemeScript:
		value = strings.TrimSpace(b.Params[0])
	default:
		value = s.Template
		for _, p := range b.Params {
			value = strings.Replace(value, Placeholder, p, 1)
		}
		value = strings.TrimSpace(value)
	}

	if value == "" {
		return Target{}, ErrEmptyTarget
	}
	return Target{Kind: s.Kind, Value: value}, nil
}
