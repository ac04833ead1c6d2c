package model

import (
	"errors"
	"fmt"
	"strings"
)

type SchemeKind string

const (
	SchemeURL    SchemeKind = "url"
	SchemeScript SchemeKind = "script"
)

type ParamType string

const (
	ParamString ParamType = "string"
	ParamNumber ParamType = "number"
)

var ErrInvalidSchemeKind = errors.New("model: invalid scheme kind")

// Scheme is a reusable, parameterized external action a task can bind to:
// either a URL template with {param} placeholders or a local script path.
type Scheme struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Icon      string     `json:"icon"`
	Template  string     `json:"template"`
	Kind      SchemeKind `json:"kind"`
	ParamType ParamType  `json:"paramType"`
}

func (s Scheme) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return ErrIDRequired
	}
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("model: scheme name is required")
	}
	switch s.Kind {
	case SchemeURL:
		// Script schemes take the path from the binding; only url
		// schemes carry a template.
		if strings.TrimSpace(s.Template) == "" {
			return errors.New("model: scheme template is required")
		}
	case SchemeScript:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSchemeKind, s.Kind)
	}
	return nil
}

// NormalizeParamType maps anything that is not "number" to "string".
func NormalizeParamType(p string) ParamType {
	if strings.TrimSpace(p) == string(ParamNumber) {
		return ParamNumber
	}
	return ParamString
}
