package engine

import (
	"context"
	"strings"

	"linkflowd/internal/model"
	logx "linkflowd/pkg/logx"
)

func (e *Engine) ListSchemes(ctx context.Context) ([]model.Scheme, error) {
	return e.store.ListSchemes(ctx)
}

func (e *Engine) CreateScheme(ctx context.Context, sc model.Scheme) (model.Scheme, error) {
	sc.Name = strings.TrimSpace(sc.Name)
	sc.Template = strings.TrimSpace(sc.Template)
	sc.ParamType = model.NormalizeParamType(string(sc.ParamType))
	if sc.ID == "" {
		sc.ID = e.newID("scheme")
	}
	if err := sc.Validate(); err != nil {
		return model.Scheme{}, err
	}
	if err := e.store.CreateScheme(ctx, sc); err != nil {
		return model.Scheme{}, err
	}
	return sc, nil
}

func (e *Engine) UpdateScheme(ctx context.Context, sc model.Scheme) (model.Scheme, error) {
	sc.Name = strings.TrimSpace(sc.Name)
	sc.Template = strings.TrimSpace(sc.Template)
	sc.ParamType = model.NormalizeParamType(string(sc.ParamType))
	if err := sc.Validate(); err != nil {
		return model.Scheme{}, err
	}
	if err := e.store.UpdateScheme(ctx, sc); err != nil {
		return model.Scheme{}, err
	}
	return sc, nil
}

// DeleteScheme removes a scheme and every task binding that refers to
// it. Bindings cascade in storage; no dangling binding survives.
func (e *Engine) DeleteScheme(ctx context.Context, id string) error {
	if err := e.store.DeleteScheme(ctx, id); err != nil {
		return err
	}
	e.log.Debug("scheme deleted", logx.String("scheme_id", id))
	return nil
}
