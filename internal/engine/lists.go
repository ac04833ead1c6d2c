package engine

import (
	"context"
	"errors"
	"strings"

	"linkflowd/internal/model"
	"linkflowd/internal/store"
)

// ErrDefaultList rejects deletion of the seeded default list.
var ErrDefaultList = errors.New("engine: default list cannot be deleted")

func (e *Engine) ListLists(ctx context.Context) ([]model.List, error) {
	return e.store.ListLists(ctx)
}

func (e *Engine) CreateList(ctx context.Context, l model.List) (model.List, error) {
	l.Name = strings.TrimSpace(l.Name)
	if l.ID == "" {
		l.ID = e.newID("list")
	}
	if err := l.Validate(); err != nil {
		return model.List{}, err
	}
	if err := e.store.CreateList(ctx, l); err != nil {
		return model.List{}, err
	}
	return l, nil
}

func (e *Engine) UpdateList(ctx context.Context, l model.List) (model.List, error) {
	l.Name = strings.TrimSpace(l.Name)
	if err := l.Validate(); err != nil {
		return model.List{}, err
	}
	if err := e.store.UpdateList(ctx, l); err != nil {
		return model.List{}, err
	}
	return l, nil
}

func (e *Engine) DeleteList(ctx context.Context, id string) error {
	if id == store.DefaultListID {
		return ErrDefaultList
	}
	return e.store.DeleteList(ctx, id)
}
