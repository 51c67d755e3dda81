package variable

import (
	"context"
	"encoding/json"
	"time"

	"github.com/promptab/promptvar/internal/errors"
	"github.com/promptab/promptvar/internal/storage"
)

// Store holds the user's variable library behind a persistence adapter.
// The whole collection lives under one storage key, so each mutation is a
// read-modify-write that either fully persists or leaves the prior
// collection in place. The store keeps no in-memory copy between calls;
// every operation reads the persisted collection first, which also picks up
// writes from other surfaces without a merge step.
type Store struct {
	adapter storage.Adapter
	key     string

	// now is swappable for tests.
	now func() int64
}

// NewStore creates a Store over the given adapter.
func NewStore(adapter storage.Adapter) *Store {
	return &Store{
		adapter: adapter,
		key:     storage.KeyVariables,
		now:     func() int64 { return time.Now().Unix() },
	}
}

// List returns all variables in insertion order.
func (s *Store) List(ctx context.Context) ([]Variable, error) {
	return s.load(ctx)
}

// Get returns the variable with the given name, or NOT_FOUND.
func (s *Store) Get(ctx context.Context, name string) (*Variable, error) {
	vars, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range vars {
		if vars[i].Name == name {
			return &vars[i], nil
		}
	}
	return nil, errors.NewNotFound(name)
}

// UpsertByName creates or overwrites the variable with the given name.
// An existing variable keeps its ID; its other fields are replaced and
// UpdatedAt refreshed. This is the only creation path the interactive
// replacement flow uses, and it enforces name uniqueness by construction.
func (s *Store) UpsertByName(ctx context.Context, name, value, description, category string) (*Variable, error) {
	if name == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}

	vars, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for i := range vars {
		if vars[i].Name == name {
			vars[i].Value = value
			vars[i].Description = description
			vars[i].Category = category
			vars[i].UpdatedAt = now
			if err := s.save(ctx, vars); err != nil {
				return nil, err
			}
			out := vars[i]
			return &out, nil
		}
	}

	id, err := NewID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	v := Variable{
		ID:          id,
		Name:        name,
		Value:       value,
		Description: description,
		Category:    category,
		UpdatedAt:   now,
	}
	vars = append(vars, v)
	if err := s.save(ctx, vars); err != nil {
		return nil, err
	}
	return &v, nil
}

// UpdateByID applies a partial update to the variable with the given id.
// A missing id is a NOT_FOUND error. The source this reimplements treated
// it as a silent no-op; surfacing the miss was chosen instead so a failed
// edit cannot masquerade as success.
func (s *Store) UpdateByID(ctx context.Context, id string, fields Fields) (*Variable, error) {
	vars, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range vars {
		if vars[i].ID != id {
			continue
		}
		if fields.Value != nil {
			vars[i].Value = *fields.Value
		}
		if fields.Description != nil {
			vars[i].Description = *fields.Description
		}
		if fields.Category != nil {
			vars[i].Category = *fields.Category
		}
		vars[i].UpdatedAt = s.now()
		if err := s.save(ctx, vars); err != nil {
			return nil, err
		}
		out := vars[i]
		return &out, nil
	}

	return nil, errors.NewNotFound(id)
}

// RemoveByID deletes the variable with the given id. Removing an absent id
// is not an error.
func (s *Store) RemoveByID(ctx context.Context, id string) error {
	vars, err := s.load(ctx)
	if err != nil {
		return err
	}

	kept := vars[:0]
	removed := false
	for _, v := range vars {
		if v.ID == id {
			removed = true
			continue
		}
		kept = append(kept, v)
	}
	if !removed {
		return nil
	}

	return s.save(ctx, kept)
}

// load reads the persisted collection. An absent key is an empty library.
func (s *Store) load(ctx context.Context) ([]Variable, error) {
	data, ok, err := s.adapter.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var vars []Variable
	if err := json.Unmarshal(data, &vars); err != nil {
		return nil, errors.NewStorage("decode", err)
	}
	return vars, nil
}

// save writes the full collection under the single key.
func (s *Store) save(ctx context.Context, vars []Variable) error {
	if vars == nil {
		vars = []Variable{}
	}
	data, err := json.Marshal(vars)
	if err != nil {
		return errors.NewStorage("encode", err)
	}
	return s.adapter.Set(ctx, s.key, data)
}
