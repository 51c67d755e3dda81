// Package history keeps a bounded, most-recent-first record of prompt
// optimization outcomes.
package history

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/promptab/promptvar/internal/errors"
	"github.com/promptab/promptvar/internal/storage"
)

// Capacity is the maximum number of retained entries. Insertion beyond
// capacity evicts the oldest entry; evicted entries are dropped, not archived.
const Capacity = 20

// Entry is one recorded optimization outcome.
type Entry struct {
	ID        string `json:"id"`
	Original  string `json:"original"`
	Optimized string `json:"optimized"`
	Timestamp int64  `json:"timestamp"`
}

// Buffer is the recent-prompt ring buffer, persisted whole under one
// storage key. Entries are never individually updated; the buffer only
// grows at the head and shrinks at the tail.
type Buffer struct {
	adapter storage.Adapter
	key     string
	now     func() int64
}

// NewBuffer creates a Buffer over the given adapter.
func NewBuffer(adapter storage.Adapter) *Buffer {
	return &Buffer{
		adapter: adapter,
		key:     storage.KeyRecentPrompts,
		now:     func() int64 { return time.Now().Unix() },
	}
}

// Add prepends a new entry and truncates the buffer to Capacity.
func (b *Buffer) Add(ctx context.Context, original, optimized string) (*Entry, error) {
	entries, err := b.load(ctx)
	if err != nil {
		return nil, err
	}

	id, err := newID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	entry := Entry{
		ID:        id,
		Original:  original,
		Optimized: optimized,
		Timestamp: b.now(),
	}

	entries = append([]Entry{entry}, entries...)
	if len(entries) > Capacity {
		entries = entries[:Capacity]
	}

	if err := b.save(ctx, entries); err != nil {
		return nil, err
	}
	return &entry, nil
}

// List returns the buffer most-recent-first.
func (b *Buffer) List(ctx context.Context) ([]Entry, error) {
	return b.load(ctx)
}

// Clear empties the buffer.
func (b *Buffer) Clear(ctx context.Context) error {
	return b.adapter.Remove(ctx, b.key)
}

func (b *Buffer) load(ctx context.Context) ([]Entry, error) {
	data, ok, err := b.adapter.Get(ctx, b.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.NewStorage("decode", err)
	}
	return entries, nil
}

func (b *Buffer) save(ctx context.Context, entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return errors.NewStorage("encode", err)
	}
	return b.adapter.Set(ctx, b.key, data)
}

// newID generates a new ULID.
func newID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

