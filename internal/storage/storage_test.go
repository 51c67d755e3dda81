package storage

import (
	"context"
	"testing"

	"github.com/promptab/promptvar/internal/errors"
)

// adapters under test share one behavioral contract.
func adapters(t *testing.T) map[string]Adapter {
	t.Helper()

	sqlite, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Adapter{
		"sqlite": sqlite,
		"memory": NewMemory(),
	}
}

func TestAdapter_GetAbsent(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := a.Get(context.Background(), "missing")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if ok {
				t.Error("absent key should report ok=false")
			}
		})
	}
}

func TestAdapter_SetGetRoundTrip(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := a.Set(ctx, KeyVariables, []byte(`[{"name":"X"}]`)); err != nil {
				t.Fatalf("Set failed: %v", err)
			}

			value, ok, err := a.Get(ctx, KeyVariables)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if !ok {
				t.Fatal("key should exist after Set")
			}
			if string(value) != `[{"name":"X"}]` {
				t.Errorf("value = %q", value)
			}
		})
	}
}

func TestAdapter_SetReplaces(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := a.Set(ctx, "k", []byte("v1")); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := a.Set(ctx, "k", []byte("v2")); err != nil {
				t.Fatalf("Set failed: %v", err)
			}

			value, _, err := a.Get(ctx, "k")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if string(value) != "v2" {
				t.Errorf("value = %q, want v2", value)
			}
		})
	}
}

func TestAdapter_RemoveIdempotent(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := a.Set(ctx, "k", []byte("v")); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := a.Remove(ctx, "k"); err != nil {
				t.Fatalf("Remove failed: %v", err)
			}
			// Second remove of the same key is not an error.
			if err := a.Remove(ctx, "k"); err != nil {
				t.Fatalf("Remove of absent key failed: %v", err)
			}

			_, ok, err := a.Get(ctx, "k")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if ok {
				t.Error("key should be gone after Remove")
			}
		})
	}
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := first.Set(ctx, "k", []byte("durable")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	first.Close()

	second, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()

	value, ok, err := second.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || string(value) != "durable" {
		t.Errorf("value after reopen = %q, ok=%v", value, ok)
	}
}

func TestMemory_FailNextSetKeepsPriorValue(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	m.FailNextSet = true
	err := m.Set(ctx, "k", []byte("v2"))
	if !errors.Is(err, errors.ErrStorage) {
		t.Fatalf("expected STORAGE error, got %v", err)
	}

	value, _, _ := m.Get(ctx, "k")
	if string(value) != "v1" {
		t.Errorf("failed write must retain prior value, got %q", value)
	}
}

func TestMemory_Changes(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Set(ctx, KeyVariables, []byte("[]")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	select {
	case key := <-m.Changes():
		if key != KeyVariables {
			t.Errorf("changed key = %q, want %q", key, KeyVariables)
		}
	default:
		t.Error("expected a change notification after Set")
	}
}
