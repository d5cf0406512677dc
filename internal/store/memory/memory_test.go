package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"saga/internal/store"
)

func TestMemoryStoreReadWriteRemove(t *testing.T) {
	ctx := context.Background()
	s := New(4, time.Minute)

	if _, err := s.Read(ctx, "k"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	value := []byte(`{"a":1}`)
	if err := s.Write(ctx, "k", value); err != nil {
		t.Fatalf("write: %v", err)
	}
	value[0] = 'X' // caller mutation must not leak into the store

	got, err := s.Read(ctx, "k")
	if err != nil || string(got) != `{"a":1}` {
		t.Fatalf("unexpected read %q err=%v", got, err)
	}

	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := s.Read(ctx, "k"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found after remove, got %v", err)
	}
}

func TestMemoryStoreExpires(t *testing.T) {
	ctx := context.Background()
	s := New(4, 10*time.Millisecond)
	if err := s.Write(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("write: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, err := s.Read(ctx, "k"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected session value to expire, got %v", err)
	}
}
