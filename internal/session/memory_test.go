package session

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStorePutGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Put(ctx, "sid-1", "user-1", time.Minute); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	userID, ok, err := s.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected session to exist")
	}
	if userID != "user-1" {
		t.Fatalf("got userID %q, want %q", userID, "user-1")
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemoryStore()

	_, ok, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if ok {
		t.Fatal("expected miss for unknown sid")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Put(ctx, "sid-1", "user-1", -time.Second); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	_, ok, err := s.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if ok {
		t.Fatal("expected expired session to be a miss")
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Put(ctx, "sid-1", "user-1", time.Minute); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := s.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	_, ok, _ := s.Get(ctx, "sid-1")
	if ok {
		t.Fatal("expected session to be gone after delete")
	}

	// deleting again must stay quiet
	if err := s.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("second delete failed: %v", err)
	}
}
