package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/telcoflow/workflowengine/pkg/session"
)

func TestMemoryStore_CreateFindEnd_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	rec, err := store.Create(ctx, session.ChannelUSSD, "+254700000002", nil, 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := store.FindActive(ctx, "+254700000002", session.ChannelUSSD)
	if err != nil {
		t.Fatalf("FindActive: %v", err)
	}
	if found == nil || found.SessionID != rec.SessionID {
		t.Fatalf("expected FindActive to return the created session, got %+v", found)
	}

	got, err := store.Get(ctx, rec.SessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.SessionID != rec.SessionID {
		t.Fatalf("expected Get to return the created session, got %+v", got)
	}

	if err := store.End(ctx, rec.SessionID); err != nil {
		t.Fatalf("End: %v", err)
	}

	if got, _ := store.Get(ctx, rec.SessionID); got != nil {
		t.Fatalf("expected Get to return nil after End, got %+v", got)
	}
	if found, _ := store.FindActive(ctx, "+254700000002", session.ChannelUSSD); found != nil {
		t.Fatalf("expected FindActive to return nil after End, got %+v", found)
	}
}

func TestMemoryStore_CreateConflict(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	if _, err := store.Create(ctx, session.ChannelUSSD, "+254700000003", nil, 0); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Create(ctx, session.ChannelUSSD, "+254700000003", nil, 0); err != session.ErrSessionConflict {
		t.Fatalf("expected ErrSessionConflict, got %v", err)
	}
}

func TestMemoryStore_CreateAfterEndSucceeds(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	rec, _ := store.Create(ctx, session.ChannelUSSD, "+254700000004", nil, 0)
	if err := store.End(ctx, rec.SessionID); err != nil {
		t.Fatalf("End: %v", err)
	}
	if _, err := store.Create(ctx, session.ChannelUSSD, "+254700000004", nil, 0); err != nil {
		t.Fatalf("expected Create to succeed after End, got %v", err)
	}
}

func TestMemoryStore_UpdateDataMergesAndTouches(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	rec, _ := store.Create(ctx, session.ChannelUSSD, "+254700000005", map[string]any{"step": "0"}, 0)

	updated, err := store.UpdateData(ctx, rec.SessionID, map[string]any{"step": "1", "extra": "x"})
	if err != nil {
		t.Fatalf("UpdateData: %v", err)
	}
	if updated.Data["step"] != "1" || updated.Data["extra"] != "x" {
		t.Fatalf("expected merged data, got %+v", updated.Data)
	}
	if !updated.LastActivityAt.After(rec.LastActivityAt) && !updated.LastActivityAt.Equal(rec.LastActivityAt) {
		t.Fatalf("expected last_activity_at to advance or stay equal")
	}
}

func TestMemoryStore_UpdateDataNotFound(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	if _, err := store.UpdateData(ctx, "does-not-exist", map[string]any{}); err != session.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemoryStore_ExpiryTransitionsInactive(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	rec, err := store.Create(ctx, session.ChannelVoice, "+254700000006", nil, time.Millisecond)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if got, _ := store.Get(ctx, rec.SessionID); got != nil {
		t.Fatalf("expected Get to return nil on an expired session, got %+v", got)
	}
}

func TestMemoryStore_Sweep(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	_, err := store.Create(ctx, session.ChannelVoice, "+254700000007", nil, time.Millisecond)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	count, err := store.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 swept session, got %d", count)
	}
}

func TestMemoryStore_TouchIsNoOpOnInactive(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	rec, _ := store.Create(ctx, session.ChannelSMS, "+254700000008", nil, 0)
	_ = store.End(ctx, rec.SessionID)

	if err := store.Touch(ctx, rec.SessionID); err != nil {
		t.Fatalf("expected Touch on inactive session to be a no-op, got %v", err)
	}
}
