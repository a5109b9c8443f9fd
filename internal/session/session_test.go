package session

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestSelection(t *testing.T) {
	var s Selection

	if !s.Add("fever") || !s.Add("cough") {
		t.Fatal("Expected first adds to succeed")
	}
	if s.Add("fever") {
		t.Error("Expected duplicate add to report false")
	}
	if s.Len() != 2 {
		t.Fatalf("Expected 2 names, got %d", s.Len())
	}
	if got := fmt.Sprint(s.Names()); got != "[fever cough]" {
		t.Errorf("Expected insertion order, got %s", got)
	}

	if !s.Remove("fever") || s.Remove("fever") {
		t.Error("Expected remove to succeed once")
	}
	if s.Has("fever") || !s.Has("cough") {
		t.Error("Unexpected membership after remove")
	}

	s.Reset()
	if s.Len() != 0 || s.Has("cough") {
		t.Error("Expected empty selection after reset")
	}
	if !s.Add("cough") {
		t.Error("Expected add after reset to succeed")
	}
}

func TestSelectionNamesIsCopy(t *testing.T) {
	s := NewSelection("fever", "cough", "fever")
	names := s.Names()
	names[0] = "changed"

	if got := fmt.Sprint(s.Names()); got != "[fever cough]" {
		t.Errorf("Expected selection unchanged, got %s", got)
	}
}

func TestStoreLifecycle(t *testing.T) {
	store := NewStore(time.Hour)

	sess := store.Create()
	if sess.ID == "" {
		t.Fatal("Expected a session ID")
	}
	if store.Count() != 1 {
		t.Fatalf("Expected 1 session, got %d", store.Count())
	}

	updated, err := store.Update(sess.ID, func(sel *Selection) error {
		sel.Add("fever")
		sel.Add("cough")
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(updated.Symptoms) != 2 {
		t.Errorf("Expected 2 symptoms, got %v", updated.Symptoms)
	}

	got, err := store.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if fmt.Sprint(got.Symptoms) != "[fever cough]" {
		t.Errorf("Unexpected symptoms: %v", got.Symptoms)
	}

	wantErr := errors.New("rejected")
	if _, err := store.Update(sess.ID, func(*Selection) error { return wantErr }); !errors.Is(err, wantErr) {
		t.Errorf("Expected update error to pass through, got %v", err)
	}

	if err := store.Delete(sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := store.Update("missing", func(*Selection) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown ID, got %v", err)
	}
}

func TestStoreSweep(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	store := NewStore(30 * time.Minute)
	store.now = func() time.Time { return clock }

	idle := store.Create()
	clock = base.Add(20 * time.Minute)
	active := store.Create()

	if n := store.Sweep(base.Add(25 * time.Minute)); n != 0 {
		t.Fatalf("Expected nothing swept yet, got %d", n)
	}
	if n := store.Sweep(base.Add(31 * time.Minute)); n != 1 {
		t.Fatalf("Expected 1 session swept, got %d", n)
	}
	if _, err := store.Get(idle.ID); !errors.Is(err, ErrNotFound) {
		t.Error("Expected idle session to be gone")
	}
	if _, err := store.Get(active.ID); err != nil {
		t.Errorf("Expected active session to remain, got %v", err)
	}

	forever := NewStore(0)
	forever.Create()
	if n := forever.Sweep(base.Add(1000 * time.Hour)); n != 0 {
		t.Errorf("Expected no expiry with zero TTL, got %d", n)
	}
}

func TestStartSweeper(t *testing.T) {
	store := NewStore(time.Minute)

	c, err := StartSweeper(store, "")
	if err != nil || c != nil {
		t.Fatalf("Expected disabled sweeper for empty schedule, got %v, %v", c, err)
	}

	if _, err := StartSweeper(store, "every five minutes"); err == nil {
		t.Fatal("Expected error for invalid schedule")
	}

	c, err = StartSweeper(store, "*/5 * * * *")
	if err != nil {
		t.Fatalf("StartSweeper: %v", err)
	}
	if c == nil {
		t.Fatal("Expected a running cron")
	}
	if len(c.Entries()) != 1 {
		t.Errorf("Expected 1 scheduled entry, got %d", len(c.Entries()))
	}
	c.Stop()

	c, err = StartSweeper(NewStore(0), "*/5 * * * *")
	if err != nil || c != nil {
		t.Errorf("Expected no sweeper when sessions never expire, got %v, %v", c, err)
	}
}

func TestValidateSchedule(t *testing.T) {
	if err := ValidateSchedule("0 3 * * *"); err != nil {
		t.Errorf("Expected valid schedule, got %v", err)
	}
	if err := ValidateSchedule("0 3 * *"); err == nil {
		t.Error("Expected error for 4-field schedule")
	}
	if err := ValidateSchedule(""); err != nil {
		t.Errorf("Expected empty schedule to be allowed, got %v", err)
	}
}
