package service

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestConsoleManagerGetIsStable(t *testing.T) {
	m := NewConsoleManager(&fakeAdminAPI{}, &fakeSnapshots{}, zerolog.Nop())

	a := m.Get("admin-1")
	b := m.Get("admin-1")
	if a != b {
		t.Error("same subject produced two consoles")
	}
	if m.Get("admin-2") == a {
		t.Error("different subjects share a console")
	}
	if m.Len() != 2 {
		t.Errorf("len = %d, want 2", m.Len())
	}
}

func TestConsoleManagerDrop(t *testing.T) {
	m := NewConsoleManager(&fakeAdminAPI{}, &fakeSnapshots{}, zerolog.Nop())

	first := m.Get("admin-1")
	m.Drop("admin-1")
	if m.Get("admin-1") == first {
		t.Error("dropped console was reused")
	}
}

func TestConsoleManagerSweep(t *testing.T) {
	m := NewConsoleManager(&fakeAdminAPI{}, &fakeSnapshots{}, zerolog.Nop())

	stale := m.Get("stale")
	stale.mu.Lock()
	stale.lastSeen = time.Now().Add(-time.Hour)
	stale.mu.Unlock()

	m.Get("fresh")

	if dropped := m.Sweep(30 * time.Minute); dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	if m.Len() != 1 {
		t.Errorf("len after sweep = %d, want 1", m.Len())
	}
}

func TestConsoleManagerSweepSkipsExecuting(t *testing.T) {
	m := NewConsoleManager(&fakeAdminAPI{}, &fakeSnapshots{}, zerolog.Nop())

	busy := m.Get("busy")
	busy.mu.Lock()
	busy.lastSeen = time.Now().Add(-time.Hour)
	busy.executing = true
	busy.mu.Unlock()

	if dropped := m.Sweep(30 * time.Minute); dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
}
