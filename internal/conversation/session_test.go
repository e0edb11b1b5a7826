package conversation

import (
	"testing"
	"time"

	"github.com/Joszi2006/pillinfo/internal/imaging"
)

func TestManagerCreateGetDelete(t *testing.T) {
	m := NewManager(&mockGateway{})
	defer m.Close()

	id, log := m.Create()
	if id == "" || log == nil {
		t.Fatal("Create() returned empty session")
	}

	got, ok := m.Get(id)
	if !ok || got != log {
		t.Fatalf("Get(%q) = %v, %v", id, got, ok)
	}
	if _, ok := m.Get("nope"); ok {
		t.Error("Get() found unknown session")
	}

	m.Delete(id)
	if _, ok := m.Get(id); ok {
		t.Error("session survives Delete")
	}
	if m.Count() != 0 {
		t.Errorf("Count() = %d, want 0", m.Count())
	}
}

func TestManagerSessionsAreIsolated(t *testing.T) {
	m := NewManager(&mockGateway{})
	defer m.Close()

	_, a := m.Create()
	_, b := m.Create()

	if a.Staging() == b.Staging() {
		t.Error("sessions share a staging area")
	}
	if a.History() == b.History() {
		t.Error("sessions share a match history")
	}
}

func TestManagerDeleteTearsDownStaging(t *testing.T) {
	m := NewManager(&mockGateway{})
	defer m.Close()

	id, log := m.Create()
	log.Staging().Add([]imaging.CandidateFile{
		{Name: "a.jpg", MediaType: "image/jpeg", Data: []byte("x")},
	})
	handles := log.Staging().Previews()

	m.Delete(id)

	if !handles[0].Revoked() {
		t.Error("preview leaked after session delete")
	}
}

func TestManagerSweepRemovesStale(t *testing.T) {
	m := NewManager(&mockGateway{})
	defer m.Close()

	id, _ := m.Create()
	m.sweep(time.Now().Add(sessionInactivityTimeout + time.Minute))

	if _, ok := m.Get(id); ok {
		t.Error("stale session survived sweep")
	}
}
