package registry

import (
	"errors"
	"sync"
	"testing"

	"github.com/duelgrid/server/protocol"
)

// fakeSender records everything sent to it.
type fakeSender struct {
	mu   sync.Mutex
	msgs []any
}

func (f *fakeSender) Send(msg any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return true
}

func (f *fakeSender) messages() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]any, len(f.msgs))
	copy(out, f.msgs)
	return out
}

func (f *fakeSender) lastUserCount() (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.msgs) - 1; i >= 0; i-- {
		if uc, ok := f.msgs[i].(protocol.UserCount); ok {
			return uc.Count, true
		}
	}
	return 0, false
}

func TestRegistry_Register(t *testing.T) {
	r := New()
	sender := &fakeSender{}

	if err := r.Register("c1", sender); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if !r.Exists("c1") {
		t.Error("Expected client to exist after Register")
	}
	if r.Count() != 1 {
		t.Errorf("Expected count 1, got %d", r.Count())
	}

	status, ok := r.ClientStatus("c1")
	if !ok || status != StatusUnregistered {
		t.Errorf("Expected status unregistered, got %q (ok=%v)", status, ok)
	}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := New()

	if err := r.Register("c1", &fakeSender{}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	err := r.Register("c1", &fakeSender{})
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Expected ErrDuplicateID, got %v", err)
	}
	if r.Count() != 1 {
		t.Errorf("Expected count to stay 1, got %d", r.Count())
	}
}

func TestRegistry_CountBroadcast(t *testing.T) {
	r := New()
	first := &fakeSender{}
	second := &fakeSender{}

	r.Register("c1", first)
	r.Register("c2", second)

	// The first client saw both registrations.
	if count, ok := first.lastUserCount(); !ok || count != 2 {
		t.Errorf("Expected first client to see count 2, got %d (ok=%v)", count, ok)
	}
	if count, ok := second.lastUserCount(); !ok || count != 2 {
		t.Errorf("Expected second client to see count 2, got %d (ok=%v)", count, ok)
	}

	r.Remove("c2")

	if count, ok := first.lastUserCount(); !ok || count != 1 {
		t.Errorf("Expected count 1 after removal, got %d (ok=%v)", count, ok)
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"valid simple", "alice", nil},
		{"valid with underscore and digits", "player_42", nil},
		{"minimum length", "abc", nil},
		{"maximum length", "abcdefghij_klmnopqrs", nil},
		{"too short", "ab", ErrNameLength},
		{"empty", "", ErrNameLength},
		{"too long", "abcdefghijklmnopqrstu", ErrNameLength},
		{"contains space", "bad name", ErrNameFormat},
		{"contains dash", "bad-name", ErrNameFormat},
		{"contains unicode", "hellö", ErrNameFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateUsername(%q) = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestRegistry_SetName(t *testing.T) {
	r := New()
	r.Register("c1", &fakeSender{})

	if err := r.SetName("c1", "alice"); err != nil {
		t.Fatalf("SetName failed: %v", err)
	}

	name, ok := r.Name("c1")
	if !ok || name != "alice" {
		t.Errorf("Expected name alice, got %q (ok=%v)", name, ok)
	}

	status, _ := r.ClientStatus("c1")
	if status != StatusRegistered {
		t.Errorf("Expected status registered, got %q", status)
	}
}

func TestRegistry_SetNameOverwrites(t *testing.T) {
	r := New()
	r.Register("c1", &fakeSender{})

	r.SetName("c1", "alice")
	if err := r.SetName("c1", "alicia"); err != nil {
		t.Fatalf("SetName failed: %v", err)
	}

	name, _ := r.Name("c1")
	if name != "alicia" {
		t.Errorf("Expected name alicia, got %q", name)
	}
}

func TestRegistry_SetNameInvalid(t *testing.T) {
	r := New()
	r.Register("c1", &fakeSender{})

	if err := r.SetName("c1", "x"); !errors.Is(err, ErrNameLength) {
		t.Errorf("Expected ErrNameLength, got %v", err)
	}

	// Client stays unregistered after a rejected name.
	status, _ := r.ClientStatus("c1")
	if status != StatusUnregistered {
		t.Errorf("Expected status unregistered, got %q", status)
	}
}

func TestRegistry_SetNameUnknownClient(t *testing.T) {
	r := New()

	if err := r.SetName("ghost", "alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRegistry_RemoveIdempotent(t *testing.T) {
	r := New()
	r.Register("c1", &fakeSender{})

	r.Remove("c1")
	r.Remove("c1") // no-op

	if r.Exists("c1") {
		t.Error("Expected client to be gone")
	}
	if r.Count() != 0 {
		t.Errorf("Expected count 0, got %d", r.Count())
	}
}

func TestRegistry_SendToDepartedClient(t *testing.T) {
	r := New()

	// Must not panic.
	r.Send("ghost", protocol.NewError("nope"))
}

func TestRegistry_Broadcast(t *testing.T) {
	r := New()
	first := &fakeSender{}
	second := &fakeSender{}
	r.Register("c1", first)
	r.Register("c2", second)

	r.Broadcast(protocol.NewSearching("hello"))

	for name, sender := range map[string]*fakeSender{"first": first, "second": second} {
		found := false
		for _, msg := range sender.messages() {
			if s, ok := msg.(protocol.Searching); ok && s.Message == "hello" {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected %s client to receive broadcast", name)
		}
	}
}
