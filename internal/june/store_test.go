package june

import (
	"errors"
	"testing"
	"time"
)

func TestResolveMintsUniqueIDs(t *testing.T) {
	store := NewContextStore("", StoreOptions{})

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		id, minted, known := store.Resolve("")
		if !minted {
			t.Fatal("empty context id should mint a fresh one")
		}
		if known {
			t.Fatal("a minted id cannot be known")
		}
		if seen[id] {
			t.Fatalf("duplicate minted id: %s", id)
		}
		seen[id] = true
	}
}

func TestResolveUnknownID(t *testing.T) {
	store := NewContextStore("", StoreOptions{})

	id, minted, known := store.Resolve("never-seen")
	if id != "never-seen" {
		t.Errorf("Resolve rewrote the id to %q", id)
	}
	if minted {
		t.Error("a caller-supplied id must not be reported as minted")
	}
	if known {
		t.Error("an uninitialized id must not be known")
	}

	store.Initialize(id)
	if _, _, known := store.Resolve(id); !known {
		t.Error("id should be known after Initialize")
	}
}

func TestHistoryOrdering(t *testing.T) {
	store := NewContextStore("be brief", StoreOptions{})
	store.Initialize("c1")

	turns := []struct {
		user      string
		assistant string
	}{
		{"first question", "first answer"},
		{"second question", "second answer"},
	}
	for _, turn := range turns {
		if err := store.AppendUser("c1", turn.user); err != nil {
			t.Fatalf("AppendUser: %v", err)
		}
		if err := store.AppendAssistant("c1", Message{Role: RoleAssistant, Content: turn.assistant}); err != nil {
			t.Fatalf("AppendAssistant: %v", err)
		}
	}

	history, err := store.History("c1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}

	want := []Message{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "first question"},
		{Role: RoleAssistant, Content: "first answer"},
		{Role: RoleUser, Content: "second question"},
		{Role: RoleAssistant, Content: "second answer"},
	}
	if len(history) != len(want) {
		t.Fatalf("history has %d messages, want %d", len(history), len(want))
	}
	for i := range want {
		if history[i] != want[i] {
			t.Errorf("history[%d] = %+v, want %+v", i, history[i], want[i])
		}
	}
}

func TestInitializeWithoutSystemPrompt(t *testing.T) {
	store := NewContextStore("", StoreOptions{})
	store.Initialize("c1")

	history, err := store.History("c1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %v", history)
	}
}

func TestAppendUnknownContext(t *testing.T) {
	store := NewContextStore("", StoreOptions{})

	if err := store.AppendUser("nope", "hello"); !errors.Is(err, ErrUnknownContext) {
		t.Errorf("AppendUser error = %v, want ErrUnknownContext", err)
	}
	if err := store.AppendAssistant("nope", Message{Role: RoleAssistant}); !errors.Is(err, ErrUnknownContext) {
		t.Errorf("AppendAssistant error = %v, want ErrUnknownContext", err)
	}
	if _, err := store.History("nope"); !errors.Is(err, ErrUnknownContext) {
		t.Errorf("History error = %v, want ErrUnknownContext", err)
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	store := NewContextStore("", StoreOptions{})
	store.Initialize("c1")
	if err := store.AppendUser("c1", "original"); err != nil {
		t.Fatalf("AppendUser: %v", err)
	}

	history, _ := store.History("c1")
	history[0].Content = "mutated"

	again, _ := store.History("c1")
	if again[0].Content != "original" {
		t.Error("History exposed the store's backing slice")
	}
}

func TestMaxContextsEviction(t *testing.T) {
	store := NewContextStore("", StoreOptions{MaxContexts: 2})

	now := time.Now()
	tick := 0
	store.now = func() time.Time {
		tick++
		return now.Add(time.Duration(tick) * time.Second)
	}

	store.Initialize("a")
	store.Initialize("b")
	store.Initialize("c")

	if store.Len() != 2 {
		t.Fatalf("store holds %d contexts, want 2", store.Len())
	}
	if _, err := store.History("a"); !errors.Is(err, ErrUnknownContext) {
		t.Error("least recently touched context should have been evicted")
	}
	if _, err := store.History("c"); err != nil {
		t.Errorf("newest context was evicted: %v", err)
	}
}

func TestTTLExpiry(t *testing.T) {
	store := NewContextStore("", StoreOptions{TTL: time.Minute})

	current := time.Now()
	store.now = func() time.Time { return current }

	store.Initialize("old")
	if _, _, known := store.Resolve("old"); !known {
		t.Fatal("fresh context should be known")
	}

	current = current.Add(2 * time.Minute)
	if _, _, known := store.Resolve("old"); known {
		t.Error("expired context should resolve as unknown")
	}

	// Expired entries are reaped on the next Initialize.
	store.Initialize("new")
	if store.Len() != 1 {
		t.Errorf("store holds %d contexts, want 1", store.Len())
	}
}
