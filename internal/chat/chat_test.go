package chat

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeCompleter struct {
	reply   string
	err     error
	block   bool
	system  string
	history []Message
}

func (f *fakeCompleter) Complete(ctx context.Context, system string, history []Message) (string, error) {
	f.system = system
	f.history = history
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func TestAskSendsHistory(t *testing.T) {
	fake := &fakeCompleter{reply: "  Sisihkan 20% gaji untuk tabungan.  "}
	a := NewAdvisor(fake)

	history := []Message{
		{Role: RoleAssistant, Content: WelcomeMessage},
		{Role: RoleUser, Content: ""},
	}
	reply, err := a.Ask(context.Background(), history, "Bagaimana cara menabung?")
	if err != nil {
		t.Fatal(err)
	}
	if reply.Fallback || reply.Text != "Sisihkan 20% gaji untuk tabungan." {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if fake.system != SystemPrompt {
		t.Fatal("system prompt not sent")
	}
	if len(fake.history) != 2 || fake.history[1].Role != RoleUser || fake.history[1].Content != "Bagaimana cara menabung?" {
		t.Fatalf("unexpected history %+v", fake.history)
	}
}

func TestAskFallback(t *testing.T) {
	tests := []struct {
		name string
		c    Completer
	}{
		{"no model", nil},
		{"error", &fakeCompleter{err: errors.New("boom")}},
		{"empty reply", &fakeCompleter{reply: "   "}},
		{"timeout", &fakeCompleter{block: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := NewAdvisor(tc.c, WithTimeout(10*time.Millisecond))
			reply, err := a.Ask(context.Background(), nil, "halo")
			if err != nil {
				t.Fatalf("model failures must not surface, got %v", err)
			}
			if !reply.Fallback || reply.Text != FallbackMessage {
				t.Fatalf("expected fallback, got %+v", reply)
			}
		})
	}
}

func TestAskEmptyInput(t *testing.T) {
	a := NewAdvisor(&fakeCompleter{reply: "x"})
	if _, err := a.Ask(context.Background(), nil, "  "); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestToContentsRoles(t *testing.T) {
	got := toContents([]Message{
		{Role: RoleUser, Content: "a"},
		{Role: RoleAssistant, Content: "b"},
	})
	if len(got) != 2 || got[0].Role != "user" || got[1].Role != "model" {
		t.Fatalf("unexpected contents %+v", got)
	}
	if got[1].Parts[0].Text != "b" {
		t.Fatalf("unexpected text %q", got[1].Parts[0].Text)
	}
}
