package provider

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/codepix/codepix/internal/apperrors"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		in   string
		want Key
	}{
		{"gemini", Gemini},
		{"GEMINI", Gemini},
		{" Groq ", Groq},
		{"groq", Groq},
	}
	for _, tt := range tests {
		got, err := ParseKey(tt.in)
		if err != nil || got != tt.want {
			t.Fatalf("ParseKey(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestParseKey_Unsupported(t *testing.T) {
	for _, in := range []string{"unknown-provider", "", "openai"} {
		_, err := ParseKey(in)
		if !apperrors.Is(err, apperrors.KindUnsupportedProvider) {
			t.Fatalf("ParseKey(%q) error = %v, want unsupported_provider", in, err)
		}
	}
}

func TestKeyString(t *testing.T) {
	if Gemini.String() != "gemini" || Groq.String() != "groq" {
		t.Fatalf("unexpected names %q %q", Gemini, Groq)
	}
	if Key(42).String() != "provider(42)" {
		t.Fatalf("unexpected name for unknown key: %q", Key(42))
	}
}

func TestGateway_Call(t *testing.T) {
	gem := &MockCompleter{Response: "from gemini", ModelName: "gemini-2.5-flash"}
	grq := &MockCompleter{Response: "from groq", ModelName: "llama-3.3-70b-versatile"}
	g := New(map[Key]Completer{Gemini: gem, Groq: grq})

	resp, err := g.Call(context.Background(), "Groq", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "from groq" || resp.Model != "llama-3.3-70b-versatile" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if grq.LastPrompt() != "hello" || gem.Calls() != 0 {
		t.Fatalf("dispatched to wrong client: gemini=%d groq=%d", gem.Calls(), grq.Calls())
	}
}

func TestGateway_UnsupportedDoesNotCall(t *testing.T) {
	gem := &MockCompleter{Response: "x"}
	g := New(map[Key]Completer{Gemini: gem})

	_, err := g.Call(context.Background(), "unknown-provider", "hello")
	if !apperrors.Is(err, apperrors.KindUnsupportedProvider) {
		t.Fatalf("expected unsupported_provider, got %v", err)
	}
	if gem.Calls() != 0 {
		t.Fatalf("provider was called for unsupported key")
	}
}

func TestGateway_Unavailable(t *testing.T) {
	g := New(map[Key]Completer{Gemini: &MockCompleter{}, Groq: nil})

	_, err := g.Call(context.Background(), "groq", "hello")
	if !apperrors.Is(err, apperrors.KindProviderUnavailable) {
		t.Fatalf("expected provider_unavailable, got %v", err)
	}
	if err.Error() != "Groq client not available. Please check GROQ_API_KEY environment variable." {
		t.Fatalf("unexpected message %q", err.Error())
	}

	configured := g.Configured()
	if !configured[Gemini] || configured[Groq] {
		t.Fatalf("unexpected configured map %v", configured)
	}
}

func TestGateway_CallFailed(t *testing.T) {
	upstream := errors.New("connection refused")
	g := New(map[Key]Completer{Gemini: &MockCompleter{Error: upstream}})

	_, err := g.Call(context.Background(), "gemini", "hello")
	if !apperrors.Is(err, apperrors.KindProviderCallFailed) {
		t.Fatalf("expected provider_call_failed, got %v", err)
	}
	if err.Error() != "gemini request failed: connection refused" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestGateway_KeepsClassifiedErrors(t *testing.T) {
	classified := apperrors.New(apperrors.KindProviderCallFailed, "groq request failed: rate limit exceeded (429)", nil)
	g := New(map[Key]Completer{Groq: &MockCompleter{Error: classified}})

	_, err := g.Call(context.Background(), "groq", "hello")
	if err != classified {
		t.Fatalf("expected classified error to pass through, got %v", err)
	}
}

func TestGateway_Observer(t *testing.T) {
	prev := timeNow
	ticks := []time.Time{time.Unix(100, 0), time.Unix(102, 0)}
	timeNow = func() time.Time {
		next := ticks[0]
		ticks = ticks[1:]
		return next
	}
	defer func() { timeNow = prev }()

	var gotKey Key
	var gotModel string
	var gotSeconds float64
	g := New(map[Key]Completer{Gemini: &MockCompleter{Response: "ok", ModelName: "m"}},
		WithObserver(func(k Key, model string, err error, seconds float64) {
			gotKey, gotModel, gotSeconds = k, model, seconds
		}))

	if _, err := g.Call(context.Background(), "gemini", "p"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != Gemini || gotModel != "m" || gotSeconds != 2 {
		t.Fatalf("observer got (%v, %q, %v)", gotKey, gotModel, gotSeconds)
	}
}

func TestGateway_ConcurrentCalls(t *testing.T) {
	mock := &MockCompleter{Response: "ok"}
	g := New(map[Key]Completer{Gemini: mock})

	const n = 16
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := g.Call(context.Background(), "gemini", "p"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if mock.Calls() != n {
		t.Fatalf("Calls() = %d, want %d", mock.Calls(), n)
	}
	if mock.LastPrompt() != "p" || mock.Model() != "mock-model" {
		t.Fatalf("unexpected mock state %q %q", mock.LastPrompt(), mock.Model())
	}
}
