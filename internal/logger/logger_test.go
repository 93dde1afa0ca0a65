package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestPrettyHandler_Structural(t *testing.T) {
	var buf bytes.Buffer
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	h := NewPrettyHandler(&buf, opts, false)
	l := slog.New(h)

	t.Run("WithAttrs", func(t *testing.T) {
		buf.Reset()
		l2 := l.With("request_id", "abc-123")
		l2.Info("test message", "user", "alice")

		output := buf.String()
		if !strings.Contains(output, "request_id=") || !strings.Contains(output, "abc-123") {
			t.Errorf("output missing persistent attr: %q", output)
		}
		if !strings.Contains(output, "user=") || !strings.Contains(output, "alice") {
			t.Errorf("output missing record attr: %q", output)
		}
	})

	t.Run("WithGroup", func(t *testing.T) {
		buf.Reset()
		l2 := l.WithGroup("billing").With("amount", 100)
		l2.Info("payment processing", "currency", "USD")

		output := buf.String()
		if !strings.Contains(output, "billing.amount=") || !strings.Contains(output, "100") {
			t.Errorf("output missing grouped persistent attr: %q", output)
		}
		if !strings.Contains(output, "billing.currency=") || !strings.Contains(output, "USD") {
			t.Errorf("output missing grouped record attr: %q", output)
		}
	})

	t.Run("NestedGroups", func(t *testing.T) {
		buf.Reset()
		l2 := l.WithGroup("outer").WithGroup("inner").With("key", "val")
		l2.Info("msg")

		output := buf.String()
		if !strings.Contains(output, "outer.inner.key=") || !strings.Contains(output, "val") {
			t.Errorf("output missing nested grouped attr: %q", output)
		}
	})
}

func TestRedactAttr(t *testing.T) {
	t.Run("KeyBasedRedaction", func(t *testing.T) {
		attr := slog.String("api_key", "sk-1234567890abcdef")
		got := RedactAttr(nil, attr)
		if got.Value.String() != "[REDACTED]" {
			t.Fatalf("expected redaction, got %q", got.Value.String())
		}
	})

	t.Run("ValuePatternRedaction", func(t *testing.T) {
		attr := slog.String("message", "bearer sk-1234567890abcdef")
		got := RedactAttr(nil, attr)
		if got.Value.String() != "[REDACTED]" {
			t.Fatalf("expected redaction, got %q", got.Value.String())
		}
	})

	t.Run("ProviderKeys", func(t *testing.T) {
		for _, v := range []string{
			"AIzaSyA1234567890abcdefghij",
			"gsk_abcdefghijklmnop1234",
			"Authorization: Bearer abc.def.ghi",
		} {
			got := RedactAttr(nil, slog.String("detail", v))
			if got.Value.String() != "[REDACTED]" {
				t.Errorf("expected %q to be redacted, got %q", v, got.Value.String())
			}
		}
	})

	t.Run("RequestBodies", func(t *testing.T) {
		for _, k := range []string{"prompt", "code", "result"} {
			got := RedactAttr(nil, slog.String(k, "func main() {}"))
			if got.Value.String() != "[REDACTED]" {
				t.Errorf("expected %q to be redacted, got %q", k, got.Value.String())
			}
		}
	})

	t.Run("AccessLogFields", func(t *testing.T) {
		for _, a := range []slog.Attr{
			slog.String("method", "POST"),
			slog.String("path", "/api/ai/generate"),
			slog.Int("status", 200),
			slog.String("request_id", "9b2f"),
			slog.String("provider", "groq"),
		} {
			got := RedactAttr(nil, a)
			if got.Value.String() == "[REDACTED]" {
				t.Errorf("unexpected redaction of %q", a.Key)
			}
		}
	})

	t.Run("DescriptiveKeys", func(t *testing.T) {
		for _, a := range []slog.Attr{
			slog.String("input", "typescript"),
			slog.String("output", "stdout"),
			slog.String("text", "listening"),
			slog.String("api_base", "https://api.groq.com"),
		} {
			got := RedactAttr(nil, a)
			if got.Value.String() == "[REDACTED]" {
				t.Errorf("unexpected redaction of %q", a.Key)
			}
		}
	})

	t.Run("NonSensitive", func(t *testing.T) {
		attr := slog.String("user", "alice")
		got := RedactAttr(nil, attr)
		if got.Value.String() != "alice" {
			t.Fatalf("unexpected redaction: %q", got.Value.String())
		}
	})
}

func TestPrettyHandler_NoColorWhenNotTTY(t *testing.T) {
	prevIsTerminal := isTerminal
	isTerminal = func(_ int) bool { return false }
	defer func() { isTerminal = prevIsTerminal }()

	prevStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stderr = w
	defer func() { os.Stderr = prevStderr }()

	Init(slog.LevelInfo, FormatPretty, nil)
	Info("test message", "key", "value")

	_ = w.Close()
	out, _ := io.ReadAll(r)
	if strings.Contains(string(out), "\033[") {
		t.Fatalf("unexpected ANSI codes in output: %q", string(out))
	}
}

func TestPrettyHandler_NoColorWhenLogFileEnabled(t *testing.T) {
	prevIsTerminal := isTerminal
	isTerminal = func(_ int) bool { return true }
	defer func() { isTerminal = prevIsTerminal }()

	prevStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stderr = w
	defer func() { os.Stderr = prevStderr }()

	var logBuf bytes.Buffer
	Init(slog.LevelInfo, FormatPretty, &logBuf)
	Info("test message", "key", "value")

	_ = w.Close()
	out, _ := io.ReadAll(r)
	if strings.Contains(string(out), "\033[") {
		t.Fatalf("unexpected ANSI codes in output: %q", string(out))
	}
}

func TestInit_JSONFormat(t *testing.T) {
	prevStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stderr = w
	defer func() {
		os.Stderr = prevStderr
		Init(slog.LevelInfo, FormatPretty, nil)
	}()

	Init(slog.LevelInfo, FormatJSON, nil)
	Info("server listening", "addr", ":5000", "api_key", "AIzaSecret1234567890")

	_ = w.Close()
	out, _ := io.ReadAll(r)
	line := strings.TrimSpace(string(out))
	if !strings.HasPrefix(line, "{") || !strings.Contains(line, `"msg":"server listening"`) {
		t.Fatalf("expected JSON line, got %q", line)
	}
	if strings.Contains(line, "AIzaSecret") {
		t.Fatalf("secret leaked: %q", line)
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(NewPrettyHandler(&buf, nil, false))

	if got := FromContext(context.Background()); got != L() {
		t.Fatalf("expected global logger without a request logger")
	}

	ctx := WithRequest(context.Background(), base, "req-7")
	FromContext(ctx).Info("handled", "status", 200)

	out := buf.String()
	if !strings.Contains(out, "request_id=req-7") || !strings.Contains(out, "status=200") {
		t.Fatalf("request logger missing attrs: %q", out)
	}
}

func TestInit_LogFileReceivesJSON(t *testing.T) {
	prevStderr := os.Stderr
	_, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = prevStderr
		Init(slog.LevelInfo, FormatPretty, nil)
	}()

	var logBuf bytes.Buffer
	Init(slog.LevelInfo, FormatPretty, &logBuf)
	Warn("upstream slow", "provider", "groq", "token", "gsk_abcdefghijklmnop")

	line := logBuf.String()
	if !strings.Contains(line, `"msg":"upstream slow"`) || !strings.Contains(line, `"provider":"groq"`) {
		t.Fatalf("expected JSON record in log file, got %q", line)
	}
	if strings.Contains(line, "gsk_") {
		t.Fatalf("secret leaked: %q", line)
	}
}
