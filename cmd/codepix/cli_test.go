package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/codepix/codepix/internal/config"
	"github.com/codepix/codepix/internal/metadata"
	"github.com/codepix/codepix/internal/provider"
	"github.com/codepix/codepix/internal/server"
)

func testConfig() config.Config {
	return config.Config{
		Addr:            config.DefaultAddr,
		GeminiModel:     metadata.DefaultGeminiModel,
		GroqModel:       metadata.DefaultGroqModel,
		CORSOrigins:     config.DefaultCORSOrigins,
		LogFormat:       config.LogFormatPretty,
		RequestTimeout:  time.Minute,
		ShutdownTimeout: time.Second,
	}
}

// withClientStubs replaces config loading and client construction. The
// returned mock backs the gemini provider.
func withClientStubs(t *testing.T, cfg config.Config) *provider.MockCompleter {
	t.Helper()
	mock := &provider.MockCompleter{ModelName: cfg.GeminiModel}

	prevLoad, prevResolve := loadConfig, resolveKey
	prevGemini, prevGroq := newGeminiClient, newGroqClient
	loadConfig = func(...string) (config.Config, error) { return cfg, nil }
	resolveKey = func(string, bool) (string, string) { return "", "" }
	newGeminiClient = func(_ context.Context, _, _ string, _ time.Duration) (provider.Completer, error) {
		return mock, nil
	}
	newGroqClient = func(_, model, _ string, _ time.Duration) provider.Completer {
		return &provider.MockCompleter{ModelName: model, Response: "from groq"}
	}
	t.Cleanup(func() {
		loadConfig, resolveKey = prevLoad, prevResolve
		newGeminiClient, newGroqClient = prevGemini, prevGroq
	})
	return mock
}

func executeWithInput(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func TestGenerateCommand_PlainOutput(t *testing.T) {
	cfg := testConfig()
	cfg.GeminiAPIKey = "AIzaTestKey"
	mock := withClientStubs(t, cfg)
	mock.Response = "Here you go:\n```javascript\nconst add = (a, b) => a + b;\n```"

	out, err := executeCommand(t, "generate", "--prompt", "add two numbers", "--complexity", "beginner")
	if err != nil {
		t.Fatalf("command failed: %v (%s)", err, out)
	}
	if !strings.Contains(out, "```javascript\nconst add = (a, b) => a + b;\n```") {
		t.Fatalf("expected extracted block, got: %s", out)
	}
	if strings.Contains(out, "Here you go") {
		t.Fatalf("text outside the block should be dropped: %s", out)
	}
	if !strings.Contains(out, "Model: "+metadata.DefaultGeminiModel) {
		t.Fatalf("expected stats, got: %s", out)
	}
	if !strings.Contains(mock.LastPrompt(), "add two numbers") || !strings.Contains(mock.LastPrompt(), "beginner") {
		t.Fatalf("prompt missing task or complexity: %q", mock.LastPrompt())
	}
}

func TestTranslateCommand_JSONFromStdin(t *testing.T) {
	cfg := testConfig()
	cfg.GeminiAPIKey = "AIzaTestKey"
	mock := withClientStubs(t, cfg)
	mock.Response = "```go\nfunc f() {}\n```"

	out, err := executeWithInput(t, "function f(){}", "translate", "--json", "--to", "go")
	if err != nil {
		t.Fatalf("command failed: %v (%s)", err, out)
	}
	var resp server.Response
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if resp.SourceLanguage != "javascript" || resp.TargetLanguage != "go" || resp.ModelProvider != "gemini" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Result != "```go\nfunc f() {}\n```" {
		t.Fatalf("result = %q", resp.Result)
	}
	if !strings.Contains(mock.LastPrompt(), "function f(){}") {
		t.Fatalf("stdin not used as code: %q", mock.LastPrompt())
	}
}

func TestOperation_GroqSelected(t *testing.T) {
	cfg := testConfig()
	cfg.GroqAPIKey = "gsk_test"
	withClientStubs(t, cfg)

	out, err := executeCommand(t, "explain", "--prompt", "x := 1", "-p", "GROQ")
	if err != nil {
		t.Fatalf("command failed: %v (%s)", err, out)
	}
	if !strings.Contains(out, "from groq") || !strings.Contains(out, "Provider: GROQ") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestOperation_ProviderUnavailable(t *testing.T) {
	withClientStubs(t, testConfig())

	_, err := executeCommand(t, "optimize", "--code", "let x = 1", "--provider", "groq")
	if err == nil || !strings.Contains(err.Error(), "Groq client not available") {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestOperation_KeychainFallback(t *testing.T) {
	withClientStubs(t, testConfig())
	var allowed bool
	resolveKey = func(svc string, allowKeychain bool) (string, string) {
		allowed = allowKeychain
		if svc == "gemini" && allowKeychain {
			return "AIzaFromKeychain", "Keychain"
		}
		return "", ""
	}

	if _, err := executeCommand(t, "explain", "--prompt", "x", "--keychain"); err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if !allowed {
		t.Fatal("expected keychain lookup to be allowed")
	}
}

func TestOperation_InputErrors(t *testing.T) {
	withClientStubs(t, testConfig())

	if _, err := executeWithInput(t, "   \n", "explain"); err == nil {
		t.Fatal("expected error for empty stdin")
	}
	if _, err := executeCommand(t, "optimize", "--code", "x", "--file", "in.js"); err == nil {
		t.Fatal("expected error for --code with --file")
	}
	if _, err := executeCommand(t, "translate", "--file", "does-not-exist.js"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestServe_AppliesFlags(t *testing.T) {
	withClientStubs(t, testConfig())
	var gotAddr string
	prev := runServer
	runServer = func(_ context.Context, srv *server.Server, addr string, _ time.Duration) error {
		if srv == nil {
			return errors.New("nil server")
		}
		gotAddr = addr
		return nil
	}
	t.Cleanup(func() { runServer = prev })

	if _, err := executeCommand(t, "serve", "--addr", "127.0.0.1:7000"); err != nil {
		t.Fatalf("serve failed: %v", err)
	}
	if gotAddr != "127.0.0.1:7000" {
		t.Fatalf("addr = %q", gotAddr)
	}

	if _, err := executeCommand(t); err != nil {
		t.Fatalf("root failed: %v", err)
	}
	if gotAddr != config.DefaultAddr {
		t.Fatalf("root should serve on the configured addr, got %q", gotAddr)
	}
}

func TestRoot_RejectsUnknownArgs(t *testing.T) {
	withClientStubs(t, testConfig())
	if _, err := executeCommand(t, "frobnicate"); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestRoot_InvalidLogFlags(t *testing.T) {
	withClientStubs(t, testConfig())
	for _, name := range []string{"models", "about"} {
		if _, err := executeCommand(t, name, "--log-format", "xml"); err == nil {
			t.Fatalf("%s: expected error for invalid log format", name)
		}
		if _, err := executeCommand(t, name, "--log-level", "chatty"); err == nil {
			t.Fatalf("%s: expected error for invalid log level", name)
		}
	}
}

func TestConfigFreeCommands_IgnoreBrokenEnvironment(t *testing.T) {
	withEnvStubs(t, "", false, false)
	loadConfig = func(...string) (config.Config, error) {
		return config.Config{}, errors.New("invalid CODEPIX_LOG_LEVEL \"loud\"")
	}

	for _, args := range [][]string{{"about"}, {"env", "status", "--service", "groq"}, {"completion", "bash"}} {
		if _, err := executeCommand(t, args...); err != nil {
			t.Errorf("%v: %v", args, err)
		}
	}
	if _, err := executeCommand(t, "models"); err == nil {
		t.Fatal("models should report the configuration error")
	}
}

func TestVersionFlag(t *testing.T) {
	withClientStubs(t, testConfig())
	out, err := executeCommand(t, "--version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "codepix ") {
		t.Fatalf("unexpected version output: %q", out)
	}
}

func TestModelsCommand(t *testing.T) {
	cfg := testConfig()
	cfg.GroqModel = "my-finetune"
	withClientStubs(t, cfg)

	out, err := executeCommand(t, "models")
	if err != nil {
		t.Fatalf("models failed: %v", err)
	}
	if !strings.Contains(out, "* gemini   "+metadata.DefaultGeminiModel) {
		t.Fatalf("default gemini model not marked: %s", out)
	}
	if !strings.Contains(out, "my-finetune") || !strings.Contains(out, "(custom)") {
		t.Fatalf("custom groq model missing: %s", out)
	}
}
