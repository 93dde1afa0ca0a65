package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codepix/codepix/internal/auth"
	"github.com/codepix/codepix/internal/cleanup"
	"github.com/codepix/codepix/internal/config"
	"github.com/codepix/codepix/internal/gemini"
	"github.com/codepix/codepix/internal/groq"
	"github.com/codepix/codepix/internal/httpclient"
	"github.com/codepix/codepix/internal/logger"
	"github.com/codepix/codepix/internal/provider"
	"golang.org/x/term"
)

var (
	isTerminal   = term.IsTerminal
	loadConfig   = config.Load
	resolveKey   = auth.Resolve
	getStatus    = auth.GetStatus
	saveKey      = auth.SaveKey
	deleteKey    = auth.DeleteKey
	promptForKey = auth.PromptForAPIKey
	newConfirmer = auth.DefaultConfirmer
)

var newGeminiClient = func(ctx context.Context, apiKey, model string, timeout time.Duration) (provider.Completer, error) {
	c, err := gemini.NewClient(ctx, apiKey, model, timeout)
	if err != nil {
		return nil, err
	}
	cleanup.RegisterCloser("gemini client", c)
	return c, nil
}

var newGroqClient = func(apiKey, model, baseURL string, timeout time.Duration) provider.Completer {
	return groq.NewClient(apiKey, model, baseURL, httpclient.NewClient(timeout))
}

// buildGateway creates a client for every provider that has a key. A missing
// key disables that provider only.
func buildGateway(ctx context.Context, cfg config.Config, allowKeychain bool, opts ...provider.Option) (*provider.Gateway, error) {
	clients := make(map[provider.Key]provider.Completer, len(provider.Keys))

	if key, source := apiKey(cfg.GeminiAPIKey, "gemini", allowKeychain); key != "" {
		c, err := newGeminiClient(ctx, key, cfg.GeminiModel, cfg.RequestTimeout)
		if err != nil {
			return nil, err
		}
		clients[provider.Gemini] = c
		logger.Info("Provider enabled", "provider", "gemini", "model", cfg.GeminiModel, "source", source)
	} else {
		logger.Warn("Provider disabled: no API key", "provider", "gemini", "env", auth.EnvVar("gemini"))
	}

	if key, source := apiKey(cfg.GroqAPIKey, "groq", allowKeychain); key != "" {
		clients[provider.Groq] = newGroqClient(key, cfg.GroqModel, cfg.GroqBaseURL, cfg.RequestTimeout)
		logger.Info("Provider enabled", "provider", "groq", "model", cfg.GroqModel, "source", source)
	} else {
		logger.Warn("Provider disabled: no API key", "provider", "groq", "env", auth.EnvVar("groq"))
	}

	return provider.New(clients, opts...), nil
}

func apiKey(fromConfig, service string, allowKeychain bool) (string, string) {
	if fromConfig != "" {
		return fromConfig, auth.SourceEnv
	}
	return resolveKey(service, allowKeychain)
}

func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("Cancellation requested")
			cancel()
		case <-ctx.Done():
		}
	}()
	stop := func() {
		signal.Stop(sigCh)
		cancel()
	}
	return ctx, stop
}
