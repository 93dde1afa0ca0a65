// Package provider routes a prompt to one of the configured model providers.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/codepix/codepix/internal/apperrors"
)

// Key identifies a supported provider.
type Key int

const (
	Gemini Key = iota + 1
	Groq
)

// Default is used when a request names no provider.
const Default = Gemini

// Keys lists every supported provider in display order.
var Keys = []Key{Gemini, Groq}

func (k Key) String() string {
	switch k {
	case Gemini:
		return "gemini"
	case Groq:
		return "groq"
	default:
		return fmt.Sprintf("provider(%d)", int(k))
	}
}

// ParseKey resolves a provider name case-insensitively.
func ParseKey(name string) (Key, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gemini":
		return Gemini, nil
	case "groq":
		return Groq, nil
	default:
		return 0, apperrors.UnsupportedProvider(fmt.Sprintf(
			"Unsupported model provider: %s. Supported providers are 'gemini' and 'groq'.", name))
	}
}

// Completer is a text-completion client pinned to one model.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Response is the raw provider output.
type Response struct {
	Text  string
	Model string
}

// Gateway dispatches prompts to provider clients fixed at construction.
type Gateway struct {
	clients  map[Key]Completer
	observer Observer
}

// Observer is notified after every provider call that reached a client.
type Observer func(key Key, model string, err error, seconds float64)

type Option func(*Gateway)

// WithObserver installs a callback used for metrics.
func WithObserver(o Observer) Option {
	return func(g *Gateway) {
		g.observer = o
	}
}

// New builds a gateway. A provider whose entry is missing or nil is treated
// as not configured.
func New(clients map[Key]Completer, opts ...Option) *Gateway {
	g := &Gateway{clients: make(map[Key]Completer, len(clients))}
	for k, c := range clients {
		if c != nil {
			g.clients[k] = c
		}
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Configured reports which providers have a client.
func (g *Gateway) Configured() map[Key]bool {
	out := make(map[Key]bool, len(Keys))
	for _, k := range Keys {
		_, ok := g.clients[k]
		out[k] = ok
	}
	return out
}

// Call sends prompt to the provider named by key and returns its raw text and
// the model that produced it.
func (g *Gateway) Call(ctx context.Context, key string, prompt string) (Response, error) {
	k, err := ParseKey(key)
	if err != nil {
		return Response{}, err
	}
	client, ok := g.clients[k]
	if !ok {
		return Response{}, apperrors.ProviderUnavailable(unavailableMessage(k))
	}

	start := timeNow()
	text, err := client.Complete(ctx, prompt)
	if g.observer != nil {
		g.observer(k, client.Model(), err, timeNow().Sub(start).Seconds())
	}
	if err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			return Response{}, err
		}
		return Response{}, apperrors.ProviderCallFailed(k.String(), err)
	}
	return Response{Text: text, Model: client.Model()}, nil
}

func unavailableMessage(k Key) string {
	return fmt.Sprintf("%s client not available. Please check %s_API_KEY environment variable.",
		displayName(k), strings.ToUpper(k.String()))
}

func displayName(k Key) string {
	switch k {
	case Gemini:
		return "Gemini"
	case Groq:
		return "Groq"
	default:
		return k.String()
	}
}
