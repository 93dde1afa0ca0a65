package apperrors

import (
	"errors"
	"net/http"
	"strings"
)

type Kind string

const (
	// KindValidation marks a missing or malformed request field.
	KindValidation Kind = "validation"
	// KindUnsupportedProvider marks a provider key outside the known set.
	KindUnsupportedProvider Kind = "unsupported_provider"
	// KindProviderUnavailable marks a known provider whose client was never configured.
	KindProviderUnavailable Kind = "provider_unavailable"
	// KindProviderCallFailed marks a transport or upstream failure during a provider call.
	KindProviderCallFailed Kind = "provider_call_failed"
)

type Error struct {
	Kind Kind
	// SafeMessage is returned to API callers and written to logs.
	SafeMessage string
	// Cause keeps the original internal error for troubleshooting.
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if msg := strings.TrimSpace(e.SafeMessage); msg != "" {
		return msg
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func defaultSafeMessage(kind Kind) string {
	switch kind {
	case KindValidation:
		return "Invalid request."
	case KindUnsupportedProvider:
		return "Unsupported model provider."
	case KindProviderUnavailable:
		return "Model provider is not available."
	case KindProviderCallFailed:
		return "Model provider request failed."
	default:
		return "Request failed."
	}
}

func New(kind Kind, safeMessage string, cause error) error {
	msg := strings.TrimSpace(safeMessage)
	if msg == "" {
		msg = defaultSafeMessage(kind)
	}
	return &Error{
		Kind:        kind,
		SafeMessage: msg,
		Cause:       cause,
	}
}

func Validation(msg string) error {
	return New(KindValidation, msg, nil)
}

func UnsupportedProvider(msg string) error {
	return New(KindUnsupportedProvider, msg, nil)
}

func ProviderUnavailable(msg string) error {
	return New(KindProviderUnavailable, msg, nil)
}

// ProviderCallFailed wraps an upstream error, keeping its text in the public message.
func ProviderCallFailed(provider string, err error) error {
	if err == nil {
		return nil
	}
	return New(KindProviderCallFailed, provider+" request failed: "+err.Error(), err)
}

func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Kind, true
}

func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}

// HTTPStatus maps an error to the status code the API responds with.
// Errors without a kind are internal failures.
func HTTPStatus(err error) int {
	kind, ok := KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case KindValidation, KindUnsupportedProvider:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
