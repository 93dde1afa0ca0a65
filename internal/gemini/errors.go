package gemini

import (
	"errors"
	"fmt"
	"strings"

	"github.com/codepix/codepix/internal/apperrors"
	"google.golang.org/api/googleapi"
)

func classifyGeminiError(err error) error {
	if err == nil {
		return nil
	}

	wrapped := fmt.Errorf("gemini generate content failed: %w", err)

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		var summary string
		switch {
		case gerr.Code == 404:
			summary = "model not found or no access (404)"
		case gerr.Code == 400:
			summary = "request rejected (400)"
		case gerr.Code == 401 || gerr.Code == 403:
			summary = fmt.Sprintf("authentication/authorization failed (%d)", gerr.Code)
		case gerr.Code == 429:
			summary = "rate limit exceeded (429)"
		case gerr.Code >= 500:
			summary = fmt.Sprintf("service error (%d)", gerr.Code)
		default:
			summary = fmt.Sprintf("API error (%d)", gerr.Code)
		}
		if detail := strings.TrimSpace(gerr.Message); detail != "" {
			summary += ": " + detail
		}
		return apperrors.New(apperrors.KindProviderCallFailed, "gemini request failed: "+summary, wrapped)
	}

	// DNS, socket, timeout and empty-response failures keep their own text.
	return apperrors.New(apperrors.KindProviderCallFailed, "gemini request failed: "+err.Error(), wrapped)
}
