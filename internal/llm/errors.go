package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	avionerrors "avion/internal/errors"
)

// mapHTTPError classifies a non-2xx provider response into the retry taxonomy.
// Rate limits and 5xx responses are transient; auth and request errors are
// permanent.
func mapHTTPError(statusCode int, body []byte, header http.Header) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > 512 {
		msg = msg[:512]
	}
	base := fmt.Errorf("provider returned %d: %s", statusCode, msg)

	if avionerrors.TransientHTTPStatus(statusCode) {
		transient := &avionerrors.TransientError{
			Err:        base,
			StatusCode: statusCode,
			Message:    fmt.Sprintf("LLM request failed with status %d, will retry", statusCode),
		}
		if header != nil {
			if after := header.Get("Retry-After"); after != "" {
				if seconds, err := strconv.Atoi(after); err == nil && seconds > 0 {
					transient.RetryAfter = seconds
				}
			}
		}
		return transient
	}

	reason := "request rejected"
	switch statusCode {
	case http.StatusUnauthorized:
		reason = "authentication failed, check the API key"
	case http.StatusForbidden:
		reason = "access denied for this model or endpoint"
	case http.StatusNotFound:
		reason = "endpoint or model not found"
	case http.StatusBadRequest:
		reason = "provider rejected the request"
	}
	return &avionerrors.PermanentError{
		Err:        base,
		StatusCode: statusCode,
		Message:    fmt.Sprintf("LLM request failed with status %d: %s", statusCode, reason),
	}
}

// wrapRequestError classifies a transport-level failure. Context cancellation
// passes through unchanged so callers can distinguish shutdown from outage.
func wrapRequestError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if avionerrors.IsTransient(err) {
		return &avionerrors.TransientError{Err: err, Message: fmt.Sprintf("LLM request failed: %v", err)}
	}
	return err
}
