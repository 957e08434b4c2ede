package backend

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a remote failure once, at the boundary, so callers can
// branch on a value instead of re-parsing message strings.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidCredentials
	KindAlreadyExists
	KindNotFound
	KindUnauthorized
	KindMissingScope
	KindSessionActive
	KindRateLimited
)

// Error is the normalized form of a remote API failure.
type Error struct {
	Kind    Kind
	Status  int
	Code    string // remote error type code, e.g. "user_already_exists"
	Message string // remote message, verbatim
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend: %s (%s)", e.Message, e.Code)
	}
	return "backend: " + e.Message
}

// UserMessage maps known failure kinds to user-facing sentences and passes
// anything unrecognized through verbatim.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindInvalidCredentials:
		return "Invalid email or password. Please try again."
	case KindAlreadyExists:
		return "An account with this email already exists."
	case KindNotFound:
		return "The requested content was not found."
	case KindUnauthorized, KindMissingScope:
		return "You don't have permission to perform this action."
	case KindRateLimited:
		return "Too many requests. Please wait a moment and try again."
	}
	if e.Message != "" {
		return e.Message
	}
	return "An unexpected error occurred. Please try again."
}

// KindOf extracts the failure kind from err, or KindUnknown for anything
// that is not a backend error.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// classify decides the kind from the remote error type code first and falls
// back to known message substrings for older backend versions.
func classify(status int, code, message string) Kind {
	switch code {
	case "user_invalid_credentials":
		return KindInvalidCredentials
	case "user_already_exists", "document_already_exists":
		return KindAlreadyExists
	case "user_session_already_exists":
		return KindSessionActive
	case "general_unauthorized_scope":
		return KindMissingScope
	case "general_rate_limit_exceeded":
		return KindRateLimited
	}
	if strings.HasSuffix(code, "_not_found") {
		return KindNotFound
	}

	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "invalid credentials"):
		return KindInvalidCredentials
	case strings.Contains(lower, "already exists"):
		return KindAlreadyExists
	case strings.Contains(lower, "session is active"), strings.Contains(lower, "session already"):
		return KindSessionActive
	case strings.Contains(lower, "missing scope"):
		return KindMissingScope
	case strings.Contains(lower, "not found"):
		return KindNotFound
	case strings.Contains(lower, "unauthorized"):
		return KindUnauthorized
	}

	switch status {
	case 401:
		return KindUnauthorized
	case 404:
		return KindNotFound
	case 409:
		return KindAlreadyExists
	case 429:
		return KindRateLimited
	}
	return KindUnknown
}
