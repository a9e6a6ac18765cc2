// Package errors defines the structured error type shared across the
// retrieval engine. Errors carry a stable code so callers can branch on
// failure class without string matching, and a retryable flag consumed
// by the semantic retriever's retry policy.
package errors

import (
	"errors"
	"fmt"
)

// Error codes. The set mirrors the engine's failure taxonomy: only
// CodeCorpusNotReady surfaces to callers as a hard failure; everything
// else is absorbed into a degraded-but-successful response.
const (
	// CodeCorpusNotReady: engine invoked before a corpus snapshot was
	// published. Fatal for the request.
	CodeCorpusNotReady = "ERR_CORPUS_NOT_READY"

	// CodeInvalidCorpus: corpus file missing, unreadable, or failed
	// validation (duplicate IDs, dimension mismatch).
	CodeInvalidCorpus = "ERR_INVALID_CORPUS"

	// CodeSemanticUnavailable: embedding or vector search failed after
	// retries. Recovered locally via lexical-only fusion.
	CodeSemanticUnavailable = "ERR_SEMANTIC_UNAVAILABLE"

	// CodeEmbedTimeout: one embedding call exceeded its deadline.
	// Retryable; becomes CodeSemanticUnavailable on exhaustion.
	CodeEmbedTimeout = "ERR_EMBED_TIMEOUT"

	// CodeEmbedRateLimited: provider rejected the call with a rate
	// limit. Retryable.
	CodeEmbedRateLimited = "ERR_EMBED_RATE_LIMITED"

	// CodeRetrievalUnavailable: the request as a whole cannot be served.
	CodeRetrievalUnavailable = "ERR_RETRIEVAL_UNAVAILABLE"
)

var retryableCodes = map[string]bool{
	CodeEmbedTimeout:     true,
	CodeEmbedRateLimited: true,
}

// Error is the structured error type for the retrieval engine.
type Error struct {
	Code      string
	Message   string
	Cause     error
	Retryable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error { return e.Cause }

// Is matches by code so errors.Is works across wrapped instances.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

// New creates an Error with the given code and message. The retryable
// flag is derived from the code.
func New(code, message string, cause error) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: retryableCodes[code],
	}
}

// CorpusNotReady reports a query against an unbuilt corpus.
func CorpusNotReady() *Error {
	return New(CodeCorpusNotReady, "corpus index has not been built", nil)
}

// SemanticUnavailable reports semantic search failure after retries.
func SemanticUnavailable(cause error) *Error {
	return New(CodeSemanticUnavailable, "semantic search unavailable", cause)
}

// RetrievalUnavailable wraps a fatal retrieval failure for the caller.
func RetrievalUnavailable(cause error) *Error {
	return New(CodeRetrievalUnavailable, "retrieval unavailable", cause)
}

// IsRetryable reports whether err is a retryable engine error.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// Code extracts the error code from anywhere in the chain, or "" for
// foreign errors.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given code anywhere in its
// chain.
func IsCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
