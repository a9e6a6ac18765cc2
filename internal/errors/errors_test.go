package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_MatchesByCode(t *testing.T) {
	first := SemanticUnavailable(fmt.Errorf("connection refused"))
	second := SemanticUnavailable(nil)

	assert.True(t, errors.Is(first, second))
	assert.False(t, errors.Is(first, CorpusNotReady()))
}

func TestError_UnwrapsThroughWrapping(t *testing.T) {
	cause := New(CodeEmbedTimeout, "embed call timed out", nil)
	wrapped := fmt.Errorf("query %q: %w", "button", SemanticUnavailable(cause))

	assert.True(t, IsCode(wrapped, CodeSemanticUnavailable))
	assert.Equal(t, CodeSemanticUnavailable, Code(wrapped))
	assert.True(t, errors.Is(wrapped, cause))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(New(CodeEmbedTimeout, "deadline", nil)))
	assert.True(t, IsRetryable(New(CodeEmbedRateLimited, "429", nil)))
	assert.False(t, IsRetryable(SemanticUnavailable(nil)))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.False(t, IsRetryable(nil))
}

func TestError_Message(t *testing.T) {
	bare := New(CodeCorpusNotReady, "corpus index has not been built", nil)
	assert.Equal(t, "[ERR_CORPUS_NOT_READY] corpus index has not been built", bare.Error())

	withCause := New(CodeInvalidCorpus, "decode corpus", errors.New("unexpected EOF"))
	assert.Equal(t, "[ERR_INVALID_CORPUS] decode corpus: unexpected EOF", withCause.Error())
	assert.Equal(t, "unexpected EOF", withCause.Unwrap().Error())
}
