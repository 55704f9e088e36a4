// file: apperrors/apperrors_test.go
package apperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test: constructors tag errors with the right kind
func TestConstructors_Kinds(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("bad input")))
	assert.Equal(t, KindPermission, KindOf(Permission("no", nil)))
	assert.Equal(t, KindInvalidCredential, KindOf(InvalidCredential("nope")))
	assert.Equal(t, KindRateLimited, KindOf(RateLimited("slow down")))
	assert.Equal(t, KindNotFound, KindOf(NotFound("missing")))
	assert.Equal(t, KindUnavailable, KindOf(Unavailable("down", nil)))
}

// Test: Wrap keeps an already-classified error's kind and message
func TestWrap_PassesThroughClassifiedErrors(t *testing.T) {
	original := Validation("Please upload a photo before registering.")
	wrapped := Wrap("save failed", original)

	assert.Equal(t, KindValidation, wrapped.Kind)
	assert.Equal(t, original.Message, wrapped.Message)
}

// Test: Wrap tags plain errors as unknown and keeps the cause
func TestWrap_TagsPlainErrors(t *testing.T) {
	cause := errors.New("disk full")
	wrapped := Wrap("save failed", cause)

	assert.Equal(t, KindUnknown, wrapped.Kind)
	assert.ErrorIs(t, wrapped, cause)
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("anything")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestIsKind(t *testing.T) {
	err := RateLimited("locked")
	assert.True(t, IsKind(err, KindRateLimited))
	assert.False(t, IsKind(err, KindValidation))
	assert.False(t, IsKind(nil, KindRateLimited))
}

// Test: UserMessage never leaks internals from unclassified errors
func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Invalid email or password.", UserMessage(InvalidCredential("Invalid email or password.")))
	assert.Equal(t, "Something went wrong. Please try again.", UserMessage(errors.New("pq: connection refused")))
}
