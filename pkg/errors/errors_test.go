package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "rejected error (code 404): not found", New(ErrorTypeRejected, 404, "not found").Error())
	assert.Equal(t, "network error: dial failed", New(ErrorTypeNetwork, 0, "dial %s", "failed").Error())
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(ErrorTypeStorage, cause, "failed to write %s", "a.json")

	assert.Equal(t, "storage error: failed to write a.json: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestTypeAndCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("fetch 241/x: %w", New(ErrorTypeRejected, 500, "server error"))

	assert.Equal(t, ErrorTypeRejected, TypeOf(wrapped))
	assert.Equal(t, 500, CodeOf(wrapped))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(errors.New("plain")))
	assert.Equal(t, 0, CodeOf(errors.New("plain")))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrorTypeNetwork))
	for _, typ := range []ErrorType{ErrorTypeRejected, ErrorTypeMalformed, ErrorTypeStorage, ErrorTypeInvalid, ErrorTypeUnknown} {
		assert.False(t, IsRetryable(typ), typ)
	}
}
