package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMessage(t *testing.T) {
	err := NewListingError("gh repo list failed", errors.New("exit status 1"))
	assert.Equal(t, "LISTING_FAILED: gh repo list failed (exit status 1)", err.Error())

	assert.Equal(t, "NOT_FOUND: run abc not found", NewNotFoundError("run abc").Error())
}

func TestHasCodeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("sync: %w", NewListingError("boom", nil))

	assert.True(t, IsListingFailure(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.False(t, HasCode(errors.New("plain"), ErrCodeInternal))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := NewInternalError("storage", cause)

	assert.ErrorIs(t, err, cause)
}
