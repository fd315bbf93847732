package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneMatchesSentinel(t *testing.T) {
	cloned := Clone(ErrVersionConflict, "class record changed concurrently, retry the request")

	assert.True(t, errors.Is(cloned, ErrVersionConflict))
	assert.Equal(t, http.StatusConflict, cloned.Status)
	assert.Equal(t, "class record changed concurrently, retry the request", cloned.Message)
	// The sentinel keeps its original message.
	assert.Equal(t, "class record changed concurrently", ErrVersionConflict.Message)
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	wrapped := Wrap(cause, ErrInternal.Code, ErrInternal.Status, "failed to load class")

	assert.True(t, errors.Is(wrapped, cause))
	assert.True(t, errors.Is(wrapped, ErrInternal))
	assert.Contains(t, wrapped.Error(), "failed to load class")
	assert.Contains(t, wrapped.Error(), "connection refused")
}

func TestFromError(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	require.NotNil(t, appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)

	same := FromError(ErrForbidden)
	assert.Equal(t, ErrForbidden, same)

	assert.Nil(t, FromError(nil))
}
