package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("load state: %w", Wrap(errors.New("dial tcp"), ErrDataFetch.Code, ErrDataFetch.Status, "failed to load assignments"))

	appErr := FromError(wrapped)
	assert.Equal(t, ErrDataFetch.Code, appErr.Code)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Status)
	assert.Equal(t, "failed to load assignments: dial tcp", appErr.Error())
}

func TestFromErrorNormalisesUnknownErrors(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Nil(t, FromError(nil))
}

func TestCloneOverridesMessageOnly(t *testing.T) {
	clone := Clone(ErrNotFound, "assignment not found")
	assert.Equal(t, "assignment not found", clone.Message)
	assert.Equal(t, ErrNotFound.Code, clone.Code)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("latest plan: %w", Clone(ErrNotFound, "no plan available"))

	assert.True(t, HasCode(err, ErrNotFound))
	assert.False(t, HasCode(err, ErrDataFetch))
	assert.False(t, HasCode(errors.New("plain"), ErrNotFound))
	assert.False(t, HasCode(nil, ErrNotFound))
}
