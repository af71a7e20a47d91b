package gcs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestNewStore_EmptyBucket(t *testing.T) {
	_, err := NewStore(context.Background(), "")
	assert.Error(t, err)
}

func TestIsPreconditionFailed(t *testing.T) {
	precondition := &googleapi.Error{Code: http.StatusPreconditionFailed}
	assert.True(t, isPreconditionFailed(precondition))
	assert.True(t, isPreconditionFailed(fmt.Errorf("write: %w", precondition)))
	assert.False(t, isPreconditionFailed(&googleapi.Error{Code: http.StatusForbidden}))
	assert.False(t, isPreconditionFailed(errors.New("boom")))
}
