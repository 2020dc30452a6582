package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("name is required"), KindValidation},
		{"not found", NotFound("Task not found"), KindNotFound},
		{"wrapped not found", fmt.Errorf("deleting: %w", NotFound("Task not found")), KindNotFound},
		{"internal", Internal(errors.New("boom")), KindInternal},
		{"plain error", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, KindValidation.StatusCode())
	assert.Equal(t, http.StatusNotFound, KindNotFound.StatusCode())
	assert.Equal(t, http.StatusInternalServerError, KindInternal.StatusCode())
}

func TestPublicMessage(t *testing.T) {
	t.Run("typed errors expose their message", func(t *testing.T) {
		assert.Equal(t, "Task not found", PublicMessage(NotFound("Task not found")))
		assert.Equal(t, "title is required", PublicMessage(Validation("title is required")))
	})

	t.Run("internal errors are hidden", func(t *testing.T) {
		err := Internal(errors.New("disk on fire"))
		assert.Equal(t, "Internal server error", PublicMessage(err))
		assert.Equal(t, "Internal server error", PublicMessage(errors.New("disk on fire")))
		assert.ErrorContains(t, err, "disk on fire")
	})
}

func TestValidationList(t *testing.T) {
	msgs := []string{"status is required", "status must be one of pending, in-progress, completed"}
	err := ValidationList(msgs)

	assert.Equal(t, KindValidation, err.Kind)
	assert.Equal(t, msgs[0], err.Message)
	assert.Equal(t, msgs, PublicDetails(err))
	assert.Nil(t, PublicDetails(NotFound("x")))

	msgs[0] = "mutated"
	assert.Equal(t, "status is required", err.Details[0])
}

func TestIs(t *testing.T) {
	assert.True(t, Is(NotFound("x"), KindNotFound))
	assert.False(t, Is(Validation("x"), KindNotFound))
	assert.False(t, Is(nil, KindInternal))
}
