package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	errTaken := errors.New("a user with this email already exists")

	t.Run("without cause", func(t *testing.T) {
		err := NewValidationError(nil, FieldError{Field: "title", Error: "this field is required"})
		assert.Equal(t, ValidationFailedMsg, err.Error())

		var ve *ValidationError
		require.True(t, errors.As(errors.Wrap(err, "creating course"), &ve))
		assert.Equal(t, map[string]string{"title": "this field is required"}, ve.FieldMap())
	})

	t.Run("with cause", func(t *testing.T) {
		err := errors.Wrap(NewValidationError(errTaken, FieldError{Field: "email", Error: errTaken.Error()}), "updating user")
		assert.True(t, errors.Is(err, errTaken))
		assert.Equal(t, "updating user: "+errTaken.Error(), err.Error())
	})

	t.Run("field map", func(t *testing.T) {
		ve := ValidationError{Fields: []FieldError{
			{Field: "score", Error: "score cannot exceed max_score"},
			{Field: "score", Error: "ignored"},
			{Field: "title", Error: "this field is required"},
		}}
		assert.Equal(t, map[string]string{"score": "score cannot exceed max_score", "title": "this field is required"}, ve.FieldMap())
		assert.Nil(t, ValidationError{}.FieldMap())
	})
}

func TestIsShutdown(t *testing.T) {
	err := NewShutdownError("integrity issue")
	assert.Equal(t, "shutdown requested: integrity issue", err.Error())
	assert.True(t, IsShutdown(err))
	assert.True(t, IsShutdown(errors.Wrap(err, "seeding")))
	assert.False(t, IsShutdown(errors.New("boom")))
	assert.False(t, IsShutdown(nil))
}
