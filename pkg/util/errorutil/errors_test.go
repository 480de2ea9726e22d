package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	notFound := NewNotFound("grievance", map[string]any{"id": "x"})
	wrapped := fmt.Errorf("load: %w", notFound)
	de := ToDomainError(wrapped)
	require.NotNil(t, de)
	assert.Equal(t, "NOT_FOUND", de.Code)
	assert.Equal(t, "grievance not found", de.Message)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)

	plain := errors.New("connection reset")
	de = ToDomainError(plain)
	assert.Equal(t, "INTERNAL_ERROR", de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.ErrorIs(t, de, plain)
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NewConflict("exists", nil))
	assert.True(t, IsCode(err, "CONFLICT"))
	assert.False(t, IsCode(err, "NOT_FOUND"))
	assert.False(t, IsCode(errors.New("plain"), "CONFLICT"))
}

func TestFromStatus(t *testing.T) {
	cases := []struct {
		status int
		code   string
	}{
		{http.StatusBadRequest, "VALIDATION_FAILED"},
		{http.StatusUnauthorized, "UNAUTHORIZED"},
		{http.StatusForbidden, "FORBIDDEN"},
		{http.StatusNotFound, "NOT_FOUND"},
		{http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
		{http.StatusConflict, "CONFLICT"},
		{http.StatusTeapot, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		de := FromStatus(tc.status, "msg")
		assert.Equal(t, tc.code, de.Code, tc.status)
		assert.Equal(t, tc.status, de.HTTPStatus)
	}

	de := FromStatus(http.StatusBadGateway, "upstream exploded")
	assert.Equal(t, "internal server error", de.Message)
}

func TestNewFieldValidationError(t *testing.T) {
	err := NewFieldValidationError([]FieldError{{Field: "phone", Message: "Phone number must be 10 digits"}})
	de := ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	fields, ok := de.Details["errors"].([]FieldError)
	require.True(t, ok)
	assert.Equal(t, "phone", fields[0].Field)
}
