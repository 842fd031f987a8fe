package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:       http.StatusBadRequest,
		KindAlreadyExists:    http.StatusBadRequest,
		KindInvalidOperation: http.StatusBadRequest,
		KindAuth:             http.StatusUnauthorized,
		KindForbidden:        http.StatusForbidden,
		KindNotFound:         http.StatusNotFound,
		KindUnexpected:       http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, Status(kind), kind.String())
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("follow: %w", NotFound("User not found"))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(nil, KindNotFound))

	assert.Equal(t, KindUnexpected, KindOf(errors.New("boom")))
}

func TestUnexpectedKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Unexpected(cause)

	assert.ErrorIs(t, err, cause)
	var appErr *Error
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Server error", appErr.Message)
}
