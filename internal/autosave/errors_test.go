package autosave

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPersistenceError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, fallbackMessage},
		{"empty", errors.New(""), fallbackMessage},
		{"message", errors.New("quota exceeded"), "quota exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := &PersistenceError{Err: tt.err}
			assert.Equal(t, tt.want, pe.Message())
			assert.Equal(t, "persist draft: "+tt.want, pe.Error())
		})
	}
}

func TestPersistenceError_Unwrap(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := fmt.Errorf("attempt 3: %w", &PersistenceError{Err: cause})

	assert.ErrorIs(t, err, cause)
	var pe *PersistenceError
	assert.ErrorAs(t, err, &pe)
}

func TestNotFoundError_Is(t *testing.T) {
	err := fmt.Errorf("restore: %w", &NotFoundError{ID: "abc"})

	assert.ErrorIs(t, err, ErrVersionNotFound)
	assert.NotErrorIs(t, err, ErrOffline)
	assert.Contains(t, err.Error(), `"abc"`)
}

func TestIsConnectivityError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("rejected"), false},
		{"sentinel", fmt.Errorf("upload: %w", ErrConnectivity), true},
		{"bad conn", fmt.Errorf("exec: %w", driver.ErrBadConn), true},
		{"net error", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, true},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConnectivityError(tt.err))
		})
	}
}
