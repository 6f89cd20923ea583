package error

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	cause := errors.New("connection refused")
	err := New(TransportError, "dial failed", cause)

	assert.Equal(t, "dial failed: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "timed out after 3s", Newf(TimeoutError, "timed out after %ds", 3).Error())
}

func TestIsMatchesSentinels(t *testing.T) {
	sentinel := New(ValidationError, "not connected", nil)
	wrapped := fmt.Errorf("list: %w", New(ValidationError, "not connected", nil))

	assert.ErrorIs(t, wrapped, sentinel)
	assert.NotErrorIs(t, wrapped, New(ValidationError, "other", nil))
	assert.NotErrorIs(t, wrapped, New(ProtocolError, "not connected", nil))
}

func TestIsType(t *testing.T) {
	err := fmt.Errorf("loading: %w", New(ConfigError, "bad", nil))
	assert.True(t, IsType(err, ConfigError))
	assert.False(t, IsType(err, FileError))
	assert.False(t, IsType(errors.New("plain"), ConfigError))
	assert.False(t, IsType(nil, ConfigError))
}

func TestErrorTypeString(t *testing.T) {
	assert.Equal(t, "transport", TransportError.String())
	assert.Equal(t, "timeout", TimeoutError.String())
	assert.Equal(t, "unknown", ErrorType(99).String())
}
