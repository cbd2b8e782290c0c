package logger

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" warn "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("qualquer"))
}

func TestOu_QuandoNil_DeveUsarPadrao(t *testing.T) {
	custom := slog.Default()

	assert.Same(t, custom, Ou(custom))
	assert.Same(t, L(), Ou(nil))
}
