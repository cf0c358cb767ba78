package sl

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecret(t *testing.T) {
	assert.Equal(t, "?", Secret("").Value.String())
	assert.Equal(t, "***", Secret("abc").Value.String())
	assert.Equal(t, "abcde***", Secret("abcdefgh").Value.String())
}

func TestErr(t *testing.T) {
	attr := Err(errors.New("boom"))
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, "boom", attr.Value.String())
}

func TestSetupLogger(t *testing.T) {
	ctx := context.Background()

	assert.True(t, SetupLogger(EnvLocal).Enabled(ctx, slog.LevelDebug))
	assert.True(t, SetupLogger(EnvDev).Enabled(ctx, slog.LevelDebug))
	assert.False(t, SetupLogger(EnvProd).Enabled(ctx, slog.LevelDebug))
	assert.False(t, SetupLogger("").Enabled(ctx, slog.LevelDebug))
}
