package obs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTime(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)
	ctx := WithRequestID(context.Background(), "req-1")

	var err error
	Time(ctx, log, "ok.op")(&err)

	err = errors.New("boom")
	Time(ctx, log, "bad.op")(&err)

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
		assert.Equal(t, "ok.op", entries[0].ContextMap()["op"])
		assert.Equal(t, "req-1", entries[0].ContextMap()["req_id"])

		assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
		assert.Equal(t, "boom", entries[1].ContextMap()["error"])
	}
}
