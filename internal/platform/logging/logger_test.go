package logging

import (
	"context"
	"io"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newTestLogger(level Level) *Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zapcore.EncoderConfig{MessageKey: "msg", LevelKey: "level"}),
		zapcore.AddSync(io.Discard),
		level,
	)
	return FromZap(zap.New(core))
}

func TestMirrorReceivesAcceptedRecords(t *testing.T) {
	t.Cleanup(func() { SetMirror(nil) })

	type record struct {
		level Level
		msg   string
		args  []any
	}
	var got []record
	SetMirror(func(ctx context.Context, level Level, msg string, args ...any) {
		got = append(got, record{level: level, msg: msg, args: args})
	})

	logger := newTestLogger(LevelInfo)
	logger.InfoContext(context.Background(), "standings updated", "league_key", "velocity")
	logger.Info("poll finished", "changed", 2)

	if len(got) != 2 {
		t.Fatalf("expected 2 mirrored records, got %d", len(got))
	}
	if got[0].msg != "standings updated" || got[0].level != LevelInfo {
		t.Fatalf("unexpected first record: %+v", got[0])
	}
	if len(got[1].args) != 2 || got[1].args[0] != "changed" {
		t.Fatalf("unexpected args on second record: %+v", got[1].args)
	}
}

func TestMirrorSkipsFilteredRecords(t *testing.T) {
	t.Cleanup(func() { SetMirror(nil) })

	calls := 0
	SetMirror(func(ctx context.Context, level Level, msg string, args ...any) {
		calls++
	})

	logger := newTestLogger(LevelWarn)
	logger.Debug("below threshold")
	logger.Info("still below threshold")

	if calls != 0 {
		t.Fatalf("expected no mirrored records, got %d", calls)
	}
}

func TestSetMirrorNilClears(t *testing.T) {
	calls := 0
	SetMirror(func(ctx context.Context, level Level, msg string, args ...any) {
		calls++
	})
	SetMirror(nil)

	logger := newTestLogger(LevelDebug)
	logger.Warn("after clear")

	if calls != 0 {
		t.Fatalf("expected mirror to be cleared, got %d calls", calls)
	}
}
