package logging

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]Level{
		"debug":   LevelDebug,
		"WARN":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestLogger_KeyValueFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core)).Named("bets").With("league_id", "l1")

	logger.Warn("bet rejected", "user_id", "u1", "error", errors.New("deadline passed"), "dangling")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["league_id"] != "l1" || fields["user_id"] != "u1" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
	if fields["error"] != "deadline passed" {
		t.Fatalf("expected error field, got %+v", fields["error"])
	}
	if _, ok := fields["dangling"]; !ok {
		t.Fatalf("expected dangling key to be kept")
	}
	if entries[0].LoggerName != "bets" {
		t.Fatalf("unexpected logger name %q", entries[0].LoggerName)
	}
}

func TestLogger_ContextAddsTraceIDs(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core))

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.InfoContext(ctx, "standings recomputed")
	logger.DebugContext(ctx, "filtered by level")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["trace_id"] != traceID.String() || fields["span_id"] != spanID.String() {
		t.Fatalf("missing trace fields: %+v", fields)
	}
}

func TestNilLoggerFallsBack(t *testing.T) {
	t.Parallel()

	var logger *Logger
	logger.Info("no panic")
	if logger.With("k", "v") == nil {
		t.Fatalf("expected nop logger from nil receiver")
	}
}

func TestSetMirror_ReceivesBoundAndCallArgs(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core)).With("component", "bot_loop")

	var gotMsg string
	var gotArgs []any
	SetMirror(func(_ context.Context, level Level, msg string, args ...any) {
		if level != LevelWarn {
			t.Errorf("unexpected level %s", level)
		}
		gotMsg = msg
		gotArgs = args
	})
	defer SetMirror(nil)

	logger.WarnContext(context.Background(), "tick failed", "attempt", 2)
	logger.DebugContext(context.Background(), "below level")

	if gotMsg != "tick failed" {
		t.Fatalf("unexpected mirrored message %q", gotMsg)
	}
	if len(gotArgs) != 4 || gotArgs[0] != "component" || gotArgs[3] != 2 {
		t.Fatalf("unexpected mirrored args %v", gotArgs)
	}
}
