package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := NewTextLogger(&buf, slog.LevelDebug)
	ctx := context.Background()

	log.Debug(ctx, "index loaded", "rows", 3)
	log.Info(ctx, "record opened", "id", "0042")
	log.Warn(ctx, "unknown type", "type", "Scan")
	log.Error(ctx, "save failed", "id", "0001")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)

	tests := []struct {
		level string
		msg   string
		attr  string
	}{
		{"DEBUG", `msg="index loaded"`, "rows=3"},
		{"INFO", `msg="record opened"`, "id=0042"},
		{"WARN", `msg="unknown type"`, "type=Scan"},
		{"ERROR", `msg="save failed"`, "id=0001"},
	}
	for i, tc := range tests {
		assert.Contains(t, lines[i], "level="+tc.level)
		assert.Contains(t, lines[i], tc.msg)
		assert.Contains(t, lines[i], tc.attr)
	}
}

func TestSlogLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewTextLogger(&buf, slog.LevelWarn)

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "hidden too")
	log.Warn(context.Background(), "shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
}

func TestSlogLogger_With(t *testing.T) {
	var buf bytes.Buffer
	base := NewTextLogger(&buf, slog.LevelInfo)

	child := base.With("request_id", "r-9", "user", "admin")
	child.Info(context.Background(), "record opened", "id", "0042")
	base.Info(context.Background(), "plain")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	for _, want := range []string{"request_id=r-9", "user=admin", "id=0042"} {
		assert.Contains(t, lines[0], want)
	}
	assert.NotContains(t, lines[1], "request_id")
}

func TestSlogLogger_SlogAccessor(t *testing.T) {
	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, l, NewSlogLogger(l).Slog())
}
