package logger

import (
	"bytes"
	"log"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureLog points the standard logger at a buffer for the test's duration.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	out, flags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(out)
		log.SetFlags(flags)
	})
	return &buf
}

func TestEnvLogger_DebugGate(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		wantLine bool
	}{
		{"enabled", "1", true},
		{"any value enables", "yes", true},
		{"empty disables", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)
			t.Setenv(DebugEnv, tt.env)

			NewEnvLogger("[api]").Debug("GET %s", "/api/metrics")

			if tt.wantLine {
				assert.Equal(t, "[api] GET /api/metrics\n", buf.String())
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestEnvLogger_LevelPrefixes(t *testing.T) {
	tests := []struct {
		name string
		emit func(Logger)
		want string
	}{
		{"info has no tag", func(l Logger) { l.Info("session %s started", "abc") }, "[monitor] session abc started\n"},
		{"warn tagged", func(l Logger) { l.Warn("metrics poll #%d failed", 3) }, "[monitor] WARN: metrics poll #3 failed\n"},
		{"error tagged", func(l Logger) { l.Error("boom") }, "[monitor] ERROR: boom\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)
			t.Setenv(DebugEnv, "")

			tt.emit(NewEnvLogger("[monitor]"))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestEnvLogger_NoPrefix(t *testing.T) {
	buf := captureLog(t)

	NewEnvLogger("").Warn("late result ignored")
	assert.Equal(t, "WARN: late result ignored\n", buf.String())
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "debug", LevelDebug.String())
	assert.Equal(t, "error", LevelError.String())
	assert.Equal(t, "level(9)", Level(9).String())
}

func TestNoop(t *testing.T) {
	buf := captureLog(t)

	l := Noop()
	l.Debug("debug")
	l.Info("info")
	l.Warn("warn")
	l.Error("error")

	assert.Empty(t, buf.String())
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()

	l.Debug("dropping stale response #%d", 4)
	l.Warn("terminate pid %d failed", 77)

	require.Len(t, l.Messages, 2)
	assert.Equal(t, LogMessage{Level: "debug", Message: "dropping stale response #4"}, l.Messages[0])
	assert.Equal(t, LogMessage{Level: "warn", Message: "terminate pid 77 failed"}, l.Messages[1])

	assert.True(t, l.HasLevel("warn"))
	assert.False(t, l.HasLevel("error"))
	assert.True(t, l.Contains("pid 77"))
	assert.False(t, l.Contains("pid 78"))

	snap := l.Snapshot()
	l.Clear()
	assert.Empty(t, l.Messages)
	assert.Len(t, snap, 2, "snapshot is a copy")
}

func TestBufferLogger_ConcurrentWrites(t *testing.T) {
	l := NewBufferLogger()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			l.Debug("poll %d", n)
		}(i)
	}
	wg.Wait()

	assert.Len(t, l.Snapshot(), 20)
}

func TestImplementations(t *testing.T) {
	var _ Logger = NewEnvLogger("")
	var _ Logger = Noop()
	var _ Logger = NewBufferLogger()
}
