package log

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func resetDefault(t *testing.T) {
	t.Cleanup(func() {
		NewBuilder().OutType(ConsoleOut).Level(LevelDebug).Build()
	})
}

func TestOutTypeAlias(t *testing.T) {
	tests := []struct {
		name string
		want OutType
	}{
		{"console", ConsoleOut},
		{"file", NormalOut},
		{"Console | track", ConsoleOut | TrackFileOut},
		{"file|track", NormalOutWithTrack},
		{"", ConsoleOut},
		{"unknown", ConsoleOut},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutTypeAlias(tt.name))
		})
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel(" INFO ")
	require.NoError(t, err)
	assert.Equal(t, LevelInfo, level)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestConsoleLevel(t *testing.T) {
	resetDefault(t)
	buf := &bytes.Buffer{}
	NewBuilder().OutType(ConsoleOut).Level(LevelInfo).ConsoleWriter(buf).Build()
	assert.False(t, IsDebugEnabled())

	Debug("hidden %d", 1)
	Info("shown %d", 2)
	assert.NotContains(t, buf.String(), "hidden 1")
	assert.Contains(t, buf.String(), "shown 2")

	ChangeLogLevel(LevelDebug)
	assert.True(t, IsDebugEnabled())
	Debug("now %s", "visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestDebugSwitchCallback(t *testing.T) {
	resetDefault(t)
	NewBuilder().OutType(ConsoleOut).Level(LevelDebug).ConsoleWriter(&bytes.Buffer{}).Build()

	var got []bool
	cb := func(debug bool) {
		got = append(got, debug)
	}
	RegisterDebugSwitchCallback(cb)
	ChangeLogLevel(LevelWarn)
	UnRegisterDebugSwitchCallback(cb)
	ChangeLogLevel(LevelDebug)

	assert.Equal(t, []bool{true, false, false}, got)
}

func TestFileOut(t *testing.T) {
	resetDefault(t)
	dir := t.TempDir()
	NewBuilder().Name("seq").Path(dir).OutType(NormalOutWithTrack).Level(LevelDebug).Build()

	Info("to file")
	Error("went wrong")
	JsonInfo("tracked", zap.Int("n", 2))
	Flush()

	service, err := os.ReadFile(filepath.Join(dir, "seq.log"))
	require.NoError(t, err)
	assert.Contains(t, string(service), "to file")
	assert.Contains(t, string(service), "went wrong")

	errLog, err := os.ReadFile(filepath.Join(dir, "seq-error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errLog), "went wrong")
	assert.NotContains(t, string(errLog), "to file")

	track, err := os.ReadFile(filepath.Join(dir, "seq-track.log"))
	require.NoError(t, err)
	assert.Contains(t, string(track), `"message":"tracked"`)
	assert.Contains(t, string(track), `"n":2`)
}

func TestRotateOut(t *testing.T) {
	resetDefault(t)
	dir := t.TempDir()
	NewBuilder().Path(dir).OutType(InfoFileOut).EnableRotate(true).MaxSize(1).MaxBackUps(2).Build()

	Info("rotated %s", "line")
	Flush()

	data, err := os.ReadFile(filepath.Join(dir, "service.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "rotated line")
}

func TestFields(t *testing.T) {
	f := Fields{"b": 2, "a": "x"}.WithPrefix("seq")
	assert.Equal(t, "[seq] a=x b=2", f.String())
	assert.Equal(t, "seq", f.Prefix())

	merged := f.WithFields(Fields{"c": true})
	assert.Len(t, f, 3)
	assert.Len(t, merged, 4)

	resetDefault(t)
	buf := &bytes.Buffer{}
	NewBuilder().OutType(ConsoleOut).ConsoleWriter(buf).Build()
	merged.Info("hello %d", 7)
	assert.Contains(t, buf.String(), "[seq] a=x b=2 c=true,hello 7")
}

func openFDs(t *testing.T) int {
	entries, err := os.ReadDir("/proc/self/fd")
	require.NoError(t, err)
	return len(entries)
}

func TestRebuildClosesFiles(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("needs /proc/self/fd")
	}
	resetDefault(t)
	dir := t.TempDir()
	NewBuilder().Path(dir).OutType(NormalOutWithTrack).Build()
	before := openFDs(t)
	for i := 0; i < 10; i++ {
		NewBuilder().Path(dir).OutType(NormalOutWithTrack).Build()
		Info("round %d", i)
	}
	assert.Equal(t, before, openFDs(t))

	Flush()
	data, err := os.ReadFile(filepath.Join(dir, "service.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "round 9")
}

func TestTrackIgnoresLevel(t *testing.T) {
	resetDefault(t)
	buf := &bytes.Buffer{}
	NewBuilder().OutType(ConsoleOut).Level(LevelWarn).ConsoleWriter(buf).Build()

	Info("plain")
	JsonInfo("tracked", zap.Int("n", 3))
	assert.NotContains(t, buf.String(), "plain")
	assert.Contains(t, buf.String(), `"message":"tracked"`)
	assert.Contains(t, buf.String(), `"n":3`)
}
