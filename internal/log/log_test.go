package log

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func withLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetDefault(New(&buf))
	t.Cleanup(func() { SetDefault(nil) })
	return &buf
}

func TestFormat_Fields(t *testing.T) {
	ts := time.Date(2025, 12, 6, 10, 45, 0, 0, time.UTC)

	got := Format(ts, LevelError, CatAPI, "request failed", "status", 500, "tenant")

	require.Equal(t, "2025-12-06T10:45:00 [ERROR] [api] request failed status=500 tenant=<missing>", got)
}

func TestLog_WritesAboveMinLevel(t *testing.T) {
	buf := withLogger(t)
	SetMinLevel(LevelInfo)

	Debug(CatCache, "hidden")
	Info(CatCache, "shown", "key", "get-registrations")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "[INFO] [cache] shown key=get-registrations")
}

func TestLog_Disabled(t *testing.T) {
	buf := withLogger(t)
	SetEnabled(false)

	Error(CatUI, "nothing")

	require.Empty(t, buf.String())
}

func TestErrorErr_AppendsError(t *testing.T) {
	buf := withLogger(t)

	ErrorErr(CatAPI, "delete failed", errors.New("Not Found"), "id", "7")

	require.Contains(t, buf.String(), "delete failed id=7 error=Not Found")
}

func TestRecent_RingBuffer(t *testing.T) {
	withLogger(t)

	for i := range bufferSize + 10 {
		Debug(CatUI, "entry", "i", i)
	}

	recent := Recent(2)
	require.Len(t, recent, 2)
	require.Contains(t, recent[1], "i=509")

	ClearBuffer()
	require.Empty(t, Recent(10))
}

func TestNewListener_ReceivesEntries(t *testing.T) {
	withLogger(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := NewListener(ctx)
	require.NotNil(t, listener)

	Warn(CatMock, "slow request")

	event, ok := listener.Listen()().(LogEvent)
	require.True(t, ok)
	require.Contains(t, event.Payload, "[WARN] [mock] slow request")
}

func TestNoLogger_IsNoop(t *testing.T) {
	SetDefault(nil)

	require.NotPanics(t, func() { Info(CatUI, "dropped") })
	require.Nil(t, NewListener(context.Background()))
	require.Nil(t, Recent(5))
}
