package log

import (
	"bytes"
	"errors"
	"io"
	"net/url"
	"sync"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"go.uber.org/zap"
)

const logTestWriterName = "testwriter:"

var (
	logTestWriterMu sync.Mutex
	logTestWriter   io.Writer = io.Discard
)

type testSink struct{}

func (testSink) Write(p []byte) (int, error) {
	logTestWriterMu.Lock()
	defer logTestWriterMu.Unlock()
	return logTestWriter.Write(p)
}
func (testSink) Sync() error  { return nil }
func (testSink) Close() error { return nil }

func init() {
	if err := zap.RegisterSink("testwriter", func(*url.URL) (zap.Sink, error) {
		return testSink{}, nil
	}); err != nil {
		panic(err)
	}
}

func setTestWriter(w io.Writer) {
	logTestWriterMu.Lock()
	defer logTestWriterMu.Unlock()
	logTestWriter = w
}

var errSample = errors.New("some error")

func doLogs() {
	Infof("fetched %d elections from %s", 3, "http://127.0.0.1:8080")
	Debugw("query settled", "key", "ELECTION_RESULTS/abc", "took", 20*time.Millisecond)
	Errorf("cannot fetch election results: %v", errSample)
	Warnw("stale cache entry", "key", "SEARCH_BALLOTS/abc/tr", "age", time.Minute)
}

func TestLoggerOutput(t *testing.T) {
	var buf bytes.Buffer
	setTestWriter(&buf)
	defer setTestWriter(io.Discard)
	Init("debug", logTestWriterName)

	doLogs()

	got := buf.String()
	qt.Assert(t, got, qt.Contains, "fetched 3 elections from http://127.0.0.1:8080")
	qt.Assert(t, got, qt.Contains, "query settled")
	qt.Assert(t, got, qt.Contains, `"key": "ELECTION_RESULTS/abc"`)
	qt.Assert(t, got, qt.Contains, "cannot fetch election results: some error")
	qt.Assert(t, got, qt.Contains, "log_test.go")
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	setTestWriter(&buf)
	defer setTestWriter(io.Discard)
	Init("warn", logTestWriterName)
	qt.Assert(t, Level(), qt.Equals, "warn")

	Info("not shown")
	Debugf("not shown either %d", 1)
	Warn("shown")
	qt.Assert(t, buf.String(), qt.Not(qt.Contains), "not shown")
	qt.Assert(t, buf.String(), qt.Contains, "shown")

	buf.Reset()
	SetLevel("debug")
	qt.Assert(t, Level(), qt.Equals, "debug")
	Debug("now visible")
	qt.Assert(t, buf.String(), qt.Contains, "now visible")
}

func BenchmarkLogger(b *testing.B) {
	setTestWriter(io.Discard)
	Init("debug", logTestWriterName)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		doLogs()
	}
}
