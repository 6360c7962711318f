package server

import (
	"bufio"
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// lineWriter turns callback invocations into NDJSON lines. A failed write
// cancels the inference feeding it. Nothing is written after the closing line.
type lineWriter struct {
	w      *bufio.Writer
	cancel context.CancelFunc
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
}

func (l *lineWriter) write(line StreamLine, last bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = last

	data, err := json.Marshal(line)
	if err != nil {
		l.logger.Error("failed to marshal stream line", zap.Error(err))
		return
	}

	l.w.Write(data)
	l.w.WriteByte('\n')
	if err := l.w.Flush(); err != nil {
		l.logger.Warn("client went away", zap.Error(err))
		l.closed = true
		l.cancel()
	}
}

// OnStreamReceived implements dispatch.Callback.
func (l *lineWriter) OnStreamReceived(chunk string) {
	l.write(StreamLine{Type: LineChunk, Text: chunk}, false)
}

// OnStatStreamReceived implements dispatch.Callback.
func (l *lineWriter) OnStatStreamReceived(tps float32) {
	l.write(StreamLine{Type: LineStat, TPS: tps}, false)
}

// finish writes the closing line for an inference outcome.
func (l *lineWriter) finish(result string, err error) {
	if err != nil {
		l.write(StreamLine{Type: LineError, Error: err.Error()}, true)
		return
	}
	l.write(StreamLine{Type: LineDone, Result: result}, true)
}
