package client

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

const maxEventSize = 4 * 1024 * 1024

var doneMarker = []byte("[DONE]")

// Stream is a lazy, finite, non-restartable iterator over the server-sent
// events of a streaming response. Each event's data is decoded into T.
//
// A Stream holds the open response body: callers must Close it once done,
// including on early exit.
type Stream[T any] struct {
	body    io.ReadCloser
	scanner *bufio.Scanner

	current T
	err     error
	done    bool

	closeOnce sync.Once
	closeErr  error
}

// NewStream wraps body, a text/event-stream response body, in a Stream.
func NewStream[T any](body io.ReadCloser) *Stream[T] {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)
	return &Stream[T]{body: body, scanner: scanner}
}

// Next advances to the next event. It returns false when the stream is
// exhausted, closed, or failed; Err tells the last two apart.
func (s *Stream[T]) Next() bool {
	if s.done || s.err != nil {
		return false
	}

	var data []byte
	for s.scanner.Scan() {
		line := s.scanner.Bytes()
		if len(line) == 0 {
			if len(data) == 0 {
				continue
			}
			return s.emit(data)
		}
		if line[0] == ':' {
			continue
		}

		field, value, _ := bytes.Cut(line, []byte(":"))
		if string(field) != "data" {
			continue
		}
		value = bytes.TrimPrefix(value, []byte(" "))
		if len(data) > 0 {
			data = append(data, '\n')
		}
		data = append(data, value...)
	}

	if err := s.scanner.Err(); err != nil {
		s.err = fmt.Errorf("read stream: %w", err)
		return false
	}
	if len(data) > 0 {
		return s.emit(data)
	}
	s.done = true
	return false
}

func (s *Stream[T]) emit(data []byte) bool {
	if bytes.Equal(bytes.TrimSpace(data), doneMarker) {
		s.done = true
		return false
	}

	var event T
	if err := json.Unmarshal(data, &event); err != nil {
		s.err = fmt.Errorf("decode stream event: %w", err)
		return false
	}
	s.current = event
	return true
}

// Current returns the event read by the last successful call to Next.
func (s *Stream[T]) Current() T {
	return s.current
}

// Err returns the first error encountered while reading the stream.
func (s *Stream[T]) Err() error {
	return s.err
}

// Close releases the underlying response body. It is safe to call more than once.
func (s *Stream[T]) Close() error {
	s.closeOnce.Do(func() {
		s.done = true
		s.closeErr = s.body.Close()
	})
	return s.closeErr
}
