package api

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
)

const (
	_sse_buffer_size     = 64 << 10
	_sse_max_line_length = 1 << 20
)

var (
	_sse_data_prefix = []byte("data:")
	_sse_done        = []byte("[DONE]")
)

// Stream reads server-sent events from one response body on the calling
// goroutine. Each `data:` line is decoded into a T; `data: [DONE]` ends it.
type Stream[T any] struct {
	res     *call
	scanner *bufio.Scanner
	cur     T
	err     error
	done    bool
}

func newStream[T any](res *call) *Stream[T] {
	scanner := bufio.NewScanner(res.resp.Body)
	scanner.Buffer(make([]byte, _sse_buffer_size), _sse_max_line_length)
	return &Stream[T]{res: res, scanner: scanner}
}

func (s *Stream[T]) Next() bool {
	if s.done || s.err != nil {
		return false
	}

	for s.scanner.Scan() {
		data, ok := bytes.CutPrefix(s.scanner.Bytes(), _sse_data_prefix)
		if !ok {
			continue
		}
		data = bytes.TrimSpace(data)
		if len(data) == 0 {
			continue
		}
		if bytes.Equal(data, _sse_done) {
			s.done = true
			return false
		}

		var body errorBody
		if err := json.Unmarshal(data, &body); err == nil && body.Error != nil {
			s.err = &Error{
				Message:      body.Error.Message,
				Type:         body.Error.Type,
				HTTPStatus:   s.res.resp.StatusCode,
				Organization: s.res.organization(),
			}
			return false
		}

		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			s.err = &Error{
				Message:      fmt.Sprintf("invalid stream chunk from API: %v", err),
				HTTPStatus:   s.res.resp.StatusCode,
				Organization: s.res.organization(),
			}
			return false
		}
		s.cur = v
		return true
	}

	if err := s.scanner.Err(); err != nil {
		s.err = &Error{
			Message:      fmt.Sprintf("stream interrupted: %v", err),
			HTTPStatus:   s.res.resp.StatusCode,
			Organization: s.res.organization(),
		}
	}
	s.done = true
	return false
}

func (s *Stream[T]) Current() T {
	return s.cur
}

func (s *Stream[T]) Err() error {
	return s.err
}

func (s *Stream[T]) Organization() string {
	return s.res.organization()
}

func (s *Stream[T]) Close() error {
	return s.res.Close()
}

// All yields parts as they arrive. A failure is yielded once, last.
func (s *Stream[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for s.Next() {
			if !yield(s.Current(), nil) {
				return
			}
		}
		if err := s.Err(); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}
