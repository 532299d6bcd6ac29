package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// SSEWriter is a Sink that frames events as Server-Sent Events on an
// http.ResponseWriter.
type SSEWriter struct {
	w       io.Writer
	flusher http.Flusher
}

// NewSSEWriter wraps a response writer and sets the SSE header set.
// Fails when the writer cannot flush; streaming without flushing would
// buffer the whole response.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flusher interface")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// Write frames one event as "event: <type>" with a JSON data payload and
// flushes immediately.
func (s *SSEWriter) Write(ctx context.Context, ev Event) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("context canceled: %w", ctx.Err())
	default:
	}

	data, err := json.Marshal(ev.Content)
	if err != nil {
		return fmt.Errorf("marshal event content: %w", err)
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\n", ev.Type); err != nil {
		return fmt.Errorf("write event name: %w", err)
	}

	// The SSE format requires each line of data to carry its own prefix.
	for _, line := range strings.Split(string(data), "\n") {
		if _, err := fmt.Fprintf(s.w, "data: %s\n", line); err != nil {
			return fmt.Errorf("write data line: %w", err)
		}
	}

	if _, err := s.w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("write terminator: %w", err)
	}

	s.flusher.Flush()
	return nil
}
