package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var ErrStreamingUnsupported = errors.New("response writer does not support flushing")

// EventStream writes server-sent events and flushes after every record.
type EventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

func NewEventStream(w http.ResponseWriter) (*EventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	return &EventStream{w: w, flusher: flusher}, nil
}

// Started reports whether headers have been sent.
func (s *EventStream) Started() bool {
	return s.started
}

// Send writes one "data:" record holding data as JSON.
func (s *EventStream) Send(data any) error {
	return s.write("", data)
}

// SendError writes an "error" event and should be the last record of the stream.
func (s *EventStream) SendError(status int, message string) error {
	return s.write("error", map[string]string{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func (s *EventStream) write(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	if !s.started {
		h := s.w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		s.w.WriteHeader(http.StatusOK)
		s.started = true
	}

	if event != "" {
		if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return err
	}

	s.flusher.Flush()
	return nil
}
