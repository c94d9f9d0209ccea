package http

import (
	"bufio"
	"io"
	"strings"
)

const maxSSELine = 1 << 20

// Event is one dispatched server-sent event.
type Event struct {
	Name string
	Data string
}

// SSEReader decodes a text/event-stream body.
type SSEReader struct {
	scanner *bufio.Scanner
}

func NewSSEReader(r io.Reader) *SSEReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxSSELine)
	return &SSEReader{scanner: scanner}
}

// Next returns the next event with data. It returns io.EOF once the stream
// ends; a trailing event without a terminating blank line is still returned.
func (r *SSEReader) Next() (Event, error) {
	var (
		ev      Event
		data    []string
		hasData bool
	)

	for r.scanner.Scan() {
		line := strings.TrimSuffix(r.scanner.Text(), "\r")

		if line == "" {
			if hasData {
				ev.Data = strings.Join(data, "\n")
				return ev, nil
			}
			ev = Event{}
			continue
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			ev.Name = value
		case "data":
			data = append(data, value)
			hasData = true
		}
	}

	if err := r.scanner.Err(); err != nil {
		return Event{}, err
	}

	if hasData {
		ev.Data = strings.Join(data, "\n")
		return ev, nil
	}

	return Event{}, io.EOF
}
