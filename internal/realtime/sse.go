package realtime

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

const maxFrameSize = 1 << 20

// readFrames parses a text/event-stream body and calls fn for every event.
// Comment lines and the id and retry fields are ignored. It returns when r
// is exhausted or fails.
func readFrames(r io.Reader, fn func(Message)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxFrameSize)

	var (
		name string
		data bytes.Buffer
		has  bool
	)
	flush := func() {
		if has {
			fn(Message{Name: name, Data: bytes.Clone(data.Bytes())})
		}
		name, has = "", false
		data.Reset()
	}

	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			flush()
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			name, has = value, true
		case "data":
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(value)
			has = true
		}
	}
	// an event without its terminating blank line is dropped
	return scanner.Err()
}
