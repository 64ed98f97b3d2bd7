package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
)

// EventType classifies a decoded stream record.
type EventType string

const (
	EventChunk   EventType = "chunk"
	EventFinal   EventType = "final"
	EventAbort   EventType = "abort"
	EventUnknown EventType = "unknown"
	EventDone    EventType = "done"
)

// Event is a single decoded record from the assistant stream.
type Event struct {
	Type    EventType
	Text    string // chunk/final text, empty for abort without detail
	Message string // abort detail
	RawType string // wire value of the "type" field
}

// dataPrefix is the record framing used by the assistant backend.
const dataPrefix = "data: "

// payload mirrors the wire shape of a stream record. Text can arrive under
// either textResponse or content depending on the backend version.
type payload struct {
	Type         string `json:"type"`
	TextResponse string `json:"textResponse"`
	Content      string `json:"content"`
	Error        string `json:"error"`
}

func (p payload) text() string {
	if p.TextResponse != "" {
		return p.TextResponse
	}
	return p.Content
}

// Decoder reads newline-delimited "data: <json>" records from an assistant
// response body. Partial lines are buffered until the trailing newline
// arrives, so chunk boundaries in the underlying reader never split a record.
type Decoder struct {
	reader *bufio.Reader
	eof    bool // underlying reader exhausted
	done   bool // Done sentinel already returned
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{reader: bufio.NewReader(r)}
}

// Next returns the next decoded event. Blank lines, lines without the data
// prefix and records with malformed JSON are skipped. At end of stream a
// single Done event is returned, then io.EOF.
func (d *Decoder) Next(ctx context.Context) (Event, error) {
	if d.done {
		return Event{}, io.EOF
	}
	if d.eof {
		d.done = true
		return Event{Type: EventDone}, nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return Event{}, err
		}

		line, err := d.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return Event{}, err
		}

		ev, ok := d.decodeLine(line)
		if err == io.EOF {
			d.eof = true
			if ok {
				// A final record without a trailing newline still counts.
				// The Done sentinel follows on the next call.
				return ev, nil
			}
			d.done = true
			return Event{Type: EventDone}, nil
		}
		if ok {
			return ev, nil
		}
	}
}

func (d *Decoder) decodeLine(line string) (Event, bool) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" || !strings.HasPrefix(line, dataPrefix) {
		return Event{}, false
	}

	var p payload
	if err := json.Unmarshal([]byte(line[len(dataPrefix):]), &p); err != nil {
		// Malformed records are dropped, the stream keeps going.
		return Event{}, false
	}

	switch p.Type {
	case "textResponseChunk":
		return Event{Type: EventChunk, Text: p.text(), RawType: p.Type}, true
	case "textResponse":
		return Event{Type: EventFinal, Text: p.text(), RawType: p.Type}, true
	case "abort":
		msg := p.Error
		if msg == "" {
			msg = p.text()
		}
		return Event{Type: EventAbort, Message: msg, RawType: p.Type}, true
	default:
		// Unknown event types still surface their text so callers can
		// decide whether to accumulate it.
		return Event{Type: EventUnknown, Text: p.text(), RawType: p.Type}, true
	}
}
