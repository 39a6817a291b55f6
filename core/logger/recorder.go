package logger

import (
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Event names written by the interpreter.
const (
	EventCommand         = "command"
	EventPipeline        = "pipeline"
	EventBackgroundJob   = "background_job"
	EventJobExit         = "job_exit"
	EventUnsupportedNode = "unsupported_node"
	EventFatal           = "fatal"
)

// Keys every entry carries.
const (
	KeyEvent     = "event"
	KeySession   = "session_id"
	KeyTimestamp = "timestamp_micros"
)

// Fields holds the event specific values of an entry. Values must be
// representable in JSON: strings, numbers, booleans, nil, []interface{} or
// map[string]interface{}.
type Fields map[string]interface{}

// Recorder accepts execution events.
type Recorder interface {
	Record(event string, fields Fields) error
}

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(entry *structpb.Struct) error

// Logger captures execution event logs. It is safe for concurrent use,
// detached jobs record their exit from their own goroutine.
type Logger struct {
	mu        sync.Mutex
	record    LogRecorder
	sessionID string
	now       func() time.Time
	closed    bool
}

var _ Recorder = (*Logger)(nil)

// NewLogger creates a Logger with a fresh session ID that hands entries to
// record.
func NewLogger(record LogRecorder) *Logger {
	return &Logger{
		record:    record,
		sessionID: fmt.Sprintf("%d", rand.Uint64()),
		now:       time.Now,
	}
}

// NewJsonLinesLogRecorder creates a Logger that exports logs in newline
// delimited JSON object format.
func NewJsonLinesLogRecorder(w io.Writer) *Logger {
	return NewLogger(func(entry *structpb.Struct) error {
		out, err := protojson.Marshal(entry)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	})
}

// SessionID returns the ID attached to every entry.
func (l *Logger) SessionID() string {
	return l.sessionID
}

// Record implements Recorder.
func (l *Logger) Record(event string, fields Fields) error {
	raw := make(map[string]interface{}, len(fields)+3)
	for k, v := range fields {
		raw[k] = v
	}
	raw[KeyEvent] = event
	raw[KeySession] = l.sessionID
	raw[KeyTimestamp] = l.now().UnixMicro()

	entry, err := structpb.NewStruct(raw)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", event, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	return l.record(entry)
}

// Close stops recording. Events recorded afterwards, such as the exit of a
// background job that outlives the session, are dropped. It doesn't close
// the underlying writer.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

type nopRecorder struct{}

func (nopRecorder) Record(string, Fields) error {
	return nil
}

// Nop returns a Recorder that drops every event.
func Nop() Recorder {
	return nopRecorder{}
}

// Strings converts a string slice into a value accepted by Fields.
func Strings(s []string) []interface{} {
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
