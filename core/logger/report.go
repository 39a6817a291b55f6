package logger

import (
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Entry is a single decoded event.
type Entry struct {
	Event     string
	SessionID string
	Timestamp time.Time
	Fields    map[string]interface{}
}

// GetString returns the string field key, or the empty string.
func (e *Entry) GetString(key string) string {
	s, _ := e.Fields[key].(string)
	return s
}

// GetInt returns the numeric field key truncated to an int, or zero.
func (e *Entry) GetInt(key string) int {
	f, _ := e.Fields[key].(float64)
	return int(f)
}

// GetStrings returns the list field key with non-string values dropped.
func (e *Entry) GetStrings(key string) []string {
	list, _ := e.Fields[key].([]interface{})
	var out []string
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func newEntry(st *structpb.Struct) *Entry {
	fields := st.AsMap()
	entry := &Entry{}

	entry.Event, _ = fields[KeyEvent].(string)
	entry.SessionID, _ = fields[KeySession].(string)
	if micros, ok := fields[KeyTimestamp].(float64); ok {
		entry.Timestamp = time.UnixMicro(int64(micros))
	}

	delete(fields, KeyEvent)
	delete(fields, KeySession)
	delete(fields, KeyTimestamp)
	entry.Fields = fields

	return entry
}

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(e *Entry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var rawEntry json.RawMessage
		if err := decoder.Decode(&rawEntry); err != nil {
			return err
		}

		var st structpb.Struct
		if err := protojson.Unmarshal(rawEntry, &st); err != nil {
			return err
		}

		handler(newEntry(&st))
	}
	return nil
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries int        `json:"log_entries"`
	Sessions   int        `json:"sessions"`
	Events     StrCounter `json:"events"`

	Commands       CommandReport `json:"command_report"`
	BackgroundJobs JobReport     `json:"background_job_report"`
	Unsupported    StrCounter    `json:"unsupported_nodes"`
	Fatal          []string      `json:"fatal_errors,omitempty"`

	sessions map[string]bool
}

// Update adds e to the report.
func (r *Report) Update(e *Entry) {
	r.LogEntries++
	r.Events.Increment(e.Event)

	if r.sessions == nil {
		r.sessions = make(map[string]bool)
	}
	if !r.sessions[e.SessionID] {
		r.sessions[e.SessionID] = true
		r.Sessions++
	}

	switch e.Event {
	case EventCommand:
		r.Commands.update(e)
	case EventBackgroundJob, EventJobExit:
		r.BackgroundJobs.update(e)
	case EventUnsupportedNode:
		r.Unsupported.Increment(e.GetString("kind"))
	case EventFatal:
		r.Fatal = append(r.Fatal, e.GetString("error"))
	}
}

type CommandReport struct {
	// Number of times each program ran.
	CommandNames StrCounter `json:"command_names"`
	// Count of each classification: builtin names, external or unknown.
	Classes StrCounter `json:"classes"`
	// Names that could not be resolved to a program.
	NotFound StrCounter `json:"not_found"`
	// Programs that exited with a non-zero status.
	Failures StrCounter `json:"failures"`
}

func (r *CommandReport) update(e *Entry) {
	argv := e.GetStrings("argv")
	if len(argv) == 0 {
		return
	}

	class := e.GetString("class")
	r.CommandNames.Increment(argv[0])
	r.Classes.Increment(class)

	switch {
	case class == "unknown":
		r.NotFound.Increment(argv[0])
	case e.GetInt("status") != 0:
		r.Failures.Increment(argv[0])
	}
}

type JobReport struct {
	Started  int        `json:"started"`
	Exited   int        `json:"exited"`
	Statuses StrCounter `json:"exit_statuses"`
}

func (r *JobReport) update(e *Entry) {
	if e.Event == EventBackgroundJob {
		r.Started++
		return
	}

	r.Exited++
	r.Statuses.Increment(strconv.Itoa(e.GetInt("status")))
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Get returns the count for key.
func (s *StrCounter) Get(key string) int {
	return s.internal[key]
}

// Keys returns the counted strings in sorted order.
func (s *StrCounter) Keys() []string {
	var out []string
	for k := range s.internal {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON implemnts custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	if s.internal == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.internal)
}
