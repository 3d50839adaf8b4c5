package logging

import "time"

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an integer field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a boolean field.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Error creates an error field. A nil error logs as null.
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Latency creates a duration field in milliseconds.
func Latency(d time.Duration) Field {
	return Field{Key: "latency_ms", Value: float64(d.Microseconds()) / 1000.0}
}

// Component names the subsystem emitting the entry.
func Component(name string) Field {
	return Field{Key: "component", Value: name}
}

// Operation names the engine operation being executed.
func Operation(name string) Field {
	return Field{Key: "op", Value: name}
}

// RequestID tags an entry with the HTTP request ID.
func RequestID(id string) Field {
	return Field{Key: "request_id", Value: id}
}

// SnapshotID tags an entry with the graph snapshot it ran against.
func SnapshotID(id string) Field {
	return Field{Key: "snapshot_id", Value: id}
}

// TechniqueID tags an entry with a technique identifier.
func TechniqueID(id string) Field {
	return Field{Key: "technique_id", Value: id}
}

// GroupID tags an entry with a threat-group identifier.
func GroupID(id string) Field {
	return Field{Key: "group_id", Value: id}
}

// TacticID tags an entry with a tactic identifier.
func TacticID(id string) Field {
	return Field{Key: "tactic_id", Value: id}
}

// Count creates a generic count field under the given key.
func Count(key string, n int) Field {
	return Field{Key: key, Value: n}
}
