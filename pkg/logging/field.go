package logging

import (
	"strings"
	"time"
)

// LogField creates a Field from a key-value pair.
func LogField(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// StringField creates a Field with a string value.
func StringField(key, value string) Field {
	return Field{Key: key, Value: value}
}

// IntField creates a Field with an integer value.
func IntField(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Float64Field creates a Field with a float64 value.
func Float64Field(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

// BoolField creates a Field with a boolean value.
func BoolField(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// ErrorField creates a Field for an error value. If err is nil,
// the value is set to the string "<nil>".
func ErrorField(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "<nil>"}
	}
	return Field{Key: "error", Value: err.Error()}
}

// RunIDField tags an entry with the run identifier.
func RunIDField(id string) Field {
	return Field{Key: "run_id", Value: id}
}

// ExampleField names an example by its full label path.
func ExampleField(path ...string) Field {
	return Field{Key: "example", Value: strings.Join(path, " ")}
}

// StatusField records an example outcome.
func StatusField(status string) Field {
	return Field{Key: "status", Value: status}
}

// DurationField records a duration in seconds.
func DurationField(d time.Duration) Field {
	return Field{Key: "duration_seconds", Value: d.Seconds()}
}
