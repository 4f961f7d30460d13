package telemetry

import (
	"strings"
	"time"
)

// Type is a telemetry kind a client can ask for.
type Type string

const (
	TypeTemperature Type = "temperature"
	TypeHumidity    Type = "humidity"
	TypeLight       Type = "light"
	TypeMotion      Type = "motion"
	TypeAirQuality  Type = "air_quality"
	TypePressure    Type = "pressure"
)

// ValidTypes lists every accepted telemetry type, in the order used for error messages.
var ValidTypes = []Type{
	TypeTemperature,
	TypeHumidity,
	TypeLight,
	TypeMotion,
	TypeAirQuality,
	TypePressure,
}

// Valid reports whether t is one of ValidTypes.
func (t Type) Valid() bool {
	for _, v := range ValidTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Supported reports whether the provider has a backing endpoint for t.
// Only temperature is served today.
func (t Type) Supported() bool {
	return t == TypeTemperature
}

func joinTypes(sep string) string {
	names := make([]string, len(ValidTypes))
	for i, t := range ValidTypes {
		names[i] = string(t)
	}
	return strings.Join(names, sep)
}

// Query asks for the latest reading of a telemetry type at a location.
type Query struct {
	Type     Type   `validate:"required"`
	Location string `validate:"required"`
}

// SensorLookup identifies a single sensor. The ID is opaque.
type SensorLookup struct {
	SensorID string
}

// Reading is the public response shape for every successful lookup.
type Reading struct {
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
	Timestamp  string  `json:"timestamp"`
	Location   string  `json:"location"`
	Status     string  `json:"status"`
	SensorID   string  `json:"sensor_id"`
	SensorType string  `json:"sensor_type"`
}

// ErrorEnvelope is the JSON body of every non-2xx response.
type ErrorEnvelope struct {
	Error     string `json:"error"`
	Code      int    `json:"code"`
	Timestamp string `json:"timestamp"`
}

// NewErrorEnvelope stamps the envelope with the current UTC time.
func NewErrorEnvelope(code int, message string) ErrorEnvelope {
	return ErrorEnvelope{
		Error:     message,
		Code:      code,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ProviderStatus is the outcome of a single reachability probe against a provider.
type ProviderStatus struct {
	Provider   string        `json:"provider"`
	Reachable  bool          `json:"reachable"`
	StatusCode int           `json:"status_code,omitempty"`
	Latency    time.Duration `json:"latency_ns"`
	Error      string        `json:"error,omitempty"`
	CheckedAt  time.Time     `json:"checked_at"` // always UTC
}
