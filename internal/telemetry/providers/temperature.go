package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"

	"github.com/i474232898/telemetry-gateway/internal/metrics"
	"github.com/i474232898/telemetry-gateway/internal/telemetry"
)

const (
	endpointByLocation = "temperature_by_location"
	endpointBySensor   = "temperature_by_sensor"
)

var payloadValidator = newPayloadValidator()

// newPayloadValidator reports fields by their JSON names.
func newPayloadValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// temperaturePayload is the body of a 200 from the temperature API.
// Pointers tell an absent field apart from a zero value.
type temperaturePayload struct {
	Value      *float64 `json:"value" validate:"required"`
	Unit       *string  `json:"unit" validate:"required"`
	Timestamp  *string  `json:"timestamp" validate:"required"`
	Location   *string  `json:"location" validate:"required"`
	Status     *string  `json:"status" validate:"required"`
	SensorID   *string  `json:"sensor_id" validate:"required"`
	SensorType *string  `json:"sensor_type" validate:"required"`
}

// TemperatureProvider implements telemetry.Provider against the temperature API.
type TemperatureProvider struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewTemperatureProvider creates a provider rooted at baseURL. An empty baseURL
// is accepted; every call then fails as a transport error.
func NewTemperatureProvider(client *http.Client, baseURL string, breaker BreakerConfig) *TemperatureProvider {
	const name = "temperature-api"
	return &TemperatureProvider{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		circuit: newCircuitBreaker(name, breaker),
	}
}

func (p *TemperatureProvider) Name() string {
	return p.name
}

// TemperatureByLocation calls GET {base}/temperature?location=...
func (p *TemperatureProvider) TemperatureByLocation(ctx context.Context, location string) (telemetry.Reading, error) {
	values := url.Values{}
	values.Set("location", location)

	u := fmt.Sprintf("%s/temperature?%s", p.baseURL, values.Encode())
	return p.fetch(ctx, endpointByLocation, u)
}

// TemperatureBySensorID calls GET {base}/temperature/{sensor_id}.
func (p *TemperatureProvider) TemperatureBySensorID(ctx context.Context, sensorID string) (telemetry.Reading, error) {
	u := fmt.Sprintf("%s/temperature/%s", p.baseURL, url.PathEscape(sensorID))
	return p.fetch(ctx, endpointBySensor, u)
}

func (p *TemperatureProvider) fetch(ctx context.Context, endpoint, u string) (reading telemetry.Reading, err error) {
	start := time.Now()
	defer func() {
		metrics.ProviderDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		metrics.ProviderRequests.WithLabelValues(endpoint, outcome(err)).Inc()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return telemetry.Reading{}, err
	}
	req.Header.Set("Accept", "application/json")
	if id := telemetry.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := doRequest(ctx, p.client, p.circuit, req)
	if err != nil {
		return telemetry.Reading{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return telemetry.Reading{}, &telemetry.StatusError{Code: resp.StatusCode}
	}

	return decodeReading(io.LimitReader(resp.Body, maxBodyBytes))
}

// decodeReading copies the seven reading fields out of a provider body verbatim.
func decodeReading(body io.Reader) (telemetry.Reading, error) {
	var payload temperaturePayload
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return telemetry.Reading{}, fmt.Errorf("%w: field %s: expected %s",
				telemetry.ErrContractViolation, typeErr.Field, jsonKind(typeErr.Type))
		}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return telemetry.Reading{}, fmt.Errorf("%w: body is not valid JSON", telemetry.ErrContractViolation)
		}
		return telemetry.Reading{}, fmt.Errorf("%w: decode body: %v", telemetry.ErrContractViolation, err)
	}

	if err := payloadValidator.Struct(payload); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return telemetry.Reading{}, fmt.Errorf("%w: %v", telemetry.ErrContractViolation, err)
		}
		missing := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			missing = append(missing, fe.Field())
		}
		return telemetry.Reading{}, fmt.Errorf("%w: missing fields %s", telemetry.ErrContractViolation, strings.Join(missing, ", "))
	}

	return telemetry.Reading{
		Value:      *payload.Value,
		Unit:       *payload.Unit,
		Timestamp:  *payload.Timestamp,
		Location:   *payload.Location,
		Status:     *payload.Status,
		SensorID:   *payload.SensorID,
		SensorType: *payload.SensorType,
	}, nil
}

// jsonKind names the JSON type a Go type decodes from.
func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "number"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}

// Probe checks that the provider answers HTTP at all. It bypasses the circuit
// breaker; any status code counts as reachable.
func (p *TemperatureProvider) Probe(ctx context.Context) telemetry.ProviderStatus {
	start := time.Now()
	status := telemetry.ProviderStatus{
		Provider:  p.name,
		CheckedAt: start.UTC(),
	}

	resp, err := p.probe(ctx)
	status.Latency = time.Since(start)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	status.Reachable = true
	status.StatusCode = resp.StatusCode
	return status
}

func (p *TemperatureProvider) probe(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/temperature", nil)
	if err != nil {
		return nil, err
	}
	return doRequest(ctx, p.client, nil, req)
}
