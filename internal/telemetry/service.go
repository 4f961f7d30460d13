package telemetry

import (
	"context"
	"errors"

	"github.com/i474232898/telemetry-gateway/internal/logging"
)

// Service validates queries, dispatches them to the provider and translates
// provider failures into gateway errors.
type Service struct {
	provider Provider
}

// NewService creates a new Service.
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// ProviderName returns the name of the backing provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// ByLocation returns the latest reading of q.Type at q.Location.
func (s *Service) ByLocation(ctx context.Context, q Query) (Reading, error) {
	if err := q.Validate(); err != nil {
		return Reading{}, err
	}

	if !q.Type.Supported() {
		return Reading{}, unsupportedTypeError(q.Type)
	}

	reading, err := s.provider.TemperatureByLocation(ctx, q.Location)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			logging.FromContext(ctx).WarnContext(ctx, "provider returned error status",
				"provider", s.provider.Name(),
				"location", q.Location,
				"status", statusErr.Code,
			)
			return Reading{}, upstreamError(statusErr)
		}
		logging.FromContext(ctx).ErrorContext(ctx, "provider call failed",
			"provider", s.provider.Name(),
			"location", q.Location,
			"error", err,
		)
		return Reading{}, transportError(err)
	}

	return reading, nil
}

// BySensorID returns the latest reading of a single sensor.
//
// Sensors are assumed to be temperature sensors until a registry can resolve
// their type. Every non-200 answer from the provider, 5xx included, is
// reported as not found.
func (s *Service) BySensorID(ctx context.Context, lookup SensorLookup) (Reading, error) {
	reading, err := s.provider.TemperatureBySensorID(ctx, lookup.SensorID)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			logging.FromContext(ctx).InfoContext(ctx, "sensor lookup rejected by provider",
				"provider", s.provider.Name(),
				"sensor_id", lookup.SensorID,
				"status", statusErr.Code,
			)
			return Reading{}, sensorNotFoundError(lookup.SensorID, statusErr)
		}
		logging.FromContext(ctx).ErrorContext(ctx, "provider call failed",
			"provider", s.provider.Name(),
			"sensor_id", lookup.SensorID,
			"error", err,
		)
		return Reading{}, transportError(err)
	}

	return reading, nil
}
