package telemetry

import (
	"context"
)

// Provider abstracts the upstream sensor-data service.
//
// Implementations return *StatusError when the upstream answered with a
// non-200 status and an error wrapping ErrContractViolation when a 200 body
// could not be turned into a Reading. Any other error is a transport failure.
type Provider interface {
	Name() string
	TemperatureByLocation(ctx context.Context, location string) (Reading, error)
	TemperatureBySensorID(ctx context.Context, sensorID string) (Reading, error)
}

// Prober checks whether a provider is reachable.
type Prober interface {
	Probe(ctx context.Context) ProviderStatus
}

// StatusStore keeps probe results.
type StatusStore interface {
	SaveStatus(status ProviderStatus)
	LatestStatus(provider string) (ProviderStatus, error)
}
