package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/telemetry-gateway/internal/config"
	"github.com/i474232898/telemetry-gateway/internal/telemetry"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvConfigFile, "")
	t.Setenv("TEMPERATURE_API_URL", "")
	t.Setenv("BREAKER_FAILURE_THRESHOLD", "")
	t.Setenv("LOG_LEVEL", "ERROR")
}

func closedServerURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	u := srv.URL
	srv.Close()
	return u
}

func runProbe(t *testing.T, args ...string) (telemetry.ProviderStatus, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs(append([]string{"probe"}, args...))

	err := root.ExecuteContext(context.Background())

	var status telemetry.ProviderStatus
	require.NoError(t, json.Unmarshal(out.Bytes(), &status), out.String())
	return status, err
}

func TestProbeCommandReachable(t *testing.T) {
	isolateEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Location is required"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	// The flag wins over the environment.
	t.Setenv("TEMPERATURE_API_URL", closedServerURL(t))

	status, err := runProbe(t, "--provider-url", srv.URL)
	require.NoError(t, err)
	assert.True(t, status.Reachable)
	assert.Equal(t, http.StatusBadRequest, status.StatusCode)
	assert.Equal(t, "temperature-api", status.Provider)
}

func TestProbeCommandUnreachable(t *testing.T) {
	isolateEnv(t)

	status, err := runProbe(t, "--provider-url", closedServerURL(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
	assert.False(t, status.Reachable)
	assert.NotEmpty(t, status.Error)
}

func TestDefaultConfigReachesRecoveredProvider(t *testing.T) {
	isolateEnv(t)

	const failures = 5
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= failures {
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				_ = conn.Close()
			}
			return
		}
		_, _ = w.Write([]byte(`{"value":20.5,"unit":"°C","timestamp":"t","location":"kitchen","status":"active","sensor_id":"1","sensor_type":"temperature"}`))
	}))
	defer srv.Close()

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Zero(t, cfg.BreakerFailureThreshold)
	cfg.ProviderURL = srv.URL

	svc := telemetry.NewService(newProvider(cfg))
	q := telemetry.Query{Type: telemetry.TypeTemperature, Location: "kitchen"}

	for i := 0; i < failures; i++ {
		_, err := svc.ByLocation(context.Background(), q)
		var gwErr *telemetry.Error
		require.True(t, errors.As(err, &gwErr))
		assert.Equal(t, telemetry.KindTransport, gwErr.Kind)
	}

	got, err := svc.ByLocation(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 20.5, got.Value)
	assert.EqualValues(t, failures+1, hits.Load())
}
