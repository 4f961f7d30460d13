package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/telemetry-gateway/internal/store"
	"github.com/i474232898/telemetry-gateway/internal/telemetry"
)

type fakeProber struct {
	mu        sync.Mutex
	reachable bool
	calls     int
}

func (f *fakeProber) Probe(context.Context) telemetry.ProviderStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return telemetry.ProviderStatus{
		Provider:  "fake",
		Reachable: f.reachable,
		CheckedAt: time.Now().UTC(),
	}
}

func (f *fakeProber) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestProbeOnceStoresResult(t *testing.T) {
	prober := &fakeProber{reachable: true}
	statuses := store.NewMemoryStore(10, time.Hour)
	s := New(prober, statuses, time.Minute, nil)

	got := s.ProbeOnce(context.Background())
	assert.True(t, got.Reachable)

	latest, err := statuses.LatestStatus("fake")
	require.NoError(t, err)
	assert.Equal(t, got, latest)

	prober.reachable = false
	s.ProbeOnce(context.Background())
	latest, err = statuses.LatestStatus("fake")
	require.NoError(t, err)
	assert.False(t, latest.Reachable)
	assert.Len(t, statuses.History("fake"), 2)
}

func TestStartDisabled(t *testing.T) {
	prober := &fakeProber{reachable: true}
	s := New(prober, store.NewMemoryStore(10, time.Hour), 0, nil)

	require.NoError(t, s.Start())
	defer s.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, prober.callCount())
}

func TestStartRunsProbeJob(t *testing.T) {
	prober := &fakeProber{reachable: true}
	statuses := store.NewMemoryStore(10, time.Hour)
	s := New(prober, statuses, time.Second, nil)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		_, err := statuses.LatestStatus("fake")
		return err == nil
	}, 3*time.Second, 20*time.Millisecond)
}
