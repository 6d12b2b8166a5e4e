package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instance-doctor/pkg/model"
)

func TestMemoryStore_LatestOnly(t *testing.T) {
	s := NewMemory()
	t0 := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	_, ok, err := s.LatestReport("")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SaveReport(model.FleetReport{RunID: "r1", Host: "db01", EvaluatedAt: t0}))
	require.NoError(t, s.SaveReport(model.FleetReport{RunID: "r2", EvaluatedAt: t0.Add(time.Minute)}))
	require.NoError(t, s.SaveReport(model.FleetReport{
		RunID:       "r3",
		Host:        "db01",
		EvaluatedAt: t0.Add(2 * time.Minute),
		Healths:     []model.HealthCheck{{InstanceID: "A"}, {InstanceID: "B"}},
	}))

	r, ok, err := s.LatestReport("db01")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "r3", r.RunID)

	r, ok, err = s.LatestReport(DefaultHost)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "r2", r.RunID)

	r, _, _ = s.LatestReport("")
	assert.Equal(t, "r3", r.RunID)

	all, err := s.ListReports()
	require.NoError(t, err)
	require.Len(t, all, 2, "one report per host")
	assert.Equal(t, "r2", all[0].RunID)
	assert.Equal(t, "r3", all[1].RunID)

	healths, err := Healths(s)
	require.NoError(t, err)
	assert.Len(t, healths, 2)
}
