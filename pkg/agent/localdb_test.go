package agent

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instance-doctor/pkg/inspect"
	"instance-doctor/pkg/model"
)

func TestCache_SaveAndLast(t *testing.T) {
	ctx := context.Background()
	c, err := OpenCache(filepath.Join(t.TempDir(), "state", "agent.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	_, _, ok, err := c.Last(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	batch := inspect.Batch{Host: "db01", Instances: []model.InstanceSnapshot{
		{InstanceID: "MSSQLSERVER", Service: model.ServiceRunning, PrimaryPort: model.IntPtr(1433)},
	}}
	changed, err := c.Save(ctx, batch)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = c.Save(ctx, batch)
	require.NoError(t, err)
	assert.False(t, changed)

	got, _, ok, err := c.Last(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, batch, got)

	batch.Instances[0].Service = model.ServiceStopped
	changed, err = c.Save(ctx, batch)
	require.NoError(t, err)
	assert.True(t, changed)
}
