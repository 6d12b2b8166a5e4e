package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instance-doctor/pkg/inspect"
	"instance-doctor/pkg/model"
)

type flakySource struct {
	snaps []model.InstanceSnapshot
	err   error
}

func (f *flakySource) Snapshots(context.Context) ([]model.InstanceSnapshot, error) {
	return f.snaps, f.err
}

func fakeController(t *testing.T, got chan<- inspect.Batch) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/snapshots" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var b inspect.Batch
		if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		got <- b
		_ = json.NewEncoder(w).Encode(model.FleetReport{RunID: "run-1", Host: b.Host})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestReporter_PushOnce(t *testing.T) {
	got := make(chan inspect.Batch, 1)
	srv := fakeController(t, got)

	src := inspect.Static{{InstanceID: "A", Service: model.ServiceRunning}}
	r := NewReporter(srv.URL+"/", "db01", src, nil)
	r.Log = zerolog.Nop()

	report, err := r.PushOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "run-1", report.RunID)

	b := <-got
	assert.Equal(t, "db01", b.Host)
	require.Len(t, b.Instances, 1)
	assert.Equal(t, "A", b.Instances[0].InstanceID)
}

func TestReporter_FallsBackToCache(t *testing.T) {
	got := make(chan inspect.Batch, 2)
	srv := fakeController(t, got)

	cache, err := OpenCache(filepath.Join(t.TempDir(), "agent.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	src := &flakySource{snaps: []model.InstanceSnapshot{{InstanceID: "A"}}}
	r := NewReporter(srv.URL, "db01", src, cache)
	r.Log = zerolog.Nop()

	_, err = r.PushOnce(context.Background())
	require.NoError(t, err)
	<-got

	src.err = errors.New("inspector output missing")
	_, err = r.PushOnce(context.Background())
	require.NoError(t, err)
	b := <-got
	require.Len(t, b.Instances, 1)
	assert.Equal(t, "A", b.Instances[0].InstanceID)
}

func TestReporter_SourceErrorWithoutCache(t *testing.T) {
	r := NewReporter("http://127.0.0.1:1", "db01", &flakySource{err: errors.New("boom")}, nil)
	r.Log = zerolog.Nop()
	_, err := r.PushOnce(context.Background())
	assert.EqualError(t, err, "boom")
}

func TestReporter_ControllerRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "duplicate instance id: A", http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	r := NewReporter(srv.URL, "db01", inspect.Static{{InstanceID: "A"}, {InstanceID: "A"}}, nil)
	r.Log = zerolog.Nop()
	err := r.Run(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "duplicate instance id")
}
