package store

import (
	"sort"
	"sync"

	"instance-doctor/pkg/model"
)

// MemoryStore is a simple in-memory implementation, intended for dev/demo.
type MemoryStore struct {
	mu     sync.RWMutex
	latest map[string]model.FleetReport
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{latest: make(map[string]model.FleetReport)}
}

func (m *MemoryStore) SaveReport(r model.FleetReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest[HostKey(r.Host)] = r
	return nil
}

func (m *MemoryStore) LatestReport(host string) (model.FleetReport, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if host != "" {
		r, ok := m.latest[host]
		return r, ok, nil
	}
	all := make([]model.FleetReport, 0, len(m.latest))
	for _, r := range m.latest {
		all = append(all, r)
	}
	r, ok := newest(all)
	return r, ok, nil
}

func (m *MemoryStore) ListReports() ([]model.FleetReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.FleetReport, 0, len(m.latest))
	for _, r := range m.latest {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return HostKey(out[i].Host) < HostKey(out[j].Host) })
	return out, nil
}
