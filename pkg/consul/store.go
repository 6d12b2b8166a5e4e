// Package consul stores the latest fleet reports in Consul KV, one JSON value
// per host.
package consul

import (
	"encoding/json"
	"fmt"
	"sort"

	consulapi "github.com/hashicorp/consul/api"

	"instance-doctor/pkg/model"
)

const (
	reportPrefix = "instance-doctor/reports/"
	defaultHost  = "_default"
)

type Store struct {
	cli *consulapi.Client
}

func NewStore(addr string) (*Store, error) {
	cfg := consulapi.DefaultConfig()
	if addr != "" {
		cfg.Address = addr
	}
	cli, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("consul client: %w", err)
	}
	return &Store{cli: cli}, nil
}

func hostKey(host string) string {
	if host == "" {
		host = defaultHost
	}
	return reportPrefix + host
}

func (s *Store) SaveReport(r model.FleetReport) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	key := hostKey(r.Host)
	if _, err := s.cli.KV().Put(&consulapi.KVPair{Key: key, Value: b}, nil); err != nil {
		return fmt.Errorf("consul put %s: %w", key, err)
	}
	return nil
}

func (s *Store) LatestReport(host string) (model.FleetReport, bool, error) {
	if host == "" {
		all, err := s.ListReports()
		if err != nil {
			return model.FleetReport{}, false, err
		}
		var best model.FleetReport
		found := false
		for _, r := range all {
			if !found || r.EvaluatedAt.After(best.EvaluatedAt) {
				best, found = r, true
			}
		}
		return best, found, nil
	}
	kv, _, err := s.cli.KV().Get(hostKey(host), nil)
	if err != nil {
		return model.FleetReport{}, false, err
	}
	if kv == nil {
		return model.FleetReport{}, false, nil
	}
	var r model.FleetReport
	if err := json.Unmarshal(kv.Value, &r); err != nil {
		return model.FleetReport{}, false, fmt.Errorf("decode %s: %w", kv.Key, err)
	}
	return r, true, nil
}

func (s *Store) ListReports() ([]model.FleetReport, error) {
	pairs, _, err := s.cli.KV().List(reportPrefix, nil)
	if err != nil {
		return nil, err
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
	out := make([]model.FleetReport, 0, len(pairs))
	for _, p := range pairs {
		var r model.FleetReport
		if err := json.Unmarshal(p.Value, &r); err == nil {
			out = append(out, r)
		}
	}
	return out, nil
}
