package store

import "instance-doctor/pkg/consul"

// NewConsulStore creates a Consul KV backed store.
func NewConsulStore(addr string) (ReportStore, error) {
	return consul.NewStore(addr)
}
