package diag

import (
	"sort"

	"instance-doctor/pkg/model"
)

// FindConflicts groups instances by static primary port. Only instances with
// TCP/IP enabled take part. Groups with a single member are not conflicts.
func FindConflicts(snapshots []model.InstanceSnapshot) []model.PortConflict {
	byPort := make(map[int][]string)
	for _, s := range snapshots {
		if !s.Transports.TCPIP {
			continue
		}
		port := s.Port()
		if port == 0 {
			continue
		}
		byPort[port] = append(byPort[port], s.InstanceID)
	}

	conflicts := make([]model.PortConflict, 0)
	for port, ids := range byPort {
		if len(ids) < 2 {
			continue
		}
		conflicts = append(conflicts, model.PortConflict{Port: port, InstanceIDs: ids})
	}
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Port < conflicts[j].Port })
	return conflicts
}

// ConflictMap indexes conflicts by member instance id.
func ConflictMap(conflicts []model.PortConflict) map[string][]model.PortConflict {
	out := make(map[string][]model.PortConflict)
	for _, c := range conflicts {
		for _, id := range c.InstanceIDs {
			out[id] = append(out[id], c)
		}
	}
	return out
}
