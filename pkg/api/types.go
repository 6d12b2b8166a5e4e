package api

import (
	"time"

	"instance-doctor/pkg/inspect"
	"instance-doctor/pkg/model"
)

// SnapshotBatchRequest is posted by agents and by callers of the dry-run
// endpoint.
type SnapshotBatchRequest = inspect.Batch

// InstanceReportResponse is one instance's part of the latest report.
type InstanceReportResponse struct {
	RunID       string                 `json:"runId"`
	Host        string                 `json:"host,omitempty"`
	EvaluatedAt time.Time              `json:"evaluatedAt"`
	Report      model.ValidationReport `json:"report"`
	Health      model.HealthCheck      `json:"health"`
	Summary     string                 `json:"summary"`
}

type InstanceStatus struct {
	Host        string            `json:"host,omitempty"`
	Health      model.HealthCheck `json:"health"`
	IsValid     bool              `json:"isValid"`
	EvaluatedAt time.Time         `json:"evaluatedAt"`
}

type InstanceListResponse struct {
	Instances []InstanceStatus          `json:"instances"`
	Total     int                       `json:"total"`
	Healthy   int                       `json:"healthy"`
	ByStatus  map[model.StatusLabel]int `json:"byStatus"`
}
