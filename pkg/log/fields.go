package log

// Canonical field names.
const (
	FieldService    = "service"
	FieldComponent  = "component"
	FieldRunID      = "run_id"
	FieldInstanceID = "instance_id"
	FieldHost       = "host"
	FieldPort       = "port"
	FieldStatus     = "status"
	FieldSeverity   = "severity"
	FieldCategory   = "category"
	FieldInstances  = "instances"
	FieldConflicts  = "conflicts"
	FieldDuration   = "duration_ms"
	FieldBackend    = "backend"
	FieldRemote     = "remote"
)
