package api

import (
	"net/http"

	"instance-doctor/pkg/store"
)

// RegisterReportRoutes serves the latest stored fleet report, or one
// instance's slice of it.
//
//	GET /api/v1/report[?host=h][&instanceId=X]
func RegisterReportRoutes(mux *http.ServeMux, st store.ReportStore) {
	mux.HandleFunc("/api/v1/report", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		q := r.URL.Query()
		report, ok, err := st.LatestReport(q.Get("host"))
		if err != nil {
			logger.Error().Err(err).Msg("load report failed")
			http.Error(w, "failed to load report", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, "no report yet", http.StatusNotFound)
			return
		}

		instanceID := q.Get("instanceId")
		if instanceID == "" {
			writeJSON(w, http.StatusOK, report)
			return
		}
		vr, health, found := report.Instance(instanceID)
		if !found {
			http.Error(w, "instance not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, InstanceReportResponse{
			RunID:       report.RunID,
			Host:        report.Host,
			EvaluatedAt: report.EvaluatedAt,
			Report:      vr,
			Health:      health,
			Summary:     vr.Summary(),
		})
	})
}
