package api

import (
	"net/http"

	"instance-doctor/pkg/model"
	"instance-doctor/pkg/store"
)

// RegisterStatusRoutes serves the latest health of every known instance.
func RegisterStatusRoutes(mux *http.ServeMux, st store.ReportStore) {
	mux.HandleFunc("/api/v1/instances", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		reports, err := st.ListReports()
		if err != nil {
			http.Error(w, "failed to list reports", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, buildInstanceList(reports))
	})
}

func buildInstanceList(reports []model.FleetReport) InstanceListResponse {
	resp := InstanceListResponse{
		Instances: []InstanceStatus{},
		ByStatus:  map[model.StatusLabel]int{},
	}
	for _, rep := range reports {
		for i, h := range rep.Healths {
			valid := true
			if i < len(rep.Reports) {
				valid = rep.Reports[i].IsValid
			}
			resp.Instances = append(resp.Instances, InstanceStatus{
				Host:        rep.Host,
				Health:      h,
				IsValid:     valid,
				EvaluatedAt: rep.EvaluatedAt,
			})
			resp.ByStatus[h.Status]++
			if h.IsHealthy {
				resp.Healthy++
			}
		}
	}
	resp.Total = len(resp.Instances)
	return resp
}
