package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"instance-doctor/pkg/diag"
	dlog "instance-doctor/pkg/log"
	"instance-doctor/pkg/store"
)

const maxBatchBytes = 4 << 20

var logger = dlog.WithComponent("controller")

// SetLogger replaces the logger used by the handlers.
func SetLogger(l zerolog.Logger) { logger = l }

// RegisterRoutes wires the HTTP handlers on the provided mux. hub may be nil
// when no report feed is served.
func RegisterRoutes(mux *http.ServeMux, engine *diag.Engine, st store.ReportStore, hub *ReportHub) {
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("instance-doctor controller"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", promhttp.Handler())

	// Evaluate, keep as the host's latest report and notify subscribers.
	mux.HandleFunc("/api/v1/snapshots", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		req, ok := decodeBatch(w, r)
		if !ok {
			return
		}
		report, err := engine.Evaluate(r.Context(), req.Instances)
		if err != nil {
			writeEvalError(w, err)
			return
		}
		report.Host = req.Host
		if err := st.SaveReport(report); err != nil {
			logger.Error().Err(err).Str(dlog.FieldHost, req.Host).Msg("save report failed")
			http.Error(w, "failed to persist report", http.StatusInternalServerError)
			return
		}
		if hub != nil {
			hub.Broadcast(report)
		}
		logger.Info().
			Str(dlog.FieldRunID, report.RunID).
			Str(dlog.FieldHost, req.Host).
			Int(dlog.FieldInstances, len(report.Reports)).
			Str(dlog.FieldRemote, r.RemoteAddr).
			Msg("snapshots evaluated")
		writeJSON(w, http.StatusOK, report)
	})

	// Dry run: evaluate and return without storing.
	mux.HandleFunc("/api/v1/evaluate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		req, ok := decodeBatch(w, r)
		if !ok {
			return
		}
		report, err := engine.Evaluate(r.Context(), req.Instances)
		if err != nil {
			writeEvalError(w, err)
			return
		}
		report.Host = req.Host
		writeJSON(w, http.StatusOK, report)
	})

	RegisterReportRoutes(mux, st)
	RegisterStatusRoutes(mux, st)
	if hub != nil {
		mux.HandleFunc("/api/v1/ws/reports", hub.HandleSubscribe)
	}
}

func decodeBatch(w http.ResponseWriter, r *http.Request) (SnapshotBatchRequest, bool) {
	var req SnapshotBatchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBatchBytes))
	if err := dec.Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func writeEvalError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, diag.ErrDuplicateInstance), errors.Is(err, diag.ErrEmptyInstanceID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Error().Err(err).Msg("evaluation failed")
		http.Error(w, "evaluation failed", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn().Err(err).Msg("failed to write response")
	}
}
