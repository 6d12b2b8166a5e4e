package agent

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"instance-doctor/pkg/inspect"
	dlog "instance-doctor/pkg/log"
	"instance-doctor/pkg/model"
)

// Reporter reads the host's snapshots and pushes them to the controller.
type Reporter struct {
	Client     *http.Client
	Controller string
	Host       string
	Source     inspect.Source
	Cache      *Cache // optional
	Log        zerolog.Logger
}

func NewReporter(controller, host string, src inspect.Source, cache *Cache) *Reporter {
	return &Reporter{
		Client:     &http.Client{Timeout: 10 * time.Second},
		Controller: strings.TrimRight(controller, "/"),
		Host:       host,
		Source:     src,
		Cache:      cache,
		Log:        dlog.WithComponent("agent"),
	}
}

// Run pushes once, then again every interval until ctx is done. A
// non-positive interval pushes once and returns that result.
func (r *Reporter) Run(ctx context.Context, interval time.Duration) error {
	if _, err := r.PushOnce(ctx); err != nil {
		if interval <= 0 {
			return err
		}
		r.Log.Warn().Err(err).Msg("report failed")
	}
	if interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := r.PushOnce(ctx); err != nil {
				r.Log.Warn().Err(err).Msg("report failed")
			}
		}
	}
}

// PushOnce collects the current batch and posts it for evaluation.
func (r *Reporter) PushOnce(ctx context.Context) (model.FleetReport, error) {
	batch, err := r.collect(ctx)
	if err != nil {
		return model.FleetReport{}, err
	}
	var report model.FleetReport
	if err := postJSON(ctx, r.Client, r.Controller+"/api/v1/snapshots", batch, &report); err != nil {
		return model.FleetReport{}, err
	}
	r.Log.Info().
		Str(dlog.FieldRunID, report.RunID).
		Str(dlog.FieldHost, batch.Host).
		Int(dlog.FieldInstances, len(batch.Instances)).
		Int(dlog.FieldConflicts, len(report.Conflicts)).
		Bool("all_valid", report.AllValid()).
		Msg("report pushed")
	return report, nil
}

func (r *Reporter) collect(ctx context.Context) (inspect.Batch, error) {
	snaps, err := r.Source.Snapshots(ctx)
	if err != nil {
		if r.Cache == nil {
			return inspect.Batch{}, err
		}
		cached, at, ok, cerr := r.Cache.Last(ctx)
		if cerr != nil || !ok {
			return inspect.Batch{}, errors.Join(err, cerr)
		}
		r.Log.Warn().Err(err).Time("cached_at", at).Msg("source unavailable, using cached snapshots")
		cached.Host = r.Host
		return cached, nil
	}
	batch := inspect.Batch{Host: r.Host, Instances: snaps}
	if r.Cache != nil {
		changed, err := r.Cache.Save(ctx, batch)
		if err != nil {
			r.Log.Warn().Err(err).Msg("snapshot cache write failed")
		} else if changed {
			r.Log.Debug().Int(dlog.FieldInstances, len(snaps)).Msg("snapshots changed")
		}
	}
	return batch, nil
}
