package diag

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	dlog "instance-doctor/pkg/log"
	"instance-doctor/pkg/model"
)

// Observer receives every completed evaluation.
type Observer interface {
	ObserveEvaluation(report model.FleetReport, took time.Duration)
}

// Engine evaluates batches of snapshots. It keeps no state between calls and
// is safe for concurrent use.
type Engine struct {
	log      zerolog.Logger
	observer Observer
	now      func() time.Time
	newRunID func() string
}

type Option func(*Engine)

func WithLogger(l zerolog.Logger) Option { return func(e *Engine) { e.log = l } }

func WithObserver(o Observer) Option { return func(e *Engine) { e.observer = o } }

// WithClock overrides the wall clock used for EvaluatedAt.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		log:      dlog.WithComponent("engine"),
		now:      time.Now,
		newRunID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate validates every snapshot in parallel, then detects port conflicts
// across the whole batch, attaches them to the affected reports and derives
// health. Output slices follow input order.
func (e *Engine) Evaluate(ctx context.Context, snapshots []model.InstanceSnapshot) (model.FleetReport, error) {
	if err := checkBatch(snapshots); err != nil {
		return model.FleetReport{}, err
	}
	start := e.now()
	runID := e.newRunID()

	reports := make([]model.ValidationReport, len(snapshots))
	var g errgroup.Group
	for i := range snapshots {
		i := i
		g.Go(func() error {
			reports[i] = Validate(snapshots[i])
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return model.FleetReport{}, err
	}

	conflicts := FindConflicts(snapshots)
	members := ConflictMap(conflicts)

	healths := make([]model.HealthCheck, len(snapshots))
	for i, s := range snapshots {
		mine := members[s.InstanceID]
		var others []string
		for _, c := range mine {
			issue := c.Issue()
			reports[i].AddIssue(issue.Category, issue.Message, issue.Severity)
			others = appendMissing(others, c.Others(s.InstanceID))
		}
		h := DeriveHealth(s, len(mine) > 0)
		h.ConflictingInstances = others
		healths[i] = h

		e.log.Debug().
			Str(dlog.FieldRunID, runID).
			Str(dlog.FieldInstanceID, s.InstanceID).
			Bool("valid", reports[i].IsValid).
			Str(dlog.FieldStatus, string(h.Status)).
			Int("issues", len(reports[i].Issues)).
			Msg("instance evaluated")
	}

	fleet := model.FleetReport{
		RunID:       runID,
		EvaluatedAt: start.UTC(),
		Reports:     reports,
		Healths:     healths,
		Conflicts:   conflicts,
	}
	took := e.now().Sub(start)
	e.log.Info().
		Str(dlog.FieldRunID, runID).
		Int(dlog.FieldInstances, len(snapshots)).
		Int(dlog.FieldConflicts, len(conflicts)).
		Int64(dlog.FieldDuration, took.Milliseconds()).
		Msg("fleet evaluated")
	if e.observer != nil {
		e.observer.ObserveEvaluation(fleet, took)
	}
	return fleet, nil
}

func checkBatch(snapshots []model.InstanceSnapshot) error {
	seen := make(map[string]struct{}, len(snapshots))
	for i, s := range snapshots {
		if s.InstanceID == "" {
			return fmt.Errorf("snapshot %d: %w", i, ErrEmptyInstanceID)
		}
		if _, ok := seen[s.InstanceID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateInstance, s.InstanceID)
		}
		seen[s.InstanceID] = struct{}{}
	}
	return nil
}

func appendMissing(dst, ids []string) []string {
	for _, id := range ids {
		found := false
		for _, have := range dst {
			if have == id {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, id)
		}
	}
	return dst
}
