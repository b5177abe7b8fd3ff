package balance

import (
	"context"

	"gorm.io/gorm"

	"ledgerly/internal/logger"
	"ledgerly/internal/models"
)

// Stage is how far the observer got with one mutation.
type Stage int

const (
	StageReceived Stage = iota
	StageDeltaComputed
	StageAggregatesPersisted
	StageViewsRefreshed
	StageComplete
)

func (s Stage) String() string {
	switch s {
	case StageReceived:
		return "received"
	case StageDeltaComputed:
		return "delta_computed"
	case StageAggregatesPersisted:
		return "aggregates_persisted"
	case StageViewsRefreshed:
		return "views_refreshed"
	case StageComplete:
		return "complete"
	}
	return "unknown"
}

// ViewFailure is a view refresh that failed after balances were persisted.
type ViewFailure struct {
	View View
	Err  error
}

// Outcome describes what the observer did for one event.
type Outcome struct {
	Stage           Stage
	Deltas          []Delta
	Refreshed       []View
	RefreshFailures []ViewFailure

	// Duplicate is set when the event had already been applied and was skipped.
	Duplicate bool
}

// Observer applies ledger mutation events to aggregate balances and
// refreshes the affected reporting views.
type Observer struct {
	store     *Store
	refresher Refresher
}

// NewObserver creates an Observer. A nil refresher disables view refreshes.
func NewObserver(store *Store, refresher Refresher) *Observer {
	return &Observer{store: store, refresher: refresher}
}

// VerifyReferences checks the entry's owners on tx. Callers run it before
// writing the entry so a bad reference is reported as a client error
// instead of tripping a foreign key.
func (o *Observer) VerifyReferences(ctx context.Context, tx *gorm.DB, e Entry) error {
	return o.store.VerifyReferences(tx.WithContext(ctx), e)
}

// Created applies a newly created entry.
func (o *Observer) Created(ctx context.Context, tx *gorm.DB, e Entry) (*Outcome, error) {
	return o.Handle(ctx, tx, CreatedEvent(e))
}

// Updated applies the difference between two snapshots of an entry.
func (o *Observer) Updated(ctx context.Context, tx *gorm.DB, newEntry, oldEntry Entry) (*Outcome, error) {
	return o.Handle(ctx, tx, UpdatedEvent(newEntry, oldEntry))
}

// Deleted removes a soft-deleted entry's effect.
func (o *Observer) Deleted(ctx context.Context, tx *gorm.DB, e Entry) (*Outcome, error) {
	return o.Handle(ctx, tx, DeletedEvent(e))
}

// Restored re-applies a restored entry.
func (o *Observer) Restored(ctx context.Context, tx *gorm.DB, e Entry) (*Outcome, error) {
	return o.Handle(ctx, tx, RestoredEvent(e))
}

// Handle runs one event through the observer on tx, which must be the
// transaction that persisted the ledger change.
//
// Any error returned means the balances were not (fully) adjusted and the
// caller must roll tx back. View refresh failures are not errors: each
// refresh runs in a savepoint, and a failure is logged, recorded and
// reported in the outcome while the balance writes stay in place.
func (o *Observer) Handle(ctx context.Context, tx *gorm.DB, ev Event) (*Outcome, error) {
	out := &Outcome{Stage: StageReceived}
	tx = tx.WithContext(ctx)

	if err := ev.Validate(); err != nil {
		return out, err
	}
	if ev.Kind != EventDeleted {
		if err := o.store.VerifyReferences(tx, ev.Entry); err != nil {
			return out, err
		}
	}

	fresh, err := o.store.claim(tx, ev)
	if err != nil {
		return out, err
	}
	if !fresh {
		logger.Get().Warnw("skipping duplicate balance event",
			"transaction_id", ev.Entry.ID,
			"revision", ev.Entry.Revision,
			"kind", ev.Kind,
		)
		out.Duplicate = true
		out.Stage = StageComplete
		return out, nil
	}

	out.Deltas = ev.Deltas()
	out.Stage = StageDeltaComputed

	if err := o.store.Apply(tx, ev.Entry.TeamID, out.Deltas); err != nil {
		return out, err
	}
	out.Stage = StageAggregatesPersisted

	if o.refresher != nil {
		for _, view := range ev.TouchedViews() {
			err := tx.Transaction(func(sp *gorm.DB) error {
				return o.refresher.Refresh(ctx, sp, view)
			})
			if err != nil {
				o.recordFailure(tx, ev, view, err)
				out.RefreshFailures = append(out.RefreshFailures, ViewFailure{View: view, Err: err})
				continue
			}
			out.Refreshed = append(out.Refreshed, view)
		}
	}
	out.Stage = StageViewsRefreshed

	out.Stage = StageComplete
	return out, nil
}

// recordFailure logs a failed refresh and stores it for later inspection.
// The insert runs in its own savepoint so a failure leaves tx usable; it is
// logged and never propagates.
func (o *Observer) recordFailure(tx *gorm.DB, ev Event, view View, cause error) {
	logger.Get().Errorw("reporting view refresh failed",
		"view", view,
		"team_id", ev.Entry.TeamID,
		"transaction_id", ev.Entry.ID,
		"kind", ev.Kind,
		"error", cause,
	)

	row := &models.ViewRefreshFailure{
		TeamID:        ev.Entry.TeamID,
		View:          string(view),
		TransactionID: ev.Entry.ID,
		Error:         cause.Error(),
	}
	err := tx.Transaction(func(sp *gorm.DB) error {
		return sp.Create(row).Error
	})
	if err != nil {
		logger.Get().Errorw("failed to record view refresh failure",
			"view", view,
			"transaction_id", ev.Entry.ID,
			"error", err,
		)
	}
}
