// Package reporting rebuilds and reads the summary views derived from the
// transaction ledger.
package reporting

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"ledgerly/internal/balance"
	apperrors "ledgerly/internal/errors"
)

// NewRefresher returns the refresher suited to db's dialect: materialized
// view refreshes on PostgreSQL, summary table rebuilds elsewhere.
func NewRefresher(db *gorm.DB, concurrently bool) balance.Refresher {
	if db.Dialector.Name() == "postgres" {
		return &MaterializedViewRefresher{Concurrently: concurrently}
	}
	return &SnapshotRefresher{}
}

// MaterializedViewRefresher refreshes PostgreSQL materialized views. With
// Concurrently set, readers keep seeing the previous contents until the new
// ones are swapped in; PostgreSQL serializes concurrent refreshes of the
// same view.
type MaterializedViewRefresher struct {
	Concurrently bool
}

// Refresh implements balance.Refresher.
func (r *MaterializedViewRefresher) Refresh(ctx context.Context, db *gorm.DB, view balance.View) error {
	if _, err := balance.ParseView(string(view)); err != nil {
		return err
	}

	stmt := "REFRESH MATERIALIZED VIEW "
	if r.Concurrently {
		stmt += "CONCURRENTLY "
	}
	if err := db.WithContext(ctx).Exec(stmt + string(view)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrViewRefreshFailed, fmt.Errorf("refresh %s: %w", view, err))
	}
	return nil
}

// SnapshotRefresher rebuilds summary tables with plain SQL for databases
// without materialized views. The delete and re-insert run in one
// transaction, so readers never observe a half-built table.
type SnapshotRefresher struct{}

// Refresh implements balance.Refresher.
func (r *SnapshotRefresher) Refresh(ctx context.Context, db *gorm.DB, view balance.View) error {
	q, ok := snapshotQueries[view]
	if !ok {
		_, err := balance.ParseView(string(view))
		return err
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM " + string(view)).Error; err != nil {
			return err
		}
		return tx.Exec(q).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrViewRefreshFailed, fmt.Errorf("rebuild %s: %w", view, err))
	}
	return nil
}

var snapshotQueries = map[balance.View]string{
	balance.ViewMerchantSummaries: `INSERT INTO merchant_summaries (merchant_id, team_id, name, balance, transaction_count, last_transaction_at)
SELECT m.id, m.team_id, m.name, COALESCE(SUM(t.amount), 0), COUNT(t.id), MAX(t.date)
FROM merchants m
LEFT JOIN transactions t ON t.merchant_id = m.id AND t.deleted_at IS NULL
WHERE m.deleted_at IS NULL
GROUP BY m.id, m.team_id, m.name`,
	balance.ViewCategorySummaries: `INSERT INTO category_summaries (category_id, team_id, name, balance, transaction_count, last_transaction_at)
SELECT c.id, c.team_id, c.name, COALESCE(SUM(t.amount), 0), COUNT(t.id), MAX(t.date)
FROM categories c
LEFT JOIN transactions t ON t.category_id = c.id AND t.deleted_at IS NULL
WHERE c.deleted_at IS NULL
GROUP BY c.id, c.team_id, c.name`,
	balance.ViewTagSummaries: `INSERT INTO tag_summaries (tag_id, team_id, name, balance, transaction_count, last_transaction_at)
SELECT g.id, g.team_id, g.name, COALESCE(SUM(t.amount), 0), COUNT(t.id), MAX(t.date)
FROM tags g
LEFT JOIN transaction_tags tt ON tt.tag_id = g.id
LEFT JOIN transactions t ON t.id = tt.transaction_id AND t.deleted_at IS NULL
WHERE g.deleted_at IS NULL
GROUP BY g.id, g.team_id, g.name`,
}

// RecordingRefresher records refresh calls and optionally fails chosen
// views. It is meant for tests.
type RecordingRefresher struct {
	mu    sync.Mutex
	calls []balance.View
	Fail  map[balance.View]error
}

// Refresh implements balance.Refresher.
func (r *RecordingRefresher) Refresh(_ context.Context, _ *gorm.DB, view balance.View) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, view)
	if err, ok := r.Fail[view]; ok {
		return err
	}
	return nil
}

// Calls returns the views refreshed so far, in call order.
func (r *RecordingRefresher) Calls() []balance.View {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]balance.View, len(r.calls))
	copy(out, r.calls)
	return out
}

// Reset forgets recorded calls.
func (r *RecordingRefresher) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
