package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"ledgerly/internal/balance"
	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/logger"
	"ledgerly/internal/money"
)

// ownerColumns maps each reporting view to its owner id column.
var ownerColumns = map[balance.View]string{
	balance.ViewMerchantSummaries: "merchant_id",
	balance.ViewCategorySummaries: "category_id",
	balance.ViewTagSummaries:      "tag_id",
}

// reportService reads and rebuilds the reporting views.
type reportService struct {
	db          *gorm.DB
	refresher   balance.Refresher
	parallelism int
}

// NewReportService creates a new ReportServicer. At most parallelism views
// are rebuilt at the same time by RefreshViews.
func NewReportService(db *gorm.DB, refresher balance.Refresher, parallelism int) ReportServicer {
	if parallelism < 1 {
		parallelism = 1
	}
	return &reportService{db: db, refresher: refresher, parallelism: parallelism}
}

// GetSummaries returns a team's rows of view, ordered by owner name.
func (s *reportService) GetSummaries(ctx context.Context, teamID string, view balance.View) ([]SummaryRow, error) {
	column, ok := ownerColumns[view]
	if !ok {
		_, err := balance.ParseView(string(view))
		return nil, err
	}

	db := s.db.WithContext(ctx)
	team, err := findTeam(db, teamID)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		OwnerID           string
		Name              string
		Balance           int64
		TransactionCount  int64
		LastTransactionAt *time.Time
	}
	err = db.Table(string(view)).
		Select(column+" AS owner_id, name, balance, transaction_count, last_transaction_at").
		Where("team_id = ?", teamID).
		Order("name").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	out := make([]SummaryRow, len(rows))
	for i, r := range rows {
		out[i] = SummaryRow{
			OwnerID:           r.OwnerID,
			Name:              r.Name,
			Balance:           r.Balance,
			Display:           money.Format(r.Balance, team.Currency),
			TransactionCount:  r.TransactionCount,
			LastTransactionAt: r.LastTransactionAt,
		}
	}
	return out, nil
}

// RefreshViews rebuilds the given views, or every view when none is given.
// Views are rebuilt independently; one failing does not stop the others.
// The returned error is ErrViewRefreshFailed when any view failed.
func (s *reportService) RefreshViews(ctx context.Context, views ...balance.View) ([]RefreshResult, error) {
	if len(views) == 0 {
		views = balance.Views()
	}
	for _, v := range views {
		if _, err := balance.ParseView(string(v)); err != nil {
			return nil, err
		}
	}

	results := make([]RefreshResult, len(views))
	var g errgroup.Group
	g.SetLimit(s.parallelism)
	for i, view := range views {
		i, view := i, view
		g.Go(func() error {
			results[i] = RefreshResult{View: view}
			if err := s.refresher.Refresh(ctx, s.db.WithContext(ctx), view); err != nil {
				logger.Get().Errorw("reporting view refresh failed", "view", view, "error", err)
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if r.Error != "" {
			return results, apperrors.ErrViewRefreshFailed
		}
	}
	return results, nil
}
