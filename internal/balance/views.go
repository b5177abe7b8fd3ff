package balance

import (
	"context"

	apperrors "ledgerly/internal/errors"

	"gorm.io/gorm"
)

// View names a reporting view derived from the ledger.
type View string

const (
	ViewMerchantSummaries View = "merchant_summaries"
	ViewCategorySummaries View = "category_summaries"
	ViewTagSummaries      View = "tag_summaries"
)

var allViews = []View{ViewMerchantSummaries, ViewCategorySummaries, ViewTagSummaries}

// Views returns every reporting view.
func Views() []View {
	out := make([]View, len(allViews))
	copy(out, allViews)
	return out
}

// ParseView validates s as a view name.
func ParseView(s string) (View, error) {
	for _, v := range allViews {
		if string(v) == s {
			return v, nil
		}
	}
	return "", apperrors.WithMessage(apperrors.ErrInvalidView, "unknown reporting view: "+s)
}

// Refresher rebuilds a reporting view.
//
// Refresh runs on db, which may be an open transaction; it must return only
// once the view reflects every write visible to db. Concurrent refreshes of
// the same view must leave the view equal to one complete rebuild.
type Refresher interface {
	Refresh(ctx context.Context, db *gorm.DB, view View) error
}

// RefresherFunc adapts a function to the Refresher interface.
type RefresherFunc func(ctx context.Context, db *gorm.DB, view View) error

// Refresh calls f.
func (f RefresherFunc) Refresh(ctx context.Context, db *gorm.DB, view View) error {
	return f(ctx, db, view)
}
