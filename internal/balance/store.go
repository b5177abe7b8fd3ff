package balance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledgerly/internal/database"
	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
)

// Store reads and mutates the aggregate balance columns. Writes go through
// Apply only, always on the caller's transaction.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store reading through db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// VerifyReferences checks that every owner the entry references exists, is
// active and belongs to the entry's team.
func (s *Store) VerifyReferences(tx *gorm.DB, e Entry) error {
	for _, group := range groupKeys(e.keys()) {
		var n int64
		err := tx.Table(group.typ.table()).
			Where("id IN ? AND team_id = ? AND deleted_at IS NULL", group.ids, e.TeamID).
			Count(&n).Error
		if err != nil {
			return classify(err)
		}
		if n != int64(len(group.ids)) {
			return apperrors.WithMessage(apperrors.ErrInvalidRelationship,
				fmt.Sprintf("%s does not exist or belongs to another team", group.typ))
		}
	}
	return nil
}

// Apply adds each delta to its owner's balance. Owner rows are locked in a
// fixed order (entity type, then id) before any of them is written, so two
// units of work touching the same owners serialize instead of deadlocking.
// Soft-deleted owners are still adjusted; an owner that is missing or
// belongs to another team fails the whole call.
func (s *Store) Apply(tx *gorm.DB, teamID string, deltas []Delta) error {
	keys := make([]Key, len(deltas))
	for i, d := range deltas {
		keys[i] = d.Key
	}

	for _, group := range groupKeys(keys) {
		var locked []string
		err := tx.Table(group.typ.table()).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ? AND team_id = ?", group.ids, teamID).
			Order("id").
			Pluck("id", &locked).Error
		if err != nil {
			return classify(err)
		}
		if len(locked) != len(group.ids) {
			return apperrors.WithMessage(apperrors.ErrInvalidRelationship,
				fmt.Sprintf("%s balance row not found for team", group.typ))
		}
	}

	for _, d := range deltas {
		res := tx.Table(d.Type.table()).
			Where("id = ?", d.ID).
			UpdateColumn("balance", gorm.Expr("balance + ?", d.Amount))
		if res.Error != nil {
			return classify(res.Error)
		}
		if res.RowsAffected != 1 {
			return apperrors.WithMessage(apperrors.ErrInvalidRelationship,
				fmt.Sprintf("%s balance row not found", d.Type))
		}
	}
	return nil
}

// claim records the event's (transaction, revision) identity. It returns
// false when the identity was already recorded, meaning the event is a
// replay whose effect must not be applied again.
func (s *Store) claim(tx *gorm.DB, ev Event) (bool, error) {
	if ev.Entry.Revision == 0 {
		return true, nil
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.AppliedBalanceEvent{
		TransactionID: ev.Entry.ID,
		Revision:      ev.Entry.Revision,
		Kind:          string(ev.Kind),
		AppliedAt:     time.Now().UTC(),
	})
	if res.Error != nil {
		return false, classify(res.Error)
	}
	return res.RowsAffected == 1, nil
}

// Balance returns the current balance of one active owner.
func (s *Store) Balance(ctx context.Context, teamID string, typ EntityType, id string) (int64, error) {
	if typ.rank() < 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidEntityType, "unsupported entity type: "+string(typ))
	}

	var row struct{ Balance int64 }
	err := s.db.WithContext(ctx).Table(typ.table()).
		Select("balance").
		Where("id = ? AND team_id = ? AND deleted_at IS NULL", id, teamID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, typ.notFound()
		}
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return row.Balance, nil
}

// Drift is an owner whose stored balance disagrees with its ledger.
type Drift struct {
	Key
	Stored   int64 `json:"stored"`
	Expected int64 `json:"expected"`
}

// Reconcile recomputes every active owner's balance of a team from the
// active ledger entries and reports the owners whose stored balance differs.
// It is a full scan and meant for audits, never for the write path.
func (s *Store) Reconcile(ctx context.Context, teamID string) ([]Drift, error) {
	var drifts []Drift
	for _, typ := range entityOrder {
		var rows []struct {
			ID       string
			Stored   int64
			Expected int64
		}
		if err := s.db.WithContext(ctx).Raw(reconcileQuery(typ), teamID).Scan(&rows).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for _, r := range rows {
			if r.Stored != r.Expected {
				drifts = append(drifts, Drift{Key: Key{Type: typ, ID: r.ID}, Stored: r.Stored, Expected: r.Expected})
			}
		}
	}
	return drifts, nil
}

func reconcileQuery(typ EntityType) string {
	if typ == EntityTag {
		return `SELECT o.id AS id, o.balance AS stored, COALESCE(SUM(t.amount), 0) AS expected
FROM tags o
LEFT JOIN transaction_tags tt ON tt.tag_id = o.id
LEFT JOIN transactions t ON t.id = tt.transaction_id AND t.deleted_at IS NULL
WHERE o.team_id = ? AND o.deleted_at IS NULL
GROUP BY o.id, o.balance`
	}
	return fmt.Sprintf(`SELECT o.id AS id, o.balance AS stored, COALESCE(SUM(t.amount), 0) AS expected
FROM %s o
LEFT JOIN transactions t ON t.%s_id = o.id AND t.deleted_at IS NULL
WHERE o.team_id = ? AND o.deleted_at IS NULL
GROUP BY o.id, o.balance`, typ.table(), typ)
}

type keyGroup struct {
	typ EntityType
	ids []string
}

// groupKeys buckets keys by entity type in lock order with sorted, unique ids.
func groupKeys(keys []Key) []keyGroup {
	byType := make(map[EntityType][]string)
	for _, k := range keys {
		byType[k.Type] = append(byType[k.Type], k.ID)
	}
	var groups []keyGroup
	for _, typ := range entityOrder {
		if ids := uniqueSorted(byType[typ]); len(ids) > 0 {
			groups = append(groups, keyGroup{typ: typ, ids: ids})
		}
	}
	return groups
}

// classify maps driver errors to application errors.
func classify(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if database.IsConcurrencyConflict(err) {
		return apperrors.Wrap(apperrors.ErrConcurrencyConflict, err)
	}
	if database.IsForeignKeyViolation(err) {
		return apperrors.Wrap(apperrors.ErrInvalidRelationship, err)
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
