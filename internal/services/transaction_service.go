package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledgerly/internal/balance"
	"ledgerly/internal/database"
	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/events"
	"ledgerly/internal/logger"
	"ledgerly/internal/models"
	"ledgerly/internal/pagination"
)

const publishTimeout = 5 * time.Second

// transactionService handles ledger entry business logic. It owns the
// database transaction of every write and reports each mutation to the
// balance observer inside it.
type transactionService struct {
	db        *gorm.DB
	observer  *balance.Observer
	publisher events.Publisher
}

// NewTransactionService creates a new TransactionServicer. A nil publisher
// disables change notifications.
func NewTransactionService(db *gorm.DB, observer *balance.Observer, publisher events.Publisher) TransactionServicer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &transactionService{
		db:        db,
		observer:  observer,
		publisher: publisher,
	}
}

// CreateTransaction records a new ledger entry and adds its amount to every
// owner it references.
func (s *transactionService) CreateTransaction(ctx context.Context, teamID string, in TransactionInput) (*models.Transaction, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		TeamID:     teamID,
		AccountID:  in.AccountID,
		MerchantID: in.MerchantID,
		CategoryID: in.CategoryID,
		Amount:     in.Amount,
		Date:       defaultDate(in.Date),
		Notes:      in.Notes,
		Revision:   1,
		TagIDs:     normalizeTags(in.TagIDs),
	}

	var outcome *balance.Outcome
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.observer.VerifyReferences(ctx, tx, toEntry(transaction)); err != nil {
			return err
		}
		if err := tx.Create(transaction).Error; err != nil {
			return err
		}
		if err := writeTags(tx, transaction.ID, transaction.TagIDs); err != nil {
			return err
		}

		var err error
		outcome, err = s.observer.Created(ctx, tx, toEntry(transaction))
		return err
	})
	if err != nil {
		return nil, classifyError(err)
	}

	s.publish(ctx, transaction, balance.EventCreated, outcome)
	return transaction, nil
}

// UpdateTransaction replaces every editable field of an active entry and
// moves balances by the difference between the old and new snapshots.
func (s *transactionService) UpdateTransaction(ctx context.Context, teamID, transactionID string, in TransactionInput) (*models.Transaction, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var (
		transaction *models.Transaction
		outcome     *balance.Outcome
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockTransaction(tx, teamID, transactionID, false)
		if err != nil {
			return err
		}
		oldEntry := toEntry(current)

		current.AccountID = in.AccountID
		current.MerchantID = in.MerchantID
		current.CategoryID = in.CategoryID
		current.Amount = in.Amount
		current.Date = defaultDate(in.Date)
		current.Notes = in.Notes
		current.TagIDs = normalizeTags(in.TagIDs)
		current.Revision++

		if err := s.observer.VerifyReferences(ctx, tx, toEntry(current)); err != nil {
			return err
		}
		if err := tx.Save(current).Error; err != nil {
			return err
		}
		if err := tx.Where("transaction_id = ?", current.ID).Delete(&models.TransactionTag{}).Error; err != nil {
			return err
		}
		if err := writeTags(tx, current.ID, current.TagIDs); err != nil {
			return err
		}

		outcome, err = s.observer.Updated(ctx, tx, toEntry(current), oldEntry)
		transaction = current
		return err
	})
	if err != nil {
		return nil, classifyError(err)
	}

	s.publish(ctx, transaction, balance.EventUpdated, outcome)
	return transaction, nil
}

// DeleteTransaction soft-deletes an active entry and removes its amount from
// every owner it references.
func (s *transactionService) DeleteTransaction(ctx context.Context, teamID, transactionID string) error {
	var (
		transaction *models.Transaction
		outcome     *balance.Outcome
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockTransaction(tx, teamID, transactionID, false)
		if err != nil {
			return err
		}
		current.Revision++

		if err := tx.Model(current).UpdateColumn("revision", current.Revision).Error; err != nil {
			return err
		}
		if err := tx.Delete(current).Error; err != nil {
			return err
		}

		outcome, err = s.observer.Deleted(ctx, tx, toEntry(current))
		transaction = current
		return err
	})
	if err != nil {
		return classifyError(err)
	}

	s.publish(ctx, transaction, balance.EventDeleted, outcome)
	return nil
}

// RestoreTransaction returns a soft-deleted entry to the active ledger and
// re-applies its amount. Owners it references must still be active.
func (s *transactionService) RestoreTransaction(ctx context.Context, teamID, transactionID string) (*models.Transaction, error) {
	var (
		transaction *models.Transaction
		outcome     *balance.Outcome
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockTransaction(tx, teamID, transactionID, true)
		if err != nil {
			return err
		}
		if !current.DeletedAt.Valid {
			return apperrors.ErrTransactionNotDeleted
		}
		current.Revision++

		err = tx.Unscoped().Model(current).UpdateColumns(map[string]interface{}{
			"deleted_at": nil,
			"revision":   current.Revision,
		}).Error
		if err != nil {
			return err
		}
		current.DeletedAt = gorm.DeletedAt{}

		outcome, err = s.observer.Restored(ctx, tx, toEntry(current))
		transaction = current
		return err
	})
	if err != nil {
		return nil, classifyError(err)
	}

	s.publish(ctx, transaction, balance.EventRestored, outcome)
	return transaction, nil
}

// GetTransactionByID retrieves an active transaction with its tags.
func (s *transactionService) GetTransactionByID(ctx context.Context, teamID, transactionID string) (*models.Transaction, error) {
	db := s.db.WithContext(ctx)

	var transaction models.Transaction
	if err := db.Where("id = ? AND team_id = ?", transactionID, teamID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	tags, err := loadTags(db, transaction.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	transaction.TagIDs = tags
	return &transaction, nil
}

// GetTeamTransactions retrieves a paginated, filtered list of a team's transactions.
func (s *transactionService) GetTeamTransactions(ctx context.Context, teamID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	db := s.db.WithContext(ctx)
	base := db.Model(&models.Transaction{})
	if filter.IncludeDeleted {
		base = base.Unscoped()
	}
	base = applyTransactionFilters(base.Where("team_id = ?", teamID), filter)

	result, err := pagination.Fetch[models.Transaction](base, page, "date DESC, id")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := attachTags(db, result.Data); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.AccountID != nil {
		q = q.Where("account_id = ?", *f.AccountID)
	}
	if f.MerchantID != nil {
		q = q.Where("merchant_id = ?", *f.MerchantID)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.TagID != nil {
		q = q.Where("id IN (SELECT transaction_id FROM transaction_tags WHERE tag_id = ?)", *f.TagID)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	return q
}

// publish notifies subscribers of a committed mutation. Failures are logged
// and never surface to the caller, whose write is already durable.
func (s *transactionService) publish(ctx context.Context, t *models.Transaction, kind balance.EventKind, outcome *balance.Outcome) {
	if outcome == nil || outcome.Duplicate || len(outcome.Deltas) == 0 {
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err := s.publisher.Publish(pubCtx, events.BalanceChanged{
		TeamID:        t.TeamID,
		TransactionID: t.ID,
		Revision:      t.Revision,
		Kind:          kind,
		Changes:       outcome.Deltas,
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		logger.Get().Warnw("failed to publish balance change",
			"team_id", t.TeamID,
			"transaction_id", t.ID,
			"revision", t.Revision,
			"error", err,
		)
	}
}

// lockTransaction loads a team's transaction and locks its row for the rest
// of the unit of work. Soft-deleted rows are only found when withDeleted is set.
func lockTransaction(tx *gorm.DB, teamID, transactionID string, withDeleted bool) (*models.Transaction, error) {
	q := tx.Clauses(clause.Locking{Strength: "UPDATE"})
	if withDeleted {
		q = q.Unscoped()
	}

	var transaction models.Transaction
	if err := q.Where("id = ? AND team_id = ?", transactionID, teamID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, err
	}

	tags, err := loadTags(tx, transaction.ID)
	if err != nil {
		return nil, err
	}
	transaction.TagIDs = tags
	return &transaction, nil
}

func loadTags(db *gorm.DB, transactionID string) ([]string, error) {
	tags := []string{}
	err := db.Model(&models.TransactionTag{}).
		Where("transaction_id = ?", transactionID).
		Order("tag_id").
		Pluck("tag_id", &tags).Error
	return tags, err
}

// attachTags fills TagIDs for a page of transactions with one query.
func attachTags(db *gorm.DB, transactions []models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}
	ids := make([]string, len(transactions))
	for i := range transactions {
		ids[i] = transactions[i].ID
		transactions[i].TagIDs = []string{}
	}

	var links []models.TransactionTag
	if err := db.Where("transaction_id IN ?", ids).Order("tag_id").Find(&links).Error; err != nil {
		return err
	}

	byTransaction := make(map[string][]string, len(transactions))
	for _, l := range links {
		byTransaction[l.TransactionID] = append(byTransaction[l.TransactionID], l.TagID)
	}
	for i := range transactions {
		if tags, ok := byTransaction[transactions[i].ID]; ok {
			transactions[i].TagIDs = tags
		}
	}
	return nil
}

func writeTags(tx *gorm.DB, transactionID string, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return nil
	}
	links := make([]models.TransactionTag, len(tagIDs))
	for i, tagID := range tagIDs {
		links[i] = models.TransactionTag{TransactionID: transactionID, TagID: tagID}
	}
	return tx.Create(&links).Error
}

func toEntry(t *models.Transaction) balance.Entry {
	return balance.Entry{
		ID:         t.ID,
		TeamID:     t.TeamID,
		Amount:     t.Amount,
		Date:       t.Date,
		AccountID:  t.AccountID,
		MerchantID: t.MerchantID,
		CategoryID: t.CategoryID,
		TagIDs:     t.TagIDs,
		Revision:   t.Revision,
	}
}

func validateInput(in TransactionInput) error {
	if in.AccountID == "" || in.MerchantID == "" || in.CategoryID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidRelationship, "account, merchant and category are required")
	}
	for _, tagID := range in.TagIDs {
		if tagID == "" {
			return apperrors.WithMessage(apperrors.ErrInvalidRelationship, "tag IDs must not be empty")
		}
	}
	return nil
}

func normalizeTags(tagIDs []string) []string {
	out := []string{}
	seen := make(map[string]bool, len(tagIDs))
	for _, id := range tagIDs {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func defaultDate(d time.Time) time.Time {
	if d.IsZero() {
		return time.Now().UTC()
	}
	return d
}

// classifyError maps errors escaping a unit of work to application errors.
// Lock conflicts, including those raised at commit, become retryable
// ErrConcurrencyConflict.
func classifyError(err error) error {
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
