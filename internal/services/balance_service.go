package services

import (
	"context"

	"gorm.io/gorm"

	"ledgerly/internal/balance"
	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
	"ledgerly/internal/money"
)

// balanceService exposes the aggregate balances maintained by the observer.
type balanceService struct {
	db    *gorm.DB
	store *balance.Store
}

// NewBalanceService creates a new BalanceServicer.
func NewBalanceService(db *gorm.DB, store *balance.Store) BalanceServicer {
	return &balanceService{db: db, store: store}
}

// GetBalance returns an owner's balance. Accounts are displayed in their own
// currency, every other owner in the team's currency.
func (s *balanceService) GetBalance(ctx context.Context, teamID string, entityType balance.EntityType, entityID string) (*BalanceReport, error) {
	amount, err := s.store.Balance(ctx, teamID, entityType, entityID)
	if err != nil {
		return nil, err
	}

	currency, err := s.currencyFor(ctx, teamID, entityType, entityID)
	if err != nil {
		return nil, err
	}

	return &BalanceReport{
		EntityType: entityType,
		EntityID:   entityID,
		Balance:    amount,
		Display:    money.Format(amount, currency),
		Currency:   currency,
	}, nil
}

// Reconcile lists owners of a team whose stored balance disagrees with the
// active ledger.
func (s *balanceService) Reconcile(ctx context.Context, teamID string) ([]balance.Drift, error) {
	if _, err := findTeam(s.db.WithContext(ctx), teamID); err != nil {
		return nil, err
	}
	drifts, err := s.store.Reconcile(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if drifts == nil {
		drifts = []balance.Drift{}
	}
	return drifts, nil
}

func (s *balanceService) currencyFor(ctx context.Context, teamID string, entityType balance.EntityType, entityID string) (string, error) {
	db := s.db.WithContext(ctx)
	if entityType == balance.EntityAccount {
		var account models.Account
		if err := db.Select("currency").Where("id = ? AND team_id = ?", entityID, teamID).First(&account).Error; err != nil {
			return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return account.Currency, nil
	}

	team, err := findTeam(db, teamID)
	if err != nil {
		return "", err
	}
	return team.Currency, nil
}
