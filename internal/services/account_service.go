package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
	"ledgerly/internal/pagination"
)

// accountService handles account-related business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// CreateAccount creates a new account for a team. Balances start at zero and
// only move through transactions.
func (s *accountService) CreateAccount(ctx context.Context, teamID, name, description, currency string) (*models.Account, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}

	db := s.db.WithContext(ctx)
	team, err := findTeam(db, teamID)
	if err != nil {
		return nil, err
	}
	if currency == "" {
		currency = team.Currency
	}

	account := &models.Account{
		TeamID:      teamID,
		Name:        name,
		Description: description,
		Currency:    strings.ToUpper(currency),
		Balance:     0,
	}
	if err := db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// GetTeamAccounts retrieves a paginated list of accounts for a team.
func (s *accountService) GetTeamAccounts(ctx context.Context, teamID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	query := s.db.WithContext(ctx).Model(&models.Account{}).Where("team_id = ?", teamID)
	result, err := pagination.Fetch[models.Account](query, page, "name")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetAccountByID retrieves an account by ID for a specific team.
func (s *accountService) GetAccountByID(ctx context.Context, teamID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).Where("id = ? AND team_id = ?", accountID, teamID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// DeleteAccount soft-deletes an account that no active transaction uses.
func (s *accountService) DeleteAccount(ctx context.Context, teamID, accountID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account models.Account
		if err := tx.Where("id = ? AND team_id = ?", accountID, teamID).First(&account).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrAccountNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := ensureUnreferenced(tx, "account_id", accountID); err != nil {
			return err
		}
		if err := tx.Delete(&account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
