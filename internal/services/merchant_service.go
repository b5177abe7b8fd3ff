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

// merchantService handles merchant-related business logic.
type merchantService struct {
	db *gorm.DB
}

// NewMerchantService creates a new MerchantServicer.
func NewMerchantService(db *gorm.DB) MerchantServicer {
	return &merchantService{db: db}
}

// CreateMerchant creates a new merchant for a team.
func (s *merchantService) CreateMerchant(ctx context.Context, teamID, name, website string) (*models.Merchant, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "merchant name is required")
	}

	db := s.db.WithContext(ctx)
	if _, err := findTeam(db, teamID); err != nil {
		return nil, err
	}

	merchant := &models.Merchant{TeamID: teamID, Name: name, Website: website}
	if err := db.Create(merchant).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return merchant, nil
}

// GetTeamMerchants retrieves a paginated list of merchants for a team.
func (s *merchantService) GetTeamMerchants(ctx context.Context, teamID string, page pagination.PageRequest) (*pagination.PageResponse[models.Merchant], error) {
	query := s.db.WithContext(ctx).Model(&models.Merchant{}).Where("team_id = ?", teamID)
	result, err := pagination.Fetch[models.Merchant](query, page, "name")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetMerchantByID retrieves a merchant by ID for a specific team.
func (s *merchantService) GetMerchantByID(ctx context.Context, teamID, merchantID string) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := s.db.WithContext(ctx).Where("id = ? AND team_id = ?", merchantID, teamID).First(&merchant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMerchantNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &merchant, nil
}

// DeleteMerchant soft-deletes a merchant that no active transaction uses.
func (s *merchantService) DeleteMerchant(ctx context.Context, teamID, merchantID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var merchant models.Merchant
		if err := tx.Where("id = ? AND team_id = ?", merchantID, teamID).First(&merchant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrMerchantNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := ensureUnreferenced(tx, "merchant_id", merchantID); err != nil {
			return err
		}
		if err := tx.Delete(&merchant).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
