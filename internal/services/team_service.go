package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
)

// teamService handles team-related business logic.
type teamService struct {
	db *gorm.DB
}

// NewTeamService creates a new TeamServicer.
func NewTeamService(db *gorm.DB) TeamServicer {
	return &teamService{db: db}
}

// CreateTeam creates a new team. Currency defaults to USD.
func (s *teamService) CreateTeam(ctx context.Context, name, currency string) (*models.Team, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "team name is required")
	}
	if currency == "" {
		currency = "USD"
	}

	team := &models.Team{Name: name, Currency: strings.ToUpper(currency)}
	if err := s.db.WithContext(ctx).Create(team).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return team, nil
}

// GetTeamByID retrieves a team by ID.
func (s *teamService) GetTeamByID(ctx context.Context, teamID string) (*models.Team, error) {
	return findTeam(s.db.WithContext(ctx), teamID)
}

func findTeam(db *gorm.DB, teamID string) (*models.Team, error) {
	var team models.Team
	if err := db.Where("id = ?", teamID).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTeamNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &team, nil
}

// ensureUnreferenced fails with ErrOwnerInUse when an active transaction
// still references the owner through column.
func ensureUnreferenced(tx *gorm.DB, column, id string) error {
	var n int64
	if err := tx.Model(&models.Transaction{}).Where(column+" = ?", id).Count(&n).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if n > 0 {
		return apperrors.ErrOwnerInUse
	}
	return nil
}
