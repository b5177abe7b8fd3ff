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

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(
	ctx context.Context,
	teamID string,
	name string,
	categoryType models.CategoryType,
	color string,
) (*models.Category, error) {
	// Validate input
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if categoryType != models.CategoryTypeIncome && categoryType != models.CategoryTypeExpense {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be income or expense")
	}

	db := s.db.WithContext(ctx)
	if _, err := findTeam(db, teamID); err != nil {
		return nil, err
	}

	// Check if a category with the same name already exists for this team
	var count int64
	if err := db.Model(&models.Category{}).
		Where("team_id = ? AND name = ?", teamID, name).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category with this name already exists")
	}

	category := &models.Category{
		TeamID: teamID,
		Name:   name,
		Type:   categoryType,
		Color:  color,
	}
	if err := db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// GetTeamCategories retrieves a paginated list of categories for a team.
func (s *categoryService) GetTeamCategories(ctx context.Context, teamID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	query := s.db.WithContext(ctx).Model(&models.Category{}).Where("team_id = ?", teamID)
	result, err := pagination.Fetch[models.Category](query, page, "type, name")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetCategoryByID retrieves a category by ID for a specific team.
func (s *categoryService) GetCategoryByID(ctx context.Context, teamID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).Where("id = ? AND team_id = ?", categoryID, teamID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// DeleteCategory soft-deletes a category that no active transaction uses.
func (s *categoryService) DeleteCategory(ctx context.Context, teamID, categoryID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.Where("id = ? AND team_id = ?", categoryID, teamID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrCategoryNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := ensureUnreferenced(tx, "category_id", categoryID); err != nil {
			return err
		}
		if err := tx.Delete(&category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
