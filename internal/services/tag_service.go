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

// tagService handles tag-related business logic.
type tagService struct {
	db *gorm.DB
}

// NewTagService creates a new TagServicer.
func NewTagService(db *gorm.DB) TagServicer {
	return &tagService{db: db}
}

// CreateTag creates a new tag. Tag names are unique within a team.
func (s *tagService) CreateTag(ctx context.Context, teamID, name, color string) (*models.Tag, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "tag name is required")
	}

	db := s.db.WithContext(ctx)
	if _, err := findTeam(db, teamID); err != nil {
		return nil, err
	}

	var count int64
	if err := db.Model(&models.Tag{}).Where("team_id = ? AND name = ?", teamID, name).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "tag with this name already exists")
	}

	tag := &models.Tag{TeamID: teamID, Name: name, Color: color}
	if err := db.Create(tag).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tag, nil
}

// GetTeamTags retrieves a paginated list of tags for a team.
func (s *tagService) GetTeamTags(ctx context.Context, teamID string, page pagination.PageRequest) (*pagination.PageResponse[models.Tag], error) {
	query := s.db.WithContext(ctx).Model(&models.Tag{}).Where("team_id = ?", teamID)
	result, err := pagination.Fetch[models.Tag](query, page, "name")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetTagByID retrieves a tag by ID for a specific team.
func (s *tagService) GetTagByID(ctx context.Context, teamID, tagID string) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).Where("id = ? AND team_id = ?", tagID, teamID).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTagNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &tag, nil
}

// DeleteTag soft-deletes a tag that no active transaction carries.
func (s *tagService) DeleteTag(ctx context.Context, teamID, tagID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tag models.Tag
		if err := tx.Where("id = ? AND team_id = ?", tagID, teamID).First(&tag).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrTagNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var n int64
		err := tx.Model(&models.Transaction{}).
			Joins("JOIN transaction_tags tt ON tt.transaction_id = transactions.id").
			Where("tt.tag_id = ?", tagID).
			Count(&n).Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if n > 0 {
			return apperrors.ErrOwnerInUse
		}

		if err := tx.Delete(&tag).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
