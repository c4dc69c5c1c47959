// internal/services/gamification_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendora/marketplace-backend/internal/models"
	"github.com/vendora/marketplace-backend/internal/utils"
)

type GamificationService struct {
	db *gorm.DB
}

type CreateBadgeRequest struct {
	Name        string       `json:"name" validate:"required,min=2,max=255"`
	Slug        string       `json:"slug" validate:"required,slug"`
	Description string       `json:"description,omitempty"`
	Icon        string       `json:"icon,omitempty" validate:"omitempty,max=255"`
	Criteria    models.JSONB `json:"criteria,omitempty"`
}

type UpdateBadgeRequest struct {
	Name        *string      `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Slug        *string      `json:"slug,omitempty" validate:"omitempty,slug"`
	Description *string      `json:"description,omitempty"`
	Icon        *string      `json:"icon,omitempty" validate:"omitempty,max=255"`
	Criteria    models.JSONB `json:"criteria,omitempty"`
	IsActive    *bool        `json:"is_active,omitempty"`
}

func NewGamificationService(db *gorm.DB) *GamificationService {
	return &GamificationService{db: db}
}

func (s *GamificationService) ListBadges(activeOnly bool) ([]models.Badge, error) {
	query := s.db.Model(&models.Badge{}).Order("created_at DESC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var badges []models.Badge
	if err := query.Find(&badges).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch badges: %w", err)
	}

	return badges, nil
}

func (s *GamificationService) CreateBadge(req *CreateBadgeRequest) (*models.Badge, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var count int64
	if err := s.db.Model(&models.Badge{}).Where("slug = ?", req.Slug).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: badge slug %q", ErrConflict, req.Slug)
	}

	badge := &models.Badge{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Icon:        req.Icon,
		Criteria:    req.Criteria,
		IsActive:    true,
	}

	if err := s.db.Create(badge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: badge slug %q", ErrConflict, req.Slug)
		}
		return nil, fmt.Errorf("failed to create badge: %w", err)
	}

	return badge, nil
}

func (s *GamificationService) UpdateBadge(id uuid.UUID, req *UpdateBadgeRequest) (*models.Badge, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var badge models.Badge
	if err := s.db.First(&badge, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: badge %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.Slug != nil && *req.Slug != badge.Slug {
		var count int64
		if err := s.db.Model(&models.Badge{}).
			Where("slug = ? AND id != ?", *req.Slug, id).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to check slug: %w", err)
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: badge slug %q", ErrConflict, *req.Slug)
		}
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Slug != nil {
		updates["slug"] = *req.Slug
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Icon != nil {
		updates["icon"] = *req.Icon
	}
	if req.Criteria != nil {
		updates["criteria"] = req.Criteria
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(&badge).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, fmt.Errorf("%w: badge slug %q", ErrConflict, *req.Slug)
			}
			return nil, fmt.Errorf("failed to update badge: %w", err)
		}
	}

	return &badge, nil
}

// AwardBadge grants a badge to a user at most once; the composite unique
// index on (user_id, badge_id) backs the pre-check.
func (s *GamificationService) AwardBadge(userID, badgeID, awardedBy uuid.UUID) (*models.UserBadge, error) {
	var badge models.Badge
	if err := s.db.First(&badge, "id = ?", badgeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: badge %s", ErrNotFound, badgeID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !badge.IsActive {
		return nil, fmt.Errorf("%w: badge %q is not active", ErrValidation, badge.Slug)
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var count int64
	if err := s.db.Model(&models.UserBadge{}).
		Where("user_id = ? AND badge_id = ?", userID, badgeID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check award: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: badge %q already awarded to user", ErrConflict, badge.Slug)
	}

	award := &models.UserBadge{
		UserID:    userID,
		BadgeID:   badgeID,
		AwardedAt: time.Now(),
		AwardedBy: &awardedBy,
	}

	if err := s.db.Create(award).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: badge %q already awarded to user", ErrConflict, badge.Slug)
		}
		return nil, fmt.Errorf("failed to award badge: %w", err)
	}

	s.db.Preload("Badge").First(award, award.ID)

	return award, nil
}

func (s *GamificationService) ListUserBadges(userID uuid.UUID) ([]models.UserBadge, error) {
	var awards []models.UserBadge
	err := s.db.Where("user_id = ?", userID).
		Preload("Badge").
		Order("awarded_at DESC").
		Find(&awards).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user badges: %w", err)
	}

	return awards, nil
}
