// internal/services/review_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendora/marketplace-backend/internal/models"
	"github.com/vendora/marketplace-backend/internal/utils"
)

type ReviewService struct {
	db *gorm.DB
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

type ModerateReviewRequest struct {
	Status models.ReviewStatus `json:"status" validate:"required,oneof=approved rejected"`
}

type ReviewListParams struct {
	utils.CursorParams
	Status *models.ReviewStatus
}

var reviewSortColumns = map[string]string{
	"created_at": "created_at",
	"rating":     "rating",
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// CreateReview records one review per reviewer per service; the composite
// unique index backs the pre-check.
func (s *ReviewService) CreateReview(serviceID, reviewerID uuid.UUID, req *CreateReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var service models.Service
	if err := s.db.First(&service, "id = ?", serviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: service %s", ErrNotFound, serviceID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var count int64
	if err := s.db.Model(&models.Review{}).
		Where("service_id = ? AND reviewer_id = ?", serviceID, reviewerID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: review for service %s by this user", ErrConflict, serviceID)
	}

	review := &models.Review{
		ServiceID:  serviceID,
		ReviewerID: reviewerID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		Status:     models.ReviewStatusPending,
	}

	if err := s.db.Create(review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: review for service %s by this user", ErrConflict, serviceID)
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	return review, nil
}

func (s *ReviewService) ModerateReview(id uuid.UUID, req *ModerateReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var review models.Review
	if err := s.db.First(&review, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: review %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Model(&review).Update("status", req.Status).Error; err != nil {
		return nil, fmt.Errorf("failed to moderate review: %w", err)
	}

	return &review, nil
}

func (s *ReviewService) ListServiceReviews(serviceID uuid.UUID, params ReviewListParams) ([]models.Review, utils.PageInfo, error) {
	column, err := utils.ResolveSortColumn("reviews", params.SortBy, reviewSortColumns)
	if err != nil {
		return nil, utils.PageInfo{}, fmt.Errorf("%w: unsupported sort field %q", ErrValidation, params.SortBy)
	}

	query := s.db.Model(&models.Review{}).Where("service_id = ?", serviceID).Preload("Reviewer")

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	query = utils.ApplyCursor(query, "reviews", column, params.CursorParams)

	var reviews []models.Review
	if err := query.Limit(params.Limit + 1).Find(&reviews).Error; err != nil {
		return nil, utils.PageInfo{}, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	n, info := utils.SlicePage(len(reviews), params.CursorParams)
	reviews = reviews[:n]

	if info.HasNextPage && n > 0 {
		info.NextCursor = utils.EncodeCursor(reviewSortValue(&reviews[n-1], params.SortBy))
	}

	return reviews, info, nil
}

func reviewSortValue(review *models.Review, sortBy string) interface{} {
	switch sortBy {
	case "rating":
		return review.Rating
	default:
		return review.CreatedAt
	}
}
