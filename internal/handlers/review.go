// internal/handlers/review.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vendora/marketplace-backend/internal/models"
	"github.com/vendora/marketplace-backend/internal/services"
	"github.com/vendora/marketplace-backend/internal/utils"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// POST /services/:id/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid service ID", nil)
		return
	}

	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	reviewerID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req services.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	review, err := h.reviewService.CreateReview(serviceID, reviewerID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Review submitted", review)
}

// GET /services/:id/reviews
//
// Anonymous callers only see approved reviews; staff may filter by status.
func (h *ReviewHandler) ListServiceReviews(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid service ID", nil)
		return
	}

	params := services.ReviewListParams{
		CursorParams: utils.GetCursorParams(c, "created_at"),
	}

	role, _ := utils.GetUserRoleFromContext(c)
	isStaff := role == string(models.UserRoleAdmin) ||
		role == string(models.UserRoleSuperAdmin) ||
		role == string(models.UserRoleEditor)

	if isStaff {
		if status := c.Query("status"); status != "" {
			s := models.ReviewStatus(status)
			params.Status = &s
		}
	} else {
		approved := models.ReviewStatusApproved
		params.Status = &approved
	}

	reviews, info, err := h.reviewService.ListServiceReviews(serviceID, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, "Reviews retrieved", reviews, info)
}

// PATCH /reviews/:id/status
func (h *ReviewHandler) ModerateReview(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid review ID", nil)
		return
	}

	var req services.ModerateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	review, err := h.reviewService.ModerateReview(id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Review moderated", review)
}
