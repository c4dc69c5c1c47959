// internal/handlers/gamification.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vendora/marketplace-backend/internal/services"
	"github.com/vendora/marketplace-backend/internal/utils"
)

type GamificationHandler struct {
	gamificationService *services.GamificationService
}

func NewGamificationHandler(gamificationService *services.GamificationService) *GamificationHandler {
	return &GamificationHandler{gamificationService: gamificationService}
}

// GET /badges
func (h *GamificationHandler) ListBadges(c *gin.Context) {
	activeOnly := true
	if activeStr := c.Query("activeOnly"); activeStr != "" {
		if parsed, err := strconv.ParseBool(activeStr); err == nil {
			activeOnly = parsed
		}
	}

	badges, err := h.gamificationService.ListBadges(activeOnly)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Badges retrieved", badges)
}

// POST /badges
func (h *GamificationHandler) CreateBadge(c *gin.Context) {
	var req services.CreateBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	badge, err := h.gamificationService.CreateBadge(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Badge created", badge)
}

// PATCH /badges/:id
func (h *GamificationHandler) UpdateBadge(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid badge ID", nil)
		return
	}

	var req services.UpdateBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	badge, err := h.gamificationService.UpdateBadge(id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Badge updated", badge)
}

// POST /badges/:id/award
func (h *GamificationHandler) AwardBadge(c *gin.Context) {
	badgeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid badge ID", nil)
		return
	}

	awardedByStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	awardedBy, err := uuid.Parse(awardedByStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req struct {
		UserID uuid.UUID `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	award, err := h.gamificationService.AwardBadge(req.UserID, badgeID, awardedBy)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Badge awarded", award)
}

// GET /users/:id/badges
func (h *GamificationHandler) ListUserBadges(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	awards, err := h.gamificationService.ListUserBadges(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "User badges retrieved", awards)
}
