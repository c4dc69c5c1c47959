// internal/handlers/seller.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vendora/marketplace-backend/internal/models"
	"github.com/vendora/marketplace-backend/internal/services"
	"github.com/vendora/marketplace-backend/internal/utils"
)

type SellerHandler struct {
	sellerService *services.SellerService
}

func NewSellerHandler(sellerService *services.SellerService) *SellerHandler {
	return &SellerHandler{sellerService: sellerService}
}

// POST /sellers
func (h *SellerHandler) RegisterSeller(c *gin.Context) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req services.RegisterSellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	seller, err := h.sellerService.RegisterSeller(userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Seller registration submitted", seller)
}

// GET /sellers
func (h *SellerHandler) ListSellers(c *gin.Context) {
	params := services.SellerListParams{
		CursorParams: utils.GetCursorParams(c, "created_at"),
	}

	if status := c.Query("status"); status != "" {
		s := models.SellerStatus(status)
		params.Status = &s
	}

	sellers, info, err := h.sellerService.ListSellers(params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, "Sellers retrieved", sellers, info)
}

// GET /sellers/me
func (h *SellerHandler) GetMySeller(c *gin.Context) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	seller, err := h.sellerService.GetSellerByUserID(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Seller retrieved", seller)
}

// GET /sellers/:id
func (h *SellerHandler) GetSeller(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid seller ID", nil)
		return
	}

	seller, err := h.sellerService.GetSeller(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Seller retrieved", seller)
}

// PATCH /sellers/:id/status
func (h *SellerHandler) UpdateSellerStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid seller ID", nil)
		return
	}

	var req services.UpdateSellerStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	seller, err := h.sellerService.UpdateSellerStatus(id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Seller status updated", seller)
}
