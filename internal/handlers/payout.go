// internal/handlers/payout.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vendora/marketplace-backend/internal/models"
	"github.com/vendora/marketplace-backend/internal/services"
	"github.com/vendora/marketplace-backend/internal/utils"
)

type PayoutHandler struct {
	payoutService *services.PayoutService
}

func NewPayoutHandler(payoutService *services.PayoutService) *PayoutHandler {
	return &PayoutHandler{payoutService: payoutService}
}

// POST /payouts
func (h *PayoutHandler) CreatePayout(c *gin.Context) {
	var req services.CreatePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	payout, err := h.payoutService.CreatePayout(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Payout created", payout)
}

// GET /payouts/:id
func (h *PayoutHandler) GetPayout(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid payout ID", nil)
		return
	}

	payout, err := h.payoutService.GetPayout(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Payout retrieved", payout)
}

// PATCH /payouts/:id/status
func (h *PayoutHandler) UpdatePayoutStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid payout ID", nil)
		return
	}

	var req services.UpdatePayoutStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	payout, err := h.payoutService.UpdatePayoutStatus(id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Payout status updated", payout)
}

// POST /payouts/:id/process
func (h *PayoutHandler) ProcessPayout(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid payout ID", nil)
		return
	}

	payout, err := h.payoutService.ProcessPayout(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Payout processing started", payout)
}

// GET /sellers/:id/payouts
func (h *PayoutHandler) ListSellerPayouts(c *gin.Context) {
	sellerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid seller ID", nil)
		return
	}

	params := services.PayoutListParams{
		CursorParams: utils.GetCursorParams(c, "created_at"),
	}

	if status := c.Query("status"); status != "" {
		s := models.PayoutStatus(status)
		params.Status = &s
	}

	payouts, info, err := h.payoutService.ListSellerPayouts(sellerID, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, "Payouts retrieved", payouts, info)
}
