// internal/handlers/subscription.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vendora/marketplace-backend/internal/models"
	"github.com/vendora/marketplace-backend/internal/services"
	"github.com/vendora/marketplace-backend/internal/utils"
)

type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// GET /subscriptions/plans
func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	activeOnly := true
	if activeStr := c.Query("activeOnly"); activeStr != "" {
		if parsed, err := strconv.ParseBool(activeStr); err == nil {
			activeOnly = parsed
		}
	}

	plans, err := h.subscriptionService.ListPlans(activeOnly)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Plans retrieved", plans)
}

// POST /subscriptions/plans
func (h *SubscriptionHandler) CreatePlan(c *gin.Context) {
	var req services.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	plan, err := h.subscriptionService.CreatePlan(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Plan created", plan)
}

// PATCH /subscriptions/plans/:id
func (h *SubscriptionHandler) UpdatePlan(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid plan ID", nil)
		return
	}

	var req services.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	plan, err := h.subscriptionService.UpdatePlan(id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Plan updated", plan)
}

// POST /subscriptions
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		PlanID uuid.UUID `json:"plan_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	subscription, err := h.subscriptionService.Subscribe(userID, req.PlanID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Subscription started", subscription)
}

// DELETE /subscriptions/current
func (h *SubscriptionHandler) CancelCurrent(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	subscription, err := h.subscriptionService.CancelCurrent(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Subscription canceled", subscription)
}

// GET /subscriptions/credits
//
// Returns the current balance alongside a paginated slice of the ledger.
func (h *SubscriptionHandler) GetCredits(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	balance, err := h.subscriptionService.GetBalance(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	params := services.LedgerListParams{
		CursorParams: utils.GetCursorParams(c, "created_at"),
	}

	if entryType := c.Query("entryType"); entryType != "" {
		t := models.CreditEntryType(entryType)
		params.EntryType = &t
	}

	entries, info, err := h.subscriptionService.ListLedger(userID, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, "Credits retrieved", gin.H{
		"balance": balance,
		"entries": entries,
	}, info)
}

// POST /subscriptions/credits/spend
func (h *SubscriptionHandler) SpendCredits(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req services.SpendCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	entry, err := h.subscriptionService.SpendCredits(userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Credits spent", entry)
}

func (h *SubscriptionHandler) currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return uuid.Nil, false
	}

	return userID, true
}
