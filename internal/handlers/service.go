// internal/handlers/service.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vendora/marketplace-backend/internal/models"
	"github.com/vendora/marketplace-backend/internal/services"
	"github.com/vendora/marketplace-backend/internal/utils"
)

type ServiceHandler struct {
	catalogService *services.CatalogService
}

func NewServiceHandler(catalogService *services.CatalogService) *ServiceHandler {
	return &ServiceHandler{catalogService: catalogService}
}

// GET /services
func (h *ServiceHandler) ListServices(c *gin.Context) {
	params := services.ServiceListParams{
		CursorParams: utils.GetCursorParams(c, "order"),
	}

	if status := c.Query("status"); status != "" {
		s := models.ServiceStatus(status)
		params.Status = &s
	}

	if categoryIDStr := c.Query("categoryId"); categoryIDStr != "" {
		categoryID, err := uuid.Parse(categoryIDStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid category ID", nil)
			return
		}
		params.CategoryID = &categoryID
	}

	params.CategorySlug = c.Query("categorySlug")

	if featuredStr := c.Query("isFeatured"); featuredStr != "" {
		featured, err := strconv.ParseBool(featuredStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid isFeatured value", nil)
			return
		}
		params.IsFeatured = &featured
	}

	items, info, err := h.catalogService.ListServices(params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, "Services retrieved", items, info)
}

// GET /services/:id
func (h *ServiceHandler) GetService(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid service ID", nil)
		return
	}

	service, err := h.catalogService.GetService(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Service retrieved", service)
}

// GET /services/slug/:slug
func (h *ServiceHandler) GetServiceBySlug(c *gin.Context) {
	service, err := h.catalogService.GetServiceBySlug(c.Param("slug"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Service retrieved", service)
}

// POST /services
func (h *ServiceHandler) CreateService(c *gin.Context) {
	var req services.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	service, err := h.catalogService.CreateService(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Service created", service)
}

// PATCH /services/:id
func (h *ServiceHandler) UpdateService(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid service ID", nil)
		return
	}

	var req services.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	service, err := h.catalogService.UpdateService(id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Service updated", service)
}

// DELETE /services/:id
func (h *ServiceHandler) DeleteService(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid service ID", nil)
		return
	}

	if err := h.catalogService.DeleteService(id); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Service deleted", nil)
}
