// internal/handlers/category.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vendora/marketplace-backend/internal/services"
	"github.com/vendora/marketplace-backend/internal/utils"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
}

func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// GET /services/categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	params := services.CategoryListParams{
		CursorParams: utils.GetCursorParams(c, "order"),
	}

	if parentIDStr := c.Query("parentId"); parentIDStr != "" {
		parentID, err := uuid.Parse(parentIDStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid parent ID", nil)
			return
		}
		params.ParentID = &parentID
	}

	if activeStr := c.Query("isActive"); activeStr != "" {
		active, err := strconv.ParseBool(activeStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid isActive value", nil)
			return
		}
		params.IsActive = &active
	}

	categories, info, err := h.categoryService.ListCategories(params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, "Categories retrieved", categories, info)
}

// GET /services/categories/tree
func (h *CategoryHandler) GetCategoryTree(c *gin.Context) {
	tree, err := h.categoryService.GetCategoryTree()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Category tree retrieved", tree)
}

// GET /services/categories/:id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid category ID", nil)
		return
	}

	category, err := h.categoryService.GetCategory(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Category retrieved", category)
}

// GET /services/categories/slug/:slug
func (h *CategoryHandler) GetCategoryBySlug(c *gin.Context) {
	category, err := h.categoryService.GetCategoryBySlug(c.Param("slug"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Category retrieved", category)
}

// POST /services/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req services.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	category, err := h.categoryService.CreateCategory(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Category created", category)
}

// PATCH /services/categories/:id
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid category ID", nil)
		return
	}

	var req services.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	category, err := h.categoryService.UpdateCategory(id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Category updated", category)
}

// DELETE /services/categories/:id
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid category ID", nil)
		return
	}

	if err := h.categoryService.DeleteCategory(id); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Category deleted", nil)
}
