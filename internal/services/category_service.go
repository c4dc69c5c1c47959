// internal/services/category_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendora/marketplace-backend/internal/models"
	"github.com/vendora/marketplace-backend/internal/utils"
)

type CategoryService struct {
	db *gorm.DB
}

type CreateCategoryRequest struct {
	Name        string     `json:"name" validate:"required,min=2,max=255"`
	Slug        string     `json:"slug" validate:"required,slug"`
	Description string     `json:"description,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	Order       int        `json:"order,omitempty"`
	IsActive    *bool      `json:"is_active,omitempty"`
}

type UpdateCategoryRequest struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Slug        *string    `json:"slug,omitempty" validate:"omitempty,slug"`
	Description *string    `json:"description,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	Order       *int       `json:"order,omitempty"`
	IsActive    *bool      `json:"is_active,omitempty"`
}

type CategoryListParams struct {
	utils.CursorParams
	ParentID *uuid.UUID
	IsActive *bool
}

var categorySortColumns = map[string]string{
	"order":      "display_order",
	"created_at": "created_at",
	"updated_at": "updated_at",
	"name":       "name",
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

func (s *CategoryService) CreateCategory(req *CreateCategoryRequest) (*models.ServiceCategory, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.checkSlugAvailable(req.Slug, nil); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		if _, err := s.GetCategory(*req.ParentID); err != nil {
			return nil, err
		}
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	category := &models.ServiceCategory{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		ParentID:     req.ParentID,
		DisplayOrder: req.Order,
		IsActive:     isActive,
	}

	if err := s.db.Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: category slug %q", ErrConflict, req.Slug)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

func (s *CategoryService) GetCategory(id uuid.UUID) (*models.ServiceCategory, error) {
	var category models.ServiceCategory
	if err := s.db.Preload("Parent").Preload("Children").First(&category, "service_categories.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &category, nil
}

func (s *CategoryService) GetCategoryBySlug(slug string) (*models.ServiceCategory, error) {
	var category models.ServiceCategory
	if err := s.db.Preload("Parent").Preload("Children").Where("slug = ?", slug).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category slug %q", ErrNotFound, slug)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &category, nil
}

func (s *CategoryService) UpdateCategory(id uuid.UUID, req *UpdateCategoryRequest) (*models.ServiceCategory, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var category models.ServiceCategory
	if err := s.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.Slug != nil && *req.Slug != category.Slug {
		if err := s.checkSlugAvailable(*req.Slug, &id); err != nil {
			return nil, err
		}
	}

	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, fmt.Errorf("%w: category cannot be its own parent", ErrValidation)
		}
		if _, err := s.GetCategory(*req.ParentID); err != nil {
			return nil, err
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
	if req.ParentID != nil {
		updates["parent_id"] = *req.ParentID
	}
	if req.Order != nil {
		updates["display_order"] = *req.Order
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(&category).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, fmt.Errorf("%w: category slug %q", ErrConflict, *req.Slug)
			}
			return nil, fmt.Errorf("failed to update category: %w", err)
		}
	}

	s.db.Preload("Parent").Preload("Children").First(&category, category.ID)

	return &category, nil
}

func (s *CategoryService) DeleteCategory(id uuid.UUID) error {
	var category models.ServiceCategory
	if err := s.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: category %s", ErrNotFound, id)
		}
		return fmt.Errorf("database error: %w", err)
	}

	var childCount int64
	if err := s.db.Model(&models.ServiceCategory{}).Where("parent_id = ?", id).Count(&childCount).Error; err != nil {
		return fmt.Errorf("failed to check children: %w", err)
	}
	if childCount > 0 {
		return fmt.Errorf("%w: category has child categories", ErrConflict)
	}

	if err := s.db.Delete(&category).Error; err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return nil
}

func (s *CategoryService) ListCategories(params CategoryListParams) ([]models.ServiceCategory, utils.PageInfo, error) {
	column, err := utils.ResolveSortColumn("service_categories", params.SortBy, categorySortColumns)
	if err != nil {
		return nil, utils.PageInfo{}, fmt.Errorf("%w: unsupported sort field %q", ErrValidation, params.SortBy)
	}

	query := s.db.Model(&models.ServiceCategory{})

	if params.ParentID != nil {
		query = query.Where("parent_id = ?", *params.ParentID)
	}

	if params.IsActive != nil {
		query = query.Where("is_active = ?", *params.IsActive)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	query = utils.ApplyCursor(query, "service_categories", column, params.CursorParams)

	var categories []models.ServiceCategory
	if err := query.Limit(params.Limit + 1).Find(&categories).Error; err != nil {
		return nil, utils.PageInfo{}, fmt.Errorf("failed to fetch categories: %w", err)
	}

	n, info := utils.SlicePage(len(categories), params.CursorParams)
	categories = categories[:n]

	if info.HasNextPage && n > 0 {
		info.NextCursor = utils.EncodeCursor(categorySortValue(&categories[n-1], params.SortBy))
	}

	return categories, info, nil
}

// GetCategoryTree returns active root categories with children nested one
// level deep, ordered for display.
func (s *CategoryService) GetCategoryTree() ([]models.ServiceCategory, error) {
	var roots []models.ServiceCategory
	err := s.db.Where("parent_id IS NULL AND is_active = ?", true).
		Order("display_order ASC, created_at DESC").
		Preload("Children", "is_active = ?", true).
		Find(&roots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category tree: %w", err)
	}

	return roots, nil
}

func (s *CategoryService) checkSlugAvailable(slug string, excludeID *uuid.UUID) error {
	query := s.db.Model(&models.ServiceCategory{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check slug: %w", err)
	}

	if count > 0 {
		return fmt.Errorf("%w: category slug %q", ErrConflict, slug)
	}

	return nil
}

func categorySortValue(category *models.ServiceCategory, sortBy string) interface{} {
	switch sortBy {
	case "created_at":
		return category.CreatedAt
	case "updated_at":
		return category.UpdatedAt
	case "name":
		return category.Name
	default:
		return category.DisplayOrder
	}
}
