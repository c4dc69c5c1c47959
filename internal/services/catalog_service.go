// internal/services/catalog_service.go
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

// CatalogService owns the Service entity: CRUD with slug uniqueness, soft
// delete, and cursor-paginated listing.
type CatalogService struct {
	db *gorm.DB
}

type CreateServiceRequest struct {
	Name        string                 `json:"name" validate:"required,min=3,max=255"`
	Slug        string                 `json:"slug" validate:"required,slug"`
	Description string                 `json:"description,omitempty"`
	CategoryID  *uuid.UUID             `json:"category_id,omitempty"`
	Status      models.ServiceStatus   `json:"status,omitempty" validate:"omitempty,oneof=draft active inactive"`
	Order       int                    `json:"order,omitempty"`
	IsFeatured  bool                   `json:"is_featured,omitempty"`
	Price       float64                `json:"price,omitempty" validate:"omitempty,min=0"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type UpdateServiceRequest struct {
	Name        *string                `json:"name,omitempty" validate:"omitempty,min=3,max=255"`
	Slug        *string                `json:"slug,omitempty" validate:"omitempty,slug"`
	Description *string                `json:"description,omitempty"`
	CategoryID  *uuid.UUID             `json:"category_id,omitempty"`
	Status      *models.ServiceStatus  `json:"status,omitempty" validate:"omitempty,oneof=draft active inactive"`
	Order       *int                   `json:"order,omitempty"`
	IsFeatured  *bool                  `json:"is_featured,omitempty"`
	Price       *float64               `json:"price,omitempty" validate:"omitempty,min=0"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type ServiceListParams struct {
	utils.CursorParams
	Status       *models.ServiceStatus
	CategoryID   *uuid.UUID
	CategorySlug string
	IsFeatured   *bool
}

// API sort keys to database columns. Everything else is rejected before it
// reaches the query builder.
var serviceSortColumns = map[string]string{
	"order":      "display_order",
	"created_at": "created_at",
	"updated_at": "updated_at",
	"name":       "name",
	"price":      "price",
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) CreateService(req *CreateServiceRequest) (*models.Service, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	// Optimistic pre-check for fast feedback; the unique index is the real
	// guarantee under concurrent submissions.
	if err := s.checkSlugAvailable(req.Slug, nil); err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		if err := s.checkCategoryExists(*req.CategoryID); err != nil {
			return nil, err
		}
	}

	status := req.Status
	if status == "" {
		status = models.ServiceStatusDraft
	}

	service := &models.Service{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		Status:       status,
		DisplayOrder: req.Order,
		IsFeatured:   req.IsFeatured,
		Price:        req.Price,
		Metadata:     models.JSONB(req.Metadata),
	}

	if err := s.db.Create(service).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: service slug %q", ErrConflict, req.Slug)
		}
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	s.db.Preload("Category").First(service, service.ID)

	return service, nil
}

func (s *CatalogService) GetService(id uuid.UUID) (*models.Service, error) {
	var service models.Service
	if err := s.db.Preload("Category").First(&service, "services.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: service %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &service, nil
}

func (s *CatalogService) GetServiceBySlug(slug string) (*models.Service, error) {
	var service models.Service
	if err := s.db.Preload("Category").Where("slug = ?", slug).First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: service slug %q", ErrNotFound, slug)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &service, nil
}

func (s *CatalogService) UpdateService(id uuid.UUID, req *UpdateServiceRequest) (*models.Service, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var service models.Service
	if err := s.db.First(&service, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: service %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Re-check uniqueness only when the slug actually changes, excluding the
	// row being updated so it never conflicts with itself.
	if req.Slug != nil && *req.Slug != service.Slug {
		if err := s.checkSlugAvailable(*req.Slug, &id); err != nil {
			return nil, err
		}
	}

	if req.CategoryID != nil {
		if err := s.checkCategoryExists(*req.CategoryID); err != nil {
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
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Order != nil {
		updates["display_order"] = *req.Order
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Metadata != nil {
		updates["metadata"] = models.JSONB(req.Metadata)
	}

	if len(updates) > 0 {
		if err := s.db.Model(&service).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, fmt.Errorf("%w: service slug %q", ErrConflict, *req.Slug)
			}
			return nil, fmt.Errorf("failed to update service: %w", err)
		}
	}

	s.db.Preload("Category").First(&service, service.ID)

	return &service, nil
}

// DeleteService soft-deletes: the row persists but is excluded from all
// normal reads.
func (s *CatalogService) DeleteService(id uuid.UUID) error {
	var service models.Service
	if err := s.db.First(&service, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: service %s", ErrNotFound, id)
		}
		return fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Delete(&service).Error; err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}

	return nil
}

func (s *CatalogService) ListServices(params ServiceListParams) ([]models.Service, utils.PageInfo, error) {
	column, err := utils.ResolveSortColumn("services", params.SortBy, serviceSortColumns)
	if err != nil {
		return nil, utils.PageInfo{}, fmt.Errorf("%w: unsupported sort field %q", ErrValidation, params.SortBy)
	}

	query := s.db.Model(&models.Service{}).Preload("Category")

	// Every filter is an independent AND predicate.
	if params.Status != nil {
		query = query.Where("services.status = ?", *params.Status)
	}

	if params.CategoryID != nil {
		query = query.Where("services.category_id = ?", *params.CategoryID)
	}

	if params.CategorySlug != "" {
		query = query.Joins("JOIN service_categories ON service_categories.id = services.category_id").
			Where("service_categories.slug = ? AND service_categories.deleted_at IS NULL", params.CategorySlug)
	}

	if params.IsFeatured != nil {
		query = query.Where("services.is_featured = ?", *params.IsFeatured)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(services.name) LIKE ? OR LOWER(services.description) LIKE ?", searchTerm, searchTerm)
	}

	query = utils.ApplyCursor(query, "services", column, params.CursorParams)

	// limit+1 probes for a next page without a second count query.
	var services []models.Service
	if err := query.Limit(params.Limit + 1).Find(&services).Error; err != nil {
		return nil, utils.PageInfo{}, fmt.Errorf("failed to fetch services: %w", err)
	}

	n, info := utils.SlicePage(len(services), params.CursorParams)
	services = services[:n]

	if info.HasNextPage && n > 0 {
		info.NextCursor = utils.EncodeCursor(serviceSortValue(&services[n-1], params.SortBy))
	}

	return services, info, nil
}

func (s *CatalogService) checkSlugAvailable(slug string, excludeID *uuid.UUID) error {
	query := s.db.Model(&models.Service{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check slug: %w", err)
	}

	if count > 0 {
		return fmt.Errorf("%w: service slug %q", ErrConflict, slug)
	}

	return nil
}

func (s *CatalogService) checkCategoryExists(id uuid.UUID) error {
	var count int64
	if err := s.db.Model(&models.ServiceCategory{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}

	if count == 0 {
		return fmt.Errorf("%w: category %s", ErrNotFound, id)
	}

	return nil
}

func serviceSortValue(service *models.Service, sortBy string) interface{} {
	switch sortBy {
	case "created_at":
		return service.CreatedAt
	case "updated_at":
		return service.UpdatedAt
	case "name":
		return service.Name
	case "price":
		return service.Price
	default:
		return service.DisplayOrder
	}
}
