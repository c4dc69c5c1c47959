// internal/services/seller_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendora/marketplace-backend/internal/config"
	"github.com/vendora/marketplace-backend/internal/models"
	"github.com/vendora/marketplace-backend/internal/utils"
)

type SellerService struct {
	db     *gorm.DB
	config *config.Config
}

type RegisterSellerRequest struct {
	DisplayName     string   `json:"display_name" validate:"required,min=2,max=255"`
	PayoutAccountID string   `json:"payout_account_id,omitempty"`
	CommissionRate  *float64 `json:"commission_rate,omitempty" validate:"omitempty,min=0,max=100"`
}

type UpdateSellerStatusRequest struct {
	Status models.SellerStatus `json:"status" validate:"required,oneof=pending_review approved suspended rejected"`
}

type SellerListParams struct {
	utils.CursorParams
	Status *models.SellerStatus
}

var sellerSortColumns = map[string]string{
	"created_at":      "created_at",
	"updated_at":      "updated_at",
	"display_name":    "display_name",
	"total_sales":     "total_sales",
	"total_revenue":   "total_revenue",
	"average_rating":  "average_rating",
	"commission_rate": "commission_rate",
}

func NewSellerService(db *gorm.DB, cfg *config.Config) *SellerService {
	return &SellerService{db: db, config: cfg}
}

// RegisterSeller opens a seller account for a user. One account per user; the
// unique index on user_id is the backstop for concurrent submissions.
func (s *SellerService) RegisterSeller(userID uuid.UUID, req *RegisterSellerRequest) (*models.Seller, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.Status != models.UserStatusActive {
		return nil, fmt.Errorf("%w: user account is not active", ErrForbidden)
	}

	var count int64
	if err := s.db.Model(&models.Seller{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check seller: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: seller account for user %s", ErrConflict, userID)
	}

	commissionRate := s.config.Payment.DefaultCommissionRate
	if req.CommissionRate != nil {
		commissionRate = *req.CommissionRate
	}

	seller := &models.Seller{
		UserID:          userID,
		DisplayName:     req.DisplayName,
		Status:          models.SellerStatusPendingReview,
		CommissionRate:  commissionRate,
		PayoutAccountID: req.PayoutAccountID,
	}

	if err := s.db.Create(seller).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: seller account for user %s", ErrConflict, userID)
		}
		return nil, fmt.Errorf("failed to create seller: %w", err)
	}

	return seller, nil
}

func (s *SellerService) GetSeller(id uuid.UUID) (*models.Seller, error) {
	var seller models.Seller
	if err := s.db.Preload("User").First(&seller, "sellers.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: seller %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &seller, nil
}

func (s *SellerService) GetSellerByUserID(userID uuid.UUID) (*models.Seller, error) {
	var seller models.Seller
	if err := s.db.Where("user_id = ?", userID).First(&seller).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: seller for user %s", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &seller, nil
}

func (s *SellerService) UpdateSellerStatus(id uuid.UUID, req *UpdateSellerStatusRequest) (*models.Seller, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	seller, err := s.GetSeller(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(seller).Update("status", req.Status).Error; err != nil {
		return nil, fmt.Errorf("failed to update seller status: %w", err)
	}

	return seller, nil
}

func (s *SellerService) ListSellers(params SellerListParams) ([]models.Seller, utils.PageInfo, error) {
	column, err := utils.ResolveSortColumn("sellers", params.SortBy, sellerSortColumns)
	if err != nil {
		return nil, utils.PageInfo{}, fmt.Errorf("%w: unsupported sort field %q", ErrValidation, params.SortBy)
	}

	query := s.db.Model(&models.Seller{}).Preload("User")

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(display_name) LIKE ?", searchTerm)
	}

	query = utils.ApplyCursor(query, "sellers", column, params.CursorParams)

	var sellers []models.Seller
	if err := query.Limit(params.Limit + 1).Find(&sellers).Error; err != nil {
		return nil, utils.PageInfo{}, fmt.Errorf("failed to fetch sellers: %w", err)
	}

	n, info := utils.SlicePage(len(sellers), params.CursorParams)
	sellers = sellers[:n]

	if info.HasNextPage && n > 0 {
		info.NextCursor = utils.EncodeCursor(sellerSortValue(&sellers[n-1], params.SortBy))
	}

	return sellers, info, nil
}

func sellerSortValue(seller *models.Seller, sortBy string) interface{} {
	switch sortBy {
	case "display_name":
		return seller.DisplayName
	case "updated_at":
		return seller.UpdatedAt
	case "total_sales":
		return seller.TotalSales
	case "total_revenue":
		return seller.TotalRevenue
	case "average_rating":
		return seller.AverageRating
	case "commission_rate":
		return seller.CommissionRate
	default:
		return seller.CreatedAt
	}
}
