// internal/services/subscription_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendora/marketplace-backend/internal/models"
	"github.com/vendora/marketplace-backend/internal/utils"
)

// SubscriptionService manages plans, subscriptions, and the append-only
// credit ledger. A user's balance is always SUM(delta) over their entries.
type SubscriptionService struct {
	db *gorm.DB
}

type CreatePlanRequest struct {
	Name            string  `json:"name" validate:"required,min=2,max=255"`
	Slug            string  `json:"slug" validate:"required,slug"`
	Description     string  `json:"description,omitempty"`
	Price           float64 `json:"price" validate:"min=0"`
	CreditsPerCycle int64   `json:"credits_per_cycle" validate:"required,gt=0"`
	CycleDays       int     `json:"cycle_days,omitempty" validate:"omitempty,gt=0"`
}

type UpdatePlanRequest struct {
	Name            *string  `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Slug            *string  `json:"slug,omitempty" validate:"omitempty,slug"`
	Description     *string  `json:"description,omitempty"`
	Price           *float64 `json:"price,omitempty" validate:"omitempty,min=0"`
	CreditsPerCycle *int64   `json:"credits_per_cycle,omitempty" validate:"omitempty,gt=0"`
	CycleDays       *int     `json:"cycle_days,omitempty" validate:"omitempty,gt=0"`
	IsActive        *bool    `json:"is_active,omitempty"`
}

type SpendCreditsRequest struct {
	Amount int64  `json:"amount" validate:"required,gt=0"`
	Reason string `json:"reason" validate:"required,max=255"`
}

type LedgerListParams struct {
	utils.CursorParams
	EntryType *models.CreditEntryType
}

var ledgerSortColumns = map[string]string{
	"created_at": "created_at",
	"delta":      "delta",
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

func (s *SubscriptionService) ListPlans(activeOnly bool) ([]models.SubscriptionPlan, error) {
	query := s.db.Model(&models.SubscriptionPlan{}).Order("price ASC, created_at DESC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var plans []models.SubscriptionPlan
	if err := query.Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch plans: %w", err)
	}

	return plans, nil
}

func (s *SubscriptionService) CreatePlan(req *CreatePlanRequest) (*models.SubscriptionPlan, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var count int64
	if err := s.db.Model(&models.SubscriptionPlan{}).Where("slug = ?", req.Slug).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: plan slug %q", ErrConflict, req.Slug)
	}

	cycleDays := req.CycleDays
	if cycleDays == 0 {
		cycleDays = 30
	}

	plan := &models.SubscriptionPlan{
		Name:            req.Name,
		Slug:            req.Slug,
		Description:     req.Description,
		Price:           req.Price,
		CreditsPerCycle: req.CreditsPerCycle,
		CycleDays:       cycleDays,
		IsActive:        true,
	}

	if err := s.db.Create(plan).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: plan slug %q", ErrConflict, req.Slug)
		}
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	return plan, nil
}

func (s *SubscriptionService) UpdatePlan(id uuid.UUID, req *UpdatePlanRequest) (*models.SubscriptionPlan, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var plan models.SubscriptionPlan
	if err := s.db.First(&plan, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: plan %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.Slug != nil && *req.Slug != plan.Slug {
		var count int64
		if err := s.db.Model(&models.SubscriptionPlan{}).
			Where("slug = ? AND id != ?", *req.Slug, id).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to check slug: %w", err)
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: plan slug %q", ErrConflict, *req.Slug)
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
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.CreditsPerCycle != nil {
		updates["credits_per_cycle"] = *req.CreditsPerCycle
	}
	if req.CycleDays != nil {
		updates["cycle_days"] = *req.CycleDays
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(&plan).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, fmt.Errorf("%w: plan slug %q", ErrConflict, *req.Slug)
			}
			return nil, fmt.Errorf("failed to update plan: %w", err)
		}
	}

	return &plan, nil
}

// Subscribe opens a subscription period and grants the plan's credits in one
// transaction so a subscription never exists without its opening ledger entry.
func (s *SubscriptionService) Subscribe(userID, planID uuid.UUID) (*models.Subscription, error) {
	var plan models.SubscriptionPlan
	if err := s.db.First(&plan, "id = ?", planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: plan %s", ErrNotFound, planID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !plan.IsActive {
		return nil, fmt.Errorf("%w: plan %q is not open for subscription", ErrValidation, plan.Slug)
	}

	var active int64
	if err := s.db.Model(&models.Subscription{}).
		Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		Count(&active).Error; err != nil {
		return nil, fmt.Errorf("failed to check subscriptions: %w", err)
	}
	if active > 0 {
		return nil, fmt.Errorf("%w: user already has an active subscription", ErrConflict)
	}

	now := time.Now()
	subscription := &models.Subscription{
		UserID:             userID,
		PlanID:             planID,
		Status:             models.SubscriptionStatusActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, 0, plan.CycleDays),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(subscription).Error; err != nil {
			return fmt.Errorf("failed to create subscription: %w", err)
		}

		grant := &models.CreditTransaction{
			UserID:         userID,
			SubscriptionID: &subscription.ID,
			EntryType:      models.CreditEntryTypeGrant,
			Delta:          plan.CreditsPerCycle,
			Reason:         fmt.Sprintf("subscription grant: %s", plan.Slug),
		}
		if err := tx.Create(grant).Error; err != nil {
			return fmt.Errorf("failed to record credit grant: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Plan").First(subscription, subscription.ID)

	return subscription, nil
}

func (s *SubscriptionService) CancelCurrent(userID uuid.UUID) (*models.Subscription, error) {
	var subscription models.Subscription
	if err := s.db.Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		First(&subscription).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: active subscription for user %s", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":      models.SubscriptionStatusCanceled,
		"canceled_at": now,
	}
	if err := s.db.Model(&subscription).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel subscription: %w", err)
	}

	return &subscription, nil
}

func (s *SubscriptionService) GetBalance(userID uuid.UUID) (int64, error) {
	var balance int64
	err := s.db.Model(&models.CreditTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(delta), 0)").
		Scan(&balance).Error
	if err != nil {
		return 0, fmt.Errorf("failed to compute balance: %w", err)
	}

	return balance, nil
}

// SpendCredits debits the ledger after a balance check inside one
// transaction. The check-then-insert window under concurrent spends matches
// the store's read-committed isolation; the ledger keeps the audit trail
// either way.
func (s *SubscriptionService) SpendCredits(userID uuid.UUID, req *SpendCreditsRequest) (*models.CreditTransaction, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var entry *models.CreditTransaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var balance int64
		if err := tx.Model(&models.CreditTransaction{}).
			Where("user_id = ?", userID).
			Select("COALESCE(SUM(delta), 0)").
			Scan(&balance).Error; err != nil {
			return fmt.Errorf("failed to compute balance: %w", err)
		}

		if balance < req.Amount {
			return fmt.Errorf("%w: insufficient credits (balance %d, requested %d)", ErrValidation, balance, req.Amount)
		}

		entry = &models.CreditTransaction{
			UserID:    userID,
			EntryType: models.CreditEntryTypeSpend,
			Delta:     -req.Amount,
			Reason:    req.Reason,
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to record spend: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *SubscriptionService) ListLedger(userID uuid.UUID, params LedgerListParams) ([]models.CreditTransaction, utils.PageInfo, error) {
	column, err := utils.ResolveSortColumn("credit_transactions", params.SortBy, ledgerSortColumns)
	if err != nil {
		return nil, utils.PageInfo{}, fmt.Errorf("%w: unsupported sort field %q", ErrValidation, params.SortBy)
	}

	query := s.db.Model(&models.CreditTransaction{}).Where("user_id = ?", userID)

	if params.EntryType != nil {
		query = query.Where("entry_type = ?", *params.EntryType)
	}

	query = utils.ApplyCursor(query, "credit_transactions", column, params.CursorParams)

	var entries []models.CreditTransaction
	if err := query.Limit(params.Limit + 1).Find(&entries).Error; err != nil {
		return nil, utils.PageInfo{}, fmt.Errorf("failed to fetch ledger: %w", err)
	}

	n, info := utils.SlicePage(len(entries), params.CursorParams)
	entries = entries[:n]

	if info.HasNextPage && n > 0 {
		info.NextCursor = utils.EncodeCursor(ledgerSortValue(&entries[n-1], params.SortBy))
	}

	return entries, info, nil
}

func ledgerSortValue(entry *models.CreditTransaction, sortBy string) interface{} {
	switch sortBy {
	case "delta":
		return entry.Delta
	default:
		return entry.CreatedAt
	}
}
