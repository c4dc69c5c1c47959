// internal/services/payout_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/transfer"
	"gorm.io/gorm"

	"github.com/vendora/marketplace-backend/internal/config"
	"github.com/vendora/marketplace-backend/internal/models"
	"github.com/vendora/marketplace-backend/internal/utils"
)

// PayoutService derives net payouts from gross sales and the seller's
// commission rate, and drives the payout lifecycle
// pending -> processing -> (completed | failed).
type PayoutService struct {
	db     *gorm.DB
	config *config.Config
}

type CreatePayoutRequest struct {
	SellerID    uuid.UUID `json:"seller_id" validate:"required"`
	PeriodStart time.Time `json:"period_start" validate:"required"`
	PeriodEnd   time.Time `json:"period_end" validate:"required,gtfield=PeriodStart"`
	Amount      float64   `json:"amount" validate:"required,gt=0"`
	ItemCount   int       `json:"item_count" validate:"min=0"`
}

type UpdatePayoutStatusRequest struct {
	Status        models.PayoutStatus `json:"status" validate:"required,oneof=processing completed failed"`
	FailureReason string              `json:"failure_reason,omitempty"`
}

type PayoutListParams struct {
	utils.CursorParams
	Status *models.PayoutStatus
}

var payoutSortColumns = map[string]string{
	"created_at":   "created_at",
	"period_start": "period_start",
	"period_end":   "period_end",
	"amount":       "amount",
	"net_amount":   "net_amount",
}

// Allowed lifecycle transitions. Failed is terminal; a replacement payout is
// created for the same period instead of retrying.
var payoutTransitions = map[models.PayoutStatus][]models.PayoutStatus{
	models.PayoutStatusPending:    {models.PayoutStatusProcessing},
	models.PayoutStatusProcessing: {models.PayoutStatusCompleted, models.PayoutStatusFailed},
}

func NewPayoutService(db *gorm.DB, cfg *config.Config) *PayoutService {
	if cfg.Payment.StripeSecretKey != "" {
		stripe.Key = cfg.Payment.StripeSecretKey
	}

	return &PayoutService{db: db, config: cfg}
}

// ComputeCommission splits a gross amount into platform fee and seller net.
// The fee is rounded to currency precision first so amount == fee + net holds
// exactly.
func ComputeCommission(amount, commissionRate float64) (platformFee, netAmount float64) {
	platformFee = utils.RoundCurrency(amount * (commissionRate / 100))
	netAmount = utils.RoundCurrency(amount - platformFee)
	return platformFee, netAmount
}

func (s *PayoutService) CreatePayout(req *CreatePayoutRequest) (*models.Payout, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var seller models.Seller
	if err := s.db.First(&seller, "id = ?", req.SellerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: seller %s", ErrNotFound, req.SellerID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if seller.Status != models.SellerStatusApproved {
		return nil, fmt.Errorf("%w: seller is not approved for payouts", ErrForbidden)
	}

	amount := utils.RoundCurrency(req.Amount)
	if amount < s.config.Payment.MinimumPayout {
		return nil, fmt.Errorf("%w: amount is below the minimum payout of %.2f", ErrValidation, s.config.Payment.MinimumPayout)
	}

	platformFee, netAmount := ComputeCommission(amount, seller.CommissionRate)

	payout := &models.Payout{
		SellerID:    req.SellerID,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		Amount:      amount,
		PlatformFee: platformFee,
		NetAmount:   netAmount,
		ItemCount:   req.ItemCount,
		Status:      models.PayoutStatusPending,
	}

	if err := s.db.Create(payout).Error; err != nil {
		return nil, fmt.Errorf("failed to create payout: %w", err)
	}

	return payout, nil
}

func (s *PayoutService) GetPayout(id uuid.UUID) (*models.Payout, error) {
	var payout models.Payout
	if err := s.db.Preload("Seller").First(&payout, "payouts.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: payout %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &payout, nil
}

// UpdatePayoutStatus moves a payout along its lifecycle. A payout is
// immutable except for these status fields.
func (s *PayoutService) UpdatePayoutStatus(id uuid.UUID, req *UpdatePayoutStatusRequest) (*models.Payout, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if req.Status == models.PayoutStatusFailed && req.FailureReason == "" {
		return nil, fmt.Errorf("%w: a failed payout requires a failure_reason", ErrValidation)
	}

	payout, err := s.GetPayout(id)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(payout.Status, req.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, payout.Status, req.Status)
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.Status == models.PayoutStatusFailed {
		updates["failure_reason"] = req.FailureReason
	}
	if req.Status == models.PayoutStatusCompleted {
		updates["processed_at"] = time.Now()
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(payout).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update payout: %w", err)
		}

		if req.Status == models.PayoutStatusCompleted {
			return bumpSellerProjections(tx, payout)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return payout, nil
}

// ProcessPayout moves a pending payout to processing and executes the
// transfer in the background, mirroring how sale settlement runs after the
// request returns.
func (s *PayoutService) ProcessPayout(id uuid.UUID) (*models.Payout, error) {
	payout, err := s.UpdatePayoutStatus(id, &UpdatePayoutStatusRequest{Status: models.PayoutStatusProcessing})
	if err != nil {
		return nil, err
	}

	go s.executeTransfer(payout)

	return payout, nil
}

func (s *PayoutService) ListSellerPayouts(sellerID uuid.UUID, params PayoutListParams) ([]models.Payout, utils.PageInfo, error) {
	column, err := utils.ResolveSortColumn("payouts", params.SortBy, payoutSortColumns)
	if err != nil {
		return nil, utils.PageInfo{}, fmt.Errorf("%w: unsupported sort field %q", ErrValidation, params.SortBy)
	}

	query := s.db.Model(&models.Payout{}).Where("seller_id = ?", sellerID)

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	query = utils.ApplyCursor(query, "payouts", column, params.CursorParams)

	var payouts []models.Payout
	if err := query.Limit(params.Limit + 1).Find(&payouts).Error; err != nil {
		return nil, utils.PageInfo{}, fmt.Errorf("failed to fetch payouts: %w", err)
	}

	n, info := utils.SlicePage(len(payouts), params.CursorParams)
	payouts = payouts[:n]

	if info.HasNextPage && n > 0 {
		info.NextCursor = utils.EncodeCursor(payoutSortValue(&payouts[n-1], params.SortBy))
	}

	return payouts, info, nil
}

func (s *PayoutService) executeTransfer(payout *models.Payout) {
	var seller models.Seller
	if err := s.db.First(&seller, "id = ?", payout.SellerID).Error; err != nil {
		s.finishTransfer(payout, "", fmt.Sprintf("seller lookup failed: %v", err))
		return
	}

	if s.config.Payment.StripeSecretKey == "" {
		// No provider configured; settle locally so development flows finish.
		s.finishTransfer(payout, "", "")
		return
	}

	if seller.PayoutAccountID == "" {
		s.finishTransfer(payout, "", "seller has no payout account connected")
		return
	}

	params := &stripe.TransferParams{
		Amount:      stripe.Int64(int64(payout.NetAmount * 100)),
		Currency:    stripe.String(string(stripe.CurrencyUSD)),
		Destination: stripe.String(seller.PayoutAccountID),
	}
	params.AddMetadata("payout_id", payout.ID.String())

	tr, err := transfer.New(params)
	if err != nil {
		s.finishTransfer(payout, "", fmt.Sprintf("transfer failed: %v", err))
		return
	}

	s.finishTransfer(payout, tr.ID, "")
}

func (s *PayoutService) finishTransfer(payout *models.Payout, transferRef, failureReason string) {
	status := models.PayoutStatusCompleted
	req := &UpdatePayoutStatusRequest{Status: status}
	if failureReason != "" {
		req.Status = models.PayoutStatusFailed
		req.FailureReason = failureReason
	}

	if transferRef != "" {
		s.db.Model(payout).Update("transfer_ref", transferRef)
	}

	if _, err := s.UpdatePayoutStatus(payout.ID, req); err != nil {
		logrus.WithError(err).WithField("payout_id", payout.ID).Error("Failed to finalize payout transfer")
	}
}

// bumpSellerProjections is the one writer this system owns for the seller's
// aggregate counters; everything else treats them as read-only.
func bumpSellerProjections(tx *gorm.DB, payout *models.Payout) error {
	err := tx.Model(&models.Seller{}).Where("id = ?", payout.SellerID).
		Updates(map[string]interface{}{
			"total_sales":   gorm.Expr("total_sales + ?", payout.ItemCount),
			"total_revenue": gorm.Expr("total_revenue + ?", payout.Amount),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update seller projections: %w", err)
	}
	return nil
}

func transitionAllowed(from, to models.PayoutStatus) bool {
	for _, next := range payoutTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func payoutSortValue(payout *models.Payout, sortBy string) interface{} {
	switch sortBy {
	case "period_start":
		return payout.PeriodStart
	case "period_end":
		return payout.PeriodEnd
	case "amount":
		return payout.Amount
	case "net_amount":
		return payout.NetAmount
	default:
		return payout.CreatedAt
	}
}
