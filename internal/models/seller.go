// internal/models/seller.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Seller struct {
	BaseModel
	UserID          uuid.UUID    `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	DisplayName     string       `json:"display_name" gorm:"size:255;not null"`
	Status          SellerStatus `json:"status" gorm:"type:varchar(20);default:'pending_review';index"`
	CommissionRate  float64      `json:"commission_rate" gorm:"type:decimal(5,2);not null"`
	PayoutAccountID string       `json:"payout_account_id,omitempty" gorm:"size:255"`

	// Read-only projections maintained by the payout completion path and
	// external aggregation jobs.
	TotalSales    int64   `json:"total_sales" gorm:"default:0"`
	TotalRevenue  float64 `json:"total_revenue" gorm:"type:decimal(12,2);default:0"`
	AverageRating float64 `json:"average_rating" gorm:"type:decimal(3,2);default:0"`

	// Relationships
	User    User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Payouts []Payout `json:"payouts,omitempty" gorm:"foreignKey:SellerID"`
}

type Payout struct {
	BaseModel
	SellerID      uuid.UUID    `json:"seller_id" gorm:"type:uuid;not null;index"`
	PeriodStart   time.Time    `json:"period_start" gorm:"not null"`
	PeriodEnd     time.Time    `json:"period_end" gorm:"not null"`
	Amount        float64      `json:"amount" gorm:"type:decimal(12,2);not null"`
	PlatformFee   float64      `json:"platform_fee" gorm:"type:decimal(12,2);not null"`
	NetAmount     float64      `json:"net_amount" gorm:"type:decimal(12,2);not null"`
	ItemCount     int          `json:"item_count" gorm:"default:0"`
	Status        PayoutStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	FailureReason string       `json:"failure_reason,omitempty" gorm:"type:text"`
	TransferRef   string       `json:"transfer_ref,omitempty" gorm:"size:255"`
	ProcessedAt   *time.Time   `json:"processed_at"`

	// Relationships
	Seller Seller `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
}
