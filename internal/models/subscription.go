// internal/models/subscription.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionPlan struct {
	BaseModel
	Name            string  `json:"name" gorm:"size:255;not null"`
	Slug            string  `json:"slug" gorm:"size:255;uniqueIndex;not null"`
	Description     string  `json:"description" gorm:"type:text"`
	Price           float64 `json:"price" gorm:"type:decimal(10,2);not null"`
	CreditsPerCycle int64   `json:"credits_per_cycle" gorm:"not null"`
	CycleDays       int     `json:"cycle_days" gorm:"default:30"`
	IsActive        bool    `json:"is_active" gorm:"default:true;index"`
}

type Subscription struct {
	BaseModel
	UserID             uuid.UUID          `json:"user_id" gorm:"type:uuid;not null;index"`
	PlanID             uuid.UUID          `json:"plan_id" gorm:"type:uuid;not null;index"`
	Status             SubscriptionStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`
	CurrentPeriodStart time.Time          `json:"current_period_start" gorm:"not null"`
	CurrentPeriodEnd   time.Time          `json:"current_period_end" gorm:"not null"`
	CanceledAt         *time.Time         `json:"canceled_at"`

	// Relationships
	User User             `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Plan SubscriptionPlan `json:"plan,omitempty" gorm:"foreignKey:PlanID"`
}

// CreditTransaction is an append-only ledger entry. The user's balance is the
// sum of Delta over all of their entries.
type CreditTransaction struct {
	BaseModel
	UserID         uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	SubscriptionID *uuid.UUID      `json:"subscription_id" gorm:"type:uuid;index"`
	EntryType      CreditEntryType `json:"entry_type" gorm:"type:varchar(20);not null;index"`
	Delta          int64           `json:"delta" gorm:"not null"`
	Reason         string          `json:"reason" gorm:"size:255"`

	// Relationships
	User         User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Subscription *Subscription `json:"subscription,omitempty" gorm:"foreignKey:SubscriptionID"`
}
