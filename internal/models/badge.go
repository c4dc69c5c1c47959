// internal/models/badge.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Badge struct {
	BaseModel
	Name        string `json:"name" gorm:"size:255;not null"`
	Slug        string `json:"slug" gorm:"size:255;uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text"`
	Icon        string `json:"icon" gorm:"size:255"`
	Criteria    JSONB  `json:"criteria,omitempty" gorm:"type:jsonb"`
	IsActive    bool   `json:"is_active" gorm:"default:true;index"`
}

type UserBadge struct {
	BaseModel
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_user_badges_user_badge"`
	BadgeID   uuid.UUID `json:"badge_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_user_badges_user_badge"`
	AwardedAt time.Time `json:"awarded_at" gorm:"not null"`
	AwardedBy *uuid.UUID `json:"awarded_by" gorm:"type:uuid"`

	// Relationships
	User  User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Badge Badge `json:"badge,omitempty" gorm:"foreignKey:BadgeID"`
}
