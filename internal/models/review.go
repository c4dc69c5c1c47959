// internal/models/review.go
package models

import (
	"github.com/google/uuid"
)

type Review struct {
	BaseModel
	ServiceID  uuid.UUID    `json:"service_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_reviews_service_reviewer"`
	ReviewerID uuid.UUID    `json:"reviewer_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_reviews_service_reviewer"`
	Rating     int          `json:"rating" gorm:"not null"`
	Comment    string       `json:"comment" gorm:"type:text"`
	Status     ReviewStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`

	// Relationships
	Service  Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	Reviewer User    `json:"reviewer,omitempty" gorm:"foreignKey:ReviewerID"`
}
