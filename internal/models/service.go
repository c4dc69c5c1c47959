// internal/models/service.go
package models

import (
	"github.com/google/uuid"
)

type Service struct {
	BaseModel
	Name         string        `json:"name" gorm:"size:255;not null"`
	Slug         string        `json:"slug" gorm:"size:255;uniqueIndex;not null"`
	Description  string        `json:"description" gorm:"type:text"`
	CategoryID   *uuid.UUID    `json:"category_id" gorm:"type:uuid;index"`
	Status       ServiceStatus `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	DisplayOrder int           `json:"order" gorm:"column:display_order;default:0;index"`
	IsFeatured   bool          `json:"is_featured" gorm:"default:false;index"`
	Price        float64       `json:"price" gorm:"type:decimal(10,2);default:0"`
	Metadata     JSONB         `json:"metadata,omitempty" gorm:"type:jsonb"`

	// Read-only projections maintained by external processes.
	Rating      float64 `json:"rating" gorm:"type:decimal(3,2);default:0"`
	ReviewCount int64   `json:"review_count" gorm:"default:0"`

	// Relationships
	Category *ServiceCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Reviews  []Review         `json:"reviews,omitempty" gorm:"foreignKey:ServiceID"`
}

type ServiceCategory struct {
	BaseModel
	Name         string     `json:"name" gorm:"size:255;not null"`
	Slug         string     `json:"slug" gorm:"size:255;uniqueIndex;not null"`
	Description  string     `json:"description" gorm:"type:text"`
	ParentID     *uuid.UUID `json:"parent_id" gorm:"type:uuid;index"`
	DisplayOrder int        `json:"order" gorm:"column:display_order;default:0;index"`
	IsActive     bool       `json:"is_active" gorm:"default:true;index"`

	// Relationships
	Parent   *ServiceCategory  `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
	Children []ServiceCategory `json:"children,omitempty" gorm:"foreignKey:ParentID"`
	Services []Service         `json:"services,omitempty" gorm:"foreignKey:CategoryID"`
}
