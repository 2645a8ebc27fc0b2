package models

import (
	"time"

	"gorm.io/gorm"
)

// UnclassifiedCategory labels order lines whose product has no category
const UnclassifiedCategory = "Neclasificat"

// Product is a catalog entry: a dish or drink on the menu, or a standalone product
type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Price       Money          `gorm:"type:numeric(10,2);not null" json:"price"`
	Description string         `gorm:"type:text" json:"description"`
	ImageKey    *string        `json:"imageKey"`                    // nullable, storage key of the uploaded image
	ImageURL    *string        `gorm:"-" json:"imageUrl,omitempty"` // computed field, resolved from ImageKey
	Category    string         `gorm:"index" json:"category"`       // free text, e.g. "mancare", "bautura"
	IsNew       bool           `gorm:"not null;default:false" json:"isNew"`
	IsPromo     bool           `gorm:"not null;default:false" json:"isPromo"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// CategoryLabel returns the category used in reports
func CategoryLabel(category string) string {
	if category == "" {
		return UnclassifiedCategory
	}
	return category
}
