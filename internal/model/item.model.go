package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a purchasable catalog entry scoped to one teacher. ImagePath is
// the public path under /uploads, empty when the item has no image.
type Item struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImagePath   string          `json:"image_path"`
	TeacherID   int64           `json:"teacher_id"`
	CreatedAt   time.Time       `json:"created_at"`
}
