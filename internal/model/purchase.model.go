package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is an immutable ledger row for one checkout line. TotalAmount is
// the price snapshot at checkout time and never tracks later price edits.
type Purchase struct {
	ID          int64           `json:"id"`
	StudentID   int64           `json:"student_id"`
	ItemID      int64           `json:"item_id"`
	Quantity    int             `json:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PurchaseWithItem pairs a purchase with its catalog item for history views
// and statements.
type PurchaseWithItem struct {
	Purchase
	Item Item `json:"item"`
}
