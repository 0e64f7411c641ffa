package repository

import (
	"time"

	"github.com/jabenlo/pstep-bank-store/internal/model"
	"github.com/jabenlo/pstep-bank-store/internal/money"
)

type PurchaseEntity struct {
	ID         int64          `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	StudentID  int64          `db:"student_id"  gorm:"column:student_id;not null;index"`
	Student    *StudentEntity `db:"-"           gorm:"foreignKey:StudentID;references:ID;constraint:OnDelete:CASCADE"`
	ItemID     int64          `db:"item_id"     gorm:"column:item_id;not null;index"`
	Quantity   int            `db:"quantity"    gorm:"column:quantity;not null;default:1"`
	TotalCents int64          `db:"total_cents" gorm:"column:total_cents;not null"`
	CreatedAt  time.Time      `db:"created_at"  gorm:"column:created_at;index"`
}

func (PurchaseEntity) TableName() string { return "purchases" }

func toPurchaseEntity(m *model.Purchase) *PurchaseEntity {
	if m == nil {
		return nil
	}
	return &PurchaseEntity{
		ID:         m.ID,
		StudentID:  m.StudentID,
		ItemID:     m.ItemID,
		Quantity:   m.Quantity,
		TotalCents: money.ToCents(m.TotalAmount),
		CreatedAt:  m.CreatedAt,
	}
}

func toPurchaseModel(e *PurchaseEntity) *model.Purchase {
	if e == nil {
		return nil
	}
	return &model.Purchase{
		ID:          e.ID,
		StudentID:   e.StudentID,
		ItemID:      e.ItemID,
		Quantity:    e.Quantity,
		TotalAmount: money.FromCents(e.TotalCents),
		CreatedAt:   e.CreatedAt,
	}
}
