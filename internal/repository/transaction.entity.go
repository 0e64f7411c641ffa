package repository

import (
	"time"

	"github.com/jabenlo/pstep-bank-store/internal/model"
	"github.com/jabenlo/pstep-bank-store/internal/money"
)

type TransactionEntity struct {
	ID          int64          `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	StudentID   int64          `db:"student_id"   gorm:"column:student_id;not null;index"`
	Student     *StudentEntity `db:"-"            gorm:"foreignKey:StudentID;references:ID;constraint:OnDelete:CASCADE"`
	Kind        string         `db:"type"         gorm:"column:type;not null;size:10"`
	AmountCents int64          `db:"amount_cents" gorm:"column:amount_cents;not null"`
	Description string         `db:"description"  gorm:"column:description;size:200"`
	CreatedAt   time.Time      `db:"created_at"   gorm:"column:created_at;index"`
}

func (TransactionEntity) TableName() string { return "transactions" }

func toTransactionEntity(m *model.Transaction) *TransactionEntity {
	if m == nil {
		return nil
	}
	return &TransactionEntity{
		ID:          m.ID,
		StudentID:   m.StudentID,
		Kind:        string(m.Kind),
		AmountCents: money.ToCents(m.Amount),
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}

func toTransactionModel(e *TransactionEntity) *model.Transaction {
	if e == nil {
		return nil
	}
	kind, _ := model.NormalizeKind(e.Kind)
	return &model.Transaction{
		ID:          e.ID,
		StudentID:   e.StudentID,
		Kind:        kind,
		Amount:      money.FromCents(e.AmountCents),
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}

func toTransactionModels(entities []*TransactionEntity) []*model.Transaction {
	if entities == nil {
		return nil
	}
	models := make([]*model.Transaction, len(entities))
	for i, e := range entities {
		models[i] = toTransactionModel(e)
	}
	return models
}
