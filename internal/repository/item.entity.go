package repository

import (
	"time"

	"github.com/jabenlo/pstep-bank-store/internal/model"
	"github.com/jabenlo/pstep-bank-store/internal/money"
)

type ItemEntity struct {
	ID          int64       `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	Name        string      `db:"name"        gorm:"column:name;not null;size:100"`
	Description string      `db:"description" gorm:"column:description"`
	PriceCents  int64       `db:"price_cents" gorm:"column:price_cents;not null"`
	ImagePath   string      `db:"image_path"  gorm:"column:image_path;size:200"`
	TeacherID   int64       `db:"teacher_id"  gorm:"column:teacher_id;not null;index"`
	Teacher     *UserEntity `db:"-"           gorm:"foreignKey:TeacherID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time   `db:"created_at"  gorm:"column:created_at"`
}

func (ItemEntity) TableName() string { return "items" }

func toItemEntity(m *model.Item) *ItemEntity {
	if m == nil {
		return nil
	}
	return &ItemEntity{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		PriceCents:  money.ToCents(m.Price),
		ImagePath:   m.ImagePath,
		TeacherID:   m.TeacherID,
		CreatedAt:   m.CreatedAt,
	}
}

func toItemModel(e *ItemEntity) *model.Item {
	if e == nil {
		return nil
	}
	return &model.Item{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Price:       money.FromCents(e.PriceCents),
		ImagePath:   e.ImagePath,
		TeacherID:   e.TeacherID,
		CreatedAt:   e.CreatedAt,
	}
}

func toItemModels(entities []*ItemEntity) []*model.Item {
	if entities == nil {
		return nil
	}
	models := make([]*model.Item, len(entities))
	for i, e := range entities {
		models[i] = toItemModel(e)
	}
	return models
}
