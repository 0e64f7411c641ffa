package repository

import (
	"time"

	"github.com/jabenlo/pstep-bank-store/internal/model"
	"github.com/jabenlo/pstep-bank-store/internal/money"
)

// Balances are stored as integer cents so the database can compare and
// adjust them without decimal support; quantization happens at the mapper.
type StudentEntity struct {
	ID           int64       `db:"id"            gorm:"primaryKey;autoIncrement;column:id"`
	ExternalID   string      `db:"student_id"    gorm:"column:student_id;not null;unique;size:20"`
	Name         string      `db:"name"          gorm:"column:name;not null;size:100"`
	BalanceCents int64       `db:"balance_cents" gorm:"column:balance_cents;not null;default:0"`
	TeacherID    int64       `db:"teacher_id"    gorm:"column:teacher_id;not null;index"`
	Teacher      *UserEntity `db:"-"             gorm:"foreignKey:TeacherID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time   `db:"created_at"    gorm:"column:created_at"`
}

func (StudentEntity) TableName() string { return "students" }

func toStudentEntity(m *model.Student) *StudentEntity {
	if m == nil {
		return nil
	}
	return &StudentEntity{
		ID:           m.ID,
		ExternalID:   m.ExternalID,
		Name:         m.Name,
		BalanceCents: money.ToCents(m.Balance),
		TeacherID:    m.TeacherID,
		CreatedAt:    m.CreatedAt,
	}
}

func toStudentModel(e *StudentEntity) *model.Student {
	if e == nil {
		return nil
	}
	return &model.Student{
		ID:         e.ID,
		ExternalID: e.ExternalID,
		Name:       e.Name,
		Balance:    money.FromCents(e.BalanceCents),
		TeacherID:  e.TeacherID,
		CreatedAt:  e.CreatedAt,
	}
}

func toStudentModels(entities []*StudentEntity) []*model.Student {
	if entities == nil {
		return nil
	}
	models := make([]*model.Student, len(entities))
	for i, e := range entities {
		models[i] = toStudentModel(e)
	}
	return models
}
