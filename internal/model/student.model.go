package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Student is a managed account. ExternalID is the classroom-visible student
// identifier used for login; ID is the database key.
type Student struct {
	ID         int64           `json:"id"`
	ExternalID string          `json:"student_id"`
	Name       string          `json:"name"`
	Balance    decimal.Decimal `json:"balance"`
	TeacherID  int64           `json:"teacher_id"`
	CreatedAt  time.Time       `json:"created_at"`
}
