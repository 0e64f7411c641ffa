package repository

import (
	"time"

	"github.com/jabenlo/pstep-bank-store/internal/model"
)

type UserEntity struct {
	ID           int64     `db:"id"            gorm:"primaryKey;autoIncrement;column:id"`
	Username     string    `db:"username"      gorm:"column:username;not null;unique;size:80"`
	PasswordHash string    `db:"password_hash" gorm:"column:password_hash;not null;size:120"`
	Role         string    `db:"role"          gorm:"column:role;not null;default:teacher;size:20"`
	CreatedAt    time.Time `db:"created_at"    gorm:"column:created_at"`
}

func (UserEntity) TableName() string { return "users" }

func toUserEntity(m *model.User) *UserEntity {
	if m == nil {
		return nil
	}
	return &UserEntity{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Role:         m.Role,
		CreatedAt:    m.CreatedAt,
	}
}

func toUserModel(e *UserEntity) *model.User {
	if e == nil {
		return nil
	}
	return &model.User{
		ID:           e.ID,
		Username:     e.Username,
		PasswordHash: e.PasswordHash,
		Role:         e.Role,
		CreatedAt:    e.CreatedAt,
	}
}
