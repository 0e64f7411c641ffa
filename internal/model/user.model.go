package model

import "time"

const RoleTeacher = "teacher"

// User is a teacher account. Students and items belong to exactly one user.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
