package services

import (
	"context"
	"testing"

	"github.com/jabenlo/pstep-bank-store/internal/model"
	"github.com/jabenlo/pstep-bank-store/internal/money"
	"github.com/jabenlo/pstep-bank-store/internal/repository"
	"github.com/jabenlo/pstep-bank-store/pkg/pg"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	db           *pg.DB
	users        *repository.UserRepository
	students     *repository.StudentRepository
	items        *repository.ItemRepository
	transactions *repository.TransactionRepository
	purchases    *repository.PurchaseRepository
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	raw, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = raw.AutoMigrate(
		&repository.UserEntity{},
		&repository.StudentEntity{},
		&repository.ItemEntity{},
		&repository.TransactionEntity{},
		&repository.PurchaseEntity{},
	)
	require.NoError(t, err)

	db := pg.NewFromGorm(raw, raw)
	return &testEnv{
		db:           db,
		users:        repository.NewUserRepository(db),
		students:     repository.NewStudentRepository(db),
		items:        repository.NewItemRepository(db),
		transactions: repository.NewTransactionRepository(db),
		purchases:    repository.NewPurchaseRepository(db),
	}
}

func (e *testEnv) createTeacher(t *testing.T, username string) *model.User {
	t.Helper()
	user, err := e.users.Create(context.Background(), &model.User{
		Username:     username,
		PasswordHash: "$2a$10$unused",
		Role:         model.RoleTeacher,
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) createStudent(t *testing.T, teacherID int64, externalID, name, balance string) *model.Student {
	t.Helper()
	student, err := e.students.Create(context.Background(), &model.Student{
		ExternalID: externalID,
		Name:       name,
		Balance:    decimal.RequireFromString(balance),
		TeacherID:  teacherID,
	})
	require.NoError(t, err)
	return student
}

func (e *testEnv) createItem(t *testing.T, teacherID int64, name, price string) *model.Item {
	t.Helper()
	item, err := e.items.Create(context.Background(), &model.Item{
		Name:      name,
		Price:     money.Quantize(decimal.RequireFromString(price)),
		TeacherID: teacherID,
	})
	require.NoError(t, err)
	return item
}
