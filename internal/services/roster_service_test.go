package services

import (
	"context"
	"testing"

	"github.com/jabenlo/pstep-bank-store/internal/model"
	"github.com/jabenlo/pstep-bank-store/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRosterService_AddStudent(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewRosterService(env.db, env.students, env.transactions, env.purchases)
	ctx := context.Background()
	teacher := env.createTeacher(t, "mr-lopez")

	student, err := svc.AddStudent(ctx, teacher.ID, "S-001", "Ada", decimal.RequireFromString("10.005"))
	require.NoError(t, err)
	assert.Equal(t, "10.01", student.Balance.StringFixed(2))

	t.Run("duplicate classroom id", func(t *testing.T) {
		_, err := svc.AddStudent(ctx, teacher.ID, "S-001", "Other", decimal.Zero)
		assert.ErrorIs(t, err, ErrDuplicateStudentID)
	})

	t.Run("duplicate id across teachers still rejected", func(t *testing.T) {
		other := env.createTeacher(t, "ms-okafor")
		_, err := svc.AddStudent(ctx, other.ID, "S-001", "Other", decimal.Zero)
		assert.ErrorIs(t, err, ErrDuplicateStudentID)
	})

	t.Run("negative initial balance", func(t *testing.T) {
		_, err := svc.AddStudent(ctx, teacher.ID, "S-002", "Grace", decimal.RequireFromString("-1"))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestRosterService_AdjustBalance(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewRosterService(env.db, env.students, env.transactions, env.purchases)
	ctx := context.Background()
	teacher := env.createTeacher(t, "mr-lopez")
	student := env.createStudent(t, teacher.ID, "S-001", "Ada", "5.00")

	t.Run("credit", func(t *testing.T) {
		updated, err := svc.AdjustBalance(ctx, teacher.ID, student.ID, model.KindCredit, decimal.RequireFromString("2.50"), "")
		require.NoError(t, err)
		assert.Equal(t, "7.50", updated.Balance.StringFixed(2))

		txns, err := env.transactions.ListByStudent(ctx, student.ID, 0)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, model.KindCredit, txns[0].Kind)
		assert.Equal(t, "Manual credit by teacher", txns[0].Description)
	})

	t.Run("debit", func(t *testing.T) {
		updated, err := svc.AdjustBalance(ctx, teacher.ID, student.ID, model.KindDebit, decimal.RequireFromString("3.00"), "Broke a ruler")
		require.NoError(t, err)
		assert.Equal(t, "4.50", updated.Balance.StringFixed(2))

		txns, err := env.transactions.ListByStudent(ctx, student.ID, 1)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, "Broke a ruler", txns[0].Description)
	})

	t.Run("debit beyond balance", func(t *testing.T) {
		_, err := svc.AdjustBalance(ctx, teacher.ID, student.ID, model.KindDebit, decimal.RequireFromString("100.00"), "")
		require.Error(t, err)
		assert.ErrorIs(t, err, repository.ErrInsufficientBalance)

		var ibe *InsufficientBalanceError
		require.ErrorAs(t, err, &ibe)
		assert.Equal(t, "100.00", ibe.Required.StringFixed(2))
		assert.Equal(t, "4.50", ibe.Available.StringFixed(2))

		// no ledger row for the failed debit
		txns, err := env.transactions.ListByStudent(ctx, student.ID, 0)
		require.NoError(t, err)
		assert.Len(t, txns, 2)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := svc.AdjustBalance(ctx, teacher.ID, student.ID, model.KindCredit, decimal.Zero, "")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("another teacher's student", func(t *testing.T) {
		other := env.createTeacher(t, "ms-okafor")
		_, err := svc.AdjustBalance(ctx, other.ID, student.ID, model.KindCredit, decimal.RequireFromString("1.00"), "")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestRosterService_UpdateAndDeleteStudent(t *testing.T) {
	env := setupTestEnv(t)
	svc := NewRosterService(env.db, env.students, env.transactions, env.purchases)
	ctx := context.Background()
	teacher := env.createTeacher(t, "mr-lopez")
	other := env.createTeacher(t, "ms-okafor")
	student := env.createStudent(t, teacher.ID, "S-001", "Ada", "5.00")

	t.Run("rename", func(t *testing.T) {
		updated, err := svc.UpdateStudent(ctx, teacher.ID, student.ID, "Ada Lovelace")
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", updated.Name)
	})

	t.Run("rename scoped by teacher", func(t *testing.T) {
		_, err := svc.UpdateStudent(ctx, other.ID, student.ID, "Nope")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("delete scoped by teacher", func(t *testing.T) {
		err := svc.DeleteStudent(ctx, other.ID, student.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		_, err := svc.AdjustBalance(ctx, teacher.ID, student.ID, model.KindCredit, decimal.RequireFromString("1.00"), "")
		require.NoError(t, err)

		require.NoError(t, svc.DeleteStudent(ctx, teacher.ID, student.ID))

		_, err = env.students.FindByID(ctx, student.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		txns, err := env.transactions.ListByStudent(ctx, student.ID, 0)
		require.NoError(t, err)
		assert.Empty(t, txns)
	})
}
