package repository

import (
	"context"

	"github.com/jabenlo/pstep-bank-store/internal/model"
	"github.com/jabenlo/pstep-bank-store/pkg/pg"
)

type TransactionRepository struct {
	*pg.DB
}

func NewTransactionRepository(db *pg.DB) *TransactionRepository {
	return &TransactionRepository{
		db,
	}
}

func (r *TransactionRepository) Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	entity := toTransactionEntity(txn)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toTransactionModel(entity), nil
}

// ListByStudent returns the student's ledger newest first. limit <= 0 means
// no limit.
func (r *TransactionRepository) ListByStudent(ctx context.Context, studentID int64, limit int) ([]*model.Transaction, error) {
	q := r.Read(ctx).WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var entities []*TransactionEntity
	if err := q.Find(&entities).Error; err != nil {
		return nil, err
	}
	return toTransactionModels(entities), nil
}

// ListRecentByTeacher returns the newest transactions across all of the
// teacher's students, for the dashboard.
func (r *TransactionRepository) ListRecentByTeacher(ctx context.Context, teacherID int64, limit int) ([]*model.Transaction, error) {
	var entities []*TransactionEntity
	err := r.Read(ctx).WithContext(ctx).
		Joins("JOIN students ON students.id = transactions.student_id").
		Where("students.teacher_id = ?", teacherID).
		Order("transactions.created_at DESC, transactions.id DESC").
		Limit(limit).
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toTransactionModels(entities), nil
}
