package repository

import (
	"context"
	"errors"

	"github.com/jabenlo/pstep-bank-store/internal/model"
	"github.com/jabenlo/pstep-bank-store/pkg/pg"
	"gorm.io/gorm"
)

type StudentRepository struct {
	*pg.DB
}

func NewStudentRepository(db *pg.DB) *StudentRepository {
	return &StudentRepository{
		db,
	}
}

func (r *StudentRepository) Create(ctx context.Context, student *model.Student) (*model.Student, error) {
	entity := toStudentEntity(student)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toStudentModel(entity), nil
}

func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*model.Student, error) {
	var entity StudentEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toStudentModel(&entity), nil
}

// FindByExternalID looks up a student by the classroom-visible identifier
// used for login. External ids are globally unique, not teacher-scoped.
func (r *StudentRepository) FindByExternalID(ctx context.Context, externalID string) (*model.Student, error) {
	var entity StudentEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("student_id = ?", externalID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toStudentModel(&entity), nil
}

// FindForTeacher scopes the lookup by owning teacher. A student that exists
// under a different teacher is reported as not found.
func (r *StudentRepository) FindForTeacher(ctx context.Context, id, teacherID int64) (*model.Student, error) {
	var entity StudentEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ? AND teacher_id = ?", id, teacherID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toStudentModel(&entity), nil
}

func (r *StudentRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]*model.Student, error) {
	var entities []*StudentEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at ASC, id ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toStudentModels(entities), nil
}

func (r *StudentRepository) UpdateName(ctx context.Context, id int64, name string) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&StudentEntity{}).
		Where("id = ?", id).
		Update("name", name)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the student and its dependent ledger rows. Dependents are
// deleted explicitly instead of relying on database cascade so the behavior
// is identical on every driver. Callers are expected to run this inside
// WithinTransaction.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	if err := r.Write(ctx).WithContext(ctx).Where("student_id = ?", id).Delete(&TransactionEntity{}).Error; err != nil {
		return err
	}
	if err := r.Write(ctx).WithContext(ctx).Where("student_id = ?", id).Delete(&PurchaseEntity{}).Error; err != nil {
		return err
	}
	result := r.Write(ctx).WithContext(ctx).Where("id = ?", id).Delete(&StudentEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeductBalance debits the student with a guarded update: the row is only
// touched while the balance still covers the amount, which closes the race
// between a balance check and the commit.
func (r *StudentRepository) DeductBalance(ctx context.Context, id int64, amountCents int64) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&StudentEntity{}).
		Where("id = ? AND balance_cents >= ?", id, amountCents).
		Update("balance_cents", gorm.Expr("balance_cents - ?", amountCents))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.checkDeductionFailureReason(ctx, id, amountCents)
	}
	return nil
}

// checkDeductionFailureReason determines why the guarded update matched no
// row.
func (r *StudentRepository) checkDeductionFailureReason(ctx context.Context, id int64, amountCents int64) error {
	var entity StudentEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if entity.BalanceCents < amountCents {
		return ErrInsufficientBalance
	}
	// balance was sufficient but the update matched nothing: lost a race
	return ErrConcurrentUpdate
}

func (r *StudentRepository) AddBalance(ctx context.Context, id int64, amountCents int64) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&StudentEntity{}).
		Where("id = ?", id).
		Update("balance_cents", gorm.Expr("balance_cents + ?", amountCents))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
