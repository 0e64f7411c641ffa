package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jabenlo/pstep-bank-store/internal/model"
	"github.com/jabenlo/pstep-bank-store/internal/money"
	"github.com/jabenlo/pstep-bank-store/internal/repository"
	"github.com/jabenlo/pstep-bank-store/pkg/logger"
	"github.com/jabenlo/pstep-bank-store/pkg/pg"
	"github.com/shopspring/decimal"
)

// RosterService is the teacher's side of the bank: managing students and
// adjusting their balances. Every lookup is scoped by the owning teacher.
type RosterService struct {
	db           *pg.DB
	students     *repository.StudentRepository
	transactions *repository.TransactionRepository
	purchases    *repository.PurchaseRepository
}

func NewRosterService(db *pg.DB, students *repository.StudentRepository, transactions *repository.TransactionRepository, purchases *repository.PurchaseRepository) *RosterService {
	return &RosterService{
		db:           db,
		students:     students,
		transactions: transactions,
		purchases:    purchases,
	}
}

// TeacherDashboard summarizes the classroom: the roster, its combined
// balance, store revenue and the latest ledger activity.
type TeacherDashboard struct {
	Students           []*model.Student
	TotalBalance       decimal.Decimal
	TotalRevenue       decimal.Decimal
	RecentTransactions []*model.Transaction
}

const teacherDashboardRecentLimit = 10

func (s *RosterService) Dashboard(ctx context.Context, teacherID int64) (*TeacherDashboard, error) {
	students, err := s.students.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	totalBalance := decimal.Zero
	for _, st := range students {
		totalBalance = totalBalance.Add(st.Balance)
	}

	revenueCents, err := s.purchases.TotalRevenueCentsForTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	recent, err := s.transactions.ListRecentByTeacher(ctx, teacherID, teacherDashboardRecentLimit)
	if err != nil {
		return nil, err
	}

	return &TeacherDashboard{
		Students:           students,
		TotalBalance:       money.Quantize(totalBalance),
		TotalRevenue:       money.FromCents(revenueCents),
		RecentTransactions: recent,
	}, nil
}

func (s *RosterService) AddStudent(ctx context.Context, teacherID int64, externalID, name string, initialBalance decimal.Decimal) (*model.Student, error) {
	if initialBalance.IsNegative() {
		return nil, ErrInvalidAmount
	}

	_, err := s.students.FindByExternalID(ctx, externalID)
	if err == nil {
		return nil, ErrDuplicateStudentID
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	student, err := s.students.Create(ctx, &model.Student{
		ExternalID: externalID,
		Name:       name,
		Balance:    money.Quantize(initialBalance),
		TeacherID:  teacherID,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("student added", "student_id", student.ID, "external_id", externalID, "teacher_id", teacherID)
	return student, nil
}

func (s *RosterService) ListStudents(ctx context.Context, teacherID int64) ([]*model.Student, error) {
	return s.students.ListByTeacher(ctx, teacherID)
}

func (s *RosterService) GetStudent(ctx context.Context, teacherID, studentID int64) (*model.Student, error) {
	return s.students.FindForTeacher(ctx, studentID, teacherID)
}

func (s *RosterService) UpdateStudent(ctx context.Context, teacherID, studentID int64, name string) (*model.Student, error) {
	if _, err := s.students.FindForTeacher(ctx, studentID, teacherID); err != nil {
		return nil, err
	}
	if err := s.students.UpdateName(ctx, studentID, name); err != nil {
		return nil, err
	}
	return s.students.FindByID(ctx, studentID)
}

// DeleteStudent removes the student together with their ledger, atomically.
func (s *RosterService) DeleteStudent(ctx context.Context, teacherID, studentID int64) error {
	if _, err := s.students.FindForTeacher(ctx, studentID, teacherID); err != nil {
		return err
	}

	err := s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.students.Delete(ctx, studentID)
	})
	if err != nil {
		return err
	}

	logger.Info("student deleted", "student_id", studentID, "teacher_id", teacherID)
	return nil
}

// AdjustBalance applies a manual credit or debit and records it in the
// ledger. The balance change and ledger row commit together or not at all.
func (s *RosterService) AdjustBalance(ctx context.Context, teacherID, studentID int64, kind model.TransactionKind, amount decimal.Decimal, description string) (*model.Student, error) {
	amount = money.Quantize(amount)
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	student, err := s.students.FindForTeacher(ctx, studentID, teacherID)
	if err != nil {
		return nil, err
	}

	if description == "" {
		description = fmt.Sprintf("Manual %s by teacher", kind)
	}

	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		cents := money.ToCents(amount)
		if kind == model.KindCredit {
			if err := s.students.AddBalance(ctx, studentID, cents); err != nil {
				return err
			}
		} else {
			if err := s.students.DeductBalance(ctx, studentID, cents); err != nil {
				if errors.Is(err, repository.ErrInsufficientBalance) {
					return &InsufficientBalanceError{Required: amount, Available: student.Balance}
				}
				return err
			}
		}

		_, err := s.transactions.Create(ctx, &model.Transaction{
			StudentID:   studentID,
			Kind:        kind,
			Amount:      amount,
			Description: description,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("balance adjusted",
		"student_id", studentID,
		"teacher_id", teacherID,
		"type", string(kind),
		"amount", amount.StringFixed(2))

	return s.students.FindByID(ctx, studentID)
}
