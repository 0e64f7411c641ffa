package services

import (
	"context"

	"github.com/jabenlo/pstep-bank-store/internal/model"
	"github.com/jabenlo/pstep-bank-store/internal/repository"
)

const dashboardRecentLimit = 5

// StudentService serves the student-facing read views. Balances are always
// loaded fresh from the database, never from the session snapshot.
type StudentService struct {
	students     *repository.StudentRepository
	items        *repository.ItemRepository
	transactions *repository.TransactionRepository
	purchases    *repository.PurchaseRepository
}

func NewStudentService(
	students *repository.StudentRepository,
	items *repository.ItemRepository,
	transactions *repository.TransactionRepository,
	purchases *repository.PurchaseRepository,
) *StudentService {
	return &StudentService{
		students:     students,
		items:        items,
		transactions: transactions,
		purchases:    purchases,
	}
}

// Dashboard bundles the student's current state with their most recent
// activity.
type Dashboard struct {
	Student            *model.Student
	RecentTransactions []*model.Transaction
	RecentPurchases    []*model.PurchaseWithItem
}

func (s *StudentService) Dashboard(ctx context.Context, studentID int64) (*Dashboard, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	txns, err := s.transactions.ListByStudent(ctx, studentID, dashboardRecentLimit)
	if err != nil {
		return nil, err
	}

	purchases, err := s.purchases.ListByStudent(ctx, studentID, dashboardRecentLimit)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Student:            student,
		RecentTransactions: txns,
		RecentPurchases:    purchases,
	}, nil
}

func (s *StudentService) Balance(ctx context.Context, studentID int64) (*model.Student, error) {
	return s.students.FindByID(ctx, studentID)
}

// StoreItems lists the catalog of the student's own teacher.
func (s *StudentService) StoreItems(ctx context.Context, studentID int64) ([]*model.Item, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.items.ListByTeacher(ctx, student.TeacherID)
}

func (s *StudentService) Transactions(ctx context.Context, studentID int64) ([]*model.Transaction, error) {
	return s.transactions.ListByStudent(ctx, studentID, 0)
}

func (s *StudentService) Purchases(ctx context.Context, studentID int64) ([]*model.PurchaseWithItem, error) {
	return s.purchases.ListByStudent(ctx, studentID, 0)
}
