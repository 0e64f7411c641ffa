package repository

import (
	"context"

	"github.com/jabenlo/pstep-bank-store/internal/model"
	"github.com/jabenlo/pstep-bank-store/pkg/pg"
)

type PurchaseRepository struct {
	*pg.DB
}

func NewPurchaseRepository(db *pg.DB) *PurchaseRepository {
	return &PurchaseRepository{
		db,
	}
}

func (r *PurchaseRepository) Create(ctx context.Context, purchase *model.Purchase) (*model.Purchase, error) {
	entity := toPurchaseEntity(purchase)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toPurchaseModel(entity), nil
}

// ListByStudent returns the student's purchases newest first, each paired
// with its catalog item. Purchases whose item has since been deleted are
// omitted, matching the history views. limit <= 0 means no limit.
func (r *PurchaseRepository) ListByStudent(ctx context.Context, studentID int64, limit int) ([]*model.PurchaseWithItem, error) {
	q := r.Read(ctx).WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var purchases []*PurchaseEntity
	if err := q.Find(&purchases).Error; err != nil {
		return nil, err
	}
	if len(purchases) == 0 {
		return []*model.PurchaseWithItem{}, nil
	}

	itemIDs := make([]int64, 0, len(purchases))
	for _, p := range purchases {
		itemIDs = append(itemIDs, p.ItemID)
	}

	var items []*ItemEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id IN ?", itemIDs).
		Find(&items).
		Error
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*ItemEntity, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	result := make([]*model.PurchaseWithItem, 0, len(purchases))
	for _, p := range purchases {
		item, ok := byID[p.ItemID]
		if !ok {
			continue
		}
		result = append(result, &model.PurchaseWithItem{
			Purchase: *toPurchaseModel(p),
			Item:     *toItemModel(item),
		})
	}
	return result, nil
}

// TotalRevenueCentsForTeacher sums every purchase made by the teacher's
// students.
func (r *PurchaseRepository) TotalRevenueCentsForTeacher(ctx context.Context, teacherID int64) (int64, error) {
	var cents int64
	err := r.Read(ctx).WithContext(ctx).
		Table("purchases").
		Joins("JOIN students ON students.id = purchases.student_id").
		Where("students.teacher_id = ?", teacherID).
		Select("COALESCE(SUM(purchases.total_cents), 0)").
		Scan(&cents).
		Error
	if err != nil {
		return 0, err
	}
	return cents, nil
}
