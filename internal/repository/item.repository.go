package repository

import (
	"context"
	"errors"

	"github.com/jabenlo/pstep-bank-store/internal/model"
	"github.com/jabenlo/pstep-bank-store/internal/money"
	"github.com/jabenlo/pstep-bank-store/pkg/pg"
	"gorm.io/gorm"
)

type ItemRepository struct {
	*pg.DB
}

func NewItemRepository(db *pg.DB) *ItemRepository {
	return &ItemRepository{
		db,
	}
}

func (r *ItemRepository) Create(ctx context.Context, item *model.Item) (*model.Item, error) {
	entity := toItemEntity(item)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toItemModel(entity), nil
}

func (r *ItemRepository) FindByID(ctx context.Context, id int64) (*model.Item, error) {
	var entity ItemEntity
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
	return toItemModel(&entity), nil
}

// FindForTeacher scopes the lookup by owning teacher so items never leak
// across classrooms.
func (r *ItemRepository) FindForTeacher(ctx context.Context, id, teacherID int64) (*model.Item, error) {
	var entity ItemEntity
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
	return toItemModel(&entity), nil
}

func (r *ItemRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]*model.Item, error) {
	var entities []*ItemEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at ASC, id ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toItemModels(entities), nil
}

// Update persists name, description, price and image path.
func (r *ItemRepository) Update(ctx context.Context, item *model.Item) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&ItemEntity{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"name":        item.Name,
			"description": item.Description,
			"price_cents": money.ToCents(item.Price),
			"image_path":  item.ImagePath,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	result := r.Write(ctx).WithContext(ctx).Where("id = ?", id).Delete(&ItemEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
