package services

import (
	"context"
	"errors"

	"github.com/jabenlo/pstep-bank-store/internal/model"
	"github.com/jabenlo/pstep-bank-store/internal/money"
	"github.com/jabenlo/pstep-bank-store/internal/repository"
	"github.com/jabenlo/pstep-bank-store/internal/uploads"
	"github.com/jabenlo/pstep-bank-store/pkg/logger"
	"github.com/shopspring/decimal"
)

// StoreService manages a teacher's item catalog, including the optional
// item images.
type StoreService struct {
	items  *repository.ItemRepository
	images *uploads.Store
}

func NewStoreService(items *repository.ItemRepository, images *uploads.Store) *StoreService {
	return &StoreService{
		items:  items,
		images: images,
	}
}

// saveImage stores the upload if there is one. A disallowed extension drops
// the image rather than failing the whole request; the item is still saved.
func (s *StoreService) saveImage(fileName string, data []byte) string {
	if len(data) == 0 || fileName == "" {
		return ""
	}
	path, err := s.images.Save(fileName, data)
	if err != nil {
		if errors.Is(err, uploads.ErrDisallowedExtension) {
			logger.Warn("item image rejected", "filename", fileName)
			return ""
		}
		logger.Error("failed to store item image", "filename", fileName, "error", err)
		return ""
	}
	return path
}

func (s *StoreService) CreateItem(ctx context.Context, teacherID int64, name, description string, price decimal.Decimal, imageName string, imageData []byte) (*model.Item, error) {
	price = money.Quantize(price)
	if price.IsNegative() {
		return nil, ErrInvalidPrice
	}

	item, err := s.items.Create(ctx, &model.Item{
		Name:        name,
		Description: description,
		Price:       price,
		ImagePath:   s.saveImage(imageName, imageData),
		TeacherID:   teacherID,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("item created", "item_id", item.ID, "teacher_id", teacherID, "name", name)
	return item, nil
}

func (s *StoreService) ListItems(ctx context.Context, teacherID int64) ([]*model.Item, error) {
	return s.items.ListByTeacher(ctx, teacherID)
}

func (s *StoreService) GetItem(ctx context.Context, teacherID, itemID int64) (*model.Item, error) {
	return s.items.FindForTeacher(ctx, itemID, teacherID)
}

// UpdateItem replaces the stored fields. A new image replaces and removes
// the previous one.
func (s *StoreService) UpdateItem(ctx context.Context, teacherID, itemID int64, name, description string, price decimal.Decimal, imageName string, imageData []byte) (*model.Item, error) {
	price = money.Quantize(price)
	if price.IsNegative() {
		return nil, ErrInvalidPrice
	}

	item, err := s.items.FindForTeacher(ctx, itemID, teacherID)
	if err != nil {
		return nil, err
	}

	if newPath := s.saveImage(imageName, imageData); newPath != "" {
		if item.ImagePath != "" {
			if err := s.images.Delete(item.ImagePath); err != nil {
				logger.Warn("failed to remove replaced item image", "path", item.ImagePath, "error", err)
			}
		}
		item.ImagePath = newPath
	}

	item.Name = name
	item.Description = description
	item.Price = price

	if err := s.items.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *StoreService) DeleteItem(ctx context.Context, teacherID, itemID int64) error {
	item, err := s.items.FindForTeacher(ctx, itemID, teacherID)
	if err != nil {
		return err
	}

	if err := s.items.Delete(ctx, itemID); err != nil {
		return err
	}

	if item.ImagePath != "" {
		if err := s.images.Delete(item.ImagePath); err != nil {
			logger.Warn("failed to remove item image", "path", item.ImagePath, "error", err)
		}
	}

	logger.Info("item deleted", "item_id", itemID, "teacher_id", teacherID)
	return nil
}
