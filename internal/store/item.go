package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/sallyfoods/orderdesk/internal/models"
)

type ItemStore struct {
	DB *gorm.DB
}

func NewItemStore(db *gorm.DB) *ItemStore {
	return &ItemStore{DB: db}
}

type ItemFilter struct {
	Search   string
	Category string
}

func (s *ItemStore) List(ctx context.Context, f ItemFilter) ([]models.Item, error) {
	q := s.DB.WithContext(ctx).Model(&models.Item{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("(LOWER(item_name) LIKE ? OR LOWER(item_code) LIKE ?)", pattern, pattern)
	}

	var items []models.Item
	if err := q.Order("category ASC, item_name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *ItemStore) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := s.DB.WithContext(ctx).Model(&models.Item{}).
		Distinct("category").Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *ItemStore) Get(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	if err := s.DB.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (s *ItemStore) Create(ctx context.Context, item *models.Item) error {
	return s.DB.WithContext(ctx).Create(item).Error
}

func (s *ItemStore) Update(ctx context.Context, id uint, code, name, category string) error {
	res := s.DB.WithContext(ctx).Model(&models.Item{}).Where("id = ?", id).
		Updates(map[string]any{"item_code": code, "item_name": name, "category": category})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the item unless any order still references it. The check
// runs in the same transaction as the delete; the FK constraint on
// order_items remains the backstop.
func (s *ItemStore) Delete(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&models.OrderItem{}).Where("item_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrItemInUse
		}

		res := tx.Delete(&models.Item{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
