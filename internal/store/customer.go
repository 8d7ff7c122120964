package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/sallyfoods/orderdesk/internal/models"
)

type CustomerStore struct {
	DB *gorm.DB
}

func NewCustomerStore(db *gorm.DB) *CustomerStore {
	return &CustomerStore{DB: db}
}

// List returns active customers, optionally narrowed by a case-insensitive
// substring match against the name or the customer code.
func (s *CustomerStore) List(ctx context.Context, search string) ([]models.Customer, error) {
	q := s.DB.WithContext(ctx).Where("is_active = ?", true)
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(cus_code) LIKE ?)", pattern, pattern)
	}

	var customers []models.Customer
	if err := q.Order("name ASC").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *CustomerStore) Get(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := s.DB.WithContext(ctx).First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

func (s *CustomerStore) Create(ctx context.Context, customer *models.Customer) error {
	customer.IsActive = true
	return s.DB.WithContext(ctx).Create(customer).Error
}

func (s *CustomerStore) Update(ctx context.Context, id uint, name, cusCode string) error {
	res := s.DB.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", id).
		Updates(map[string]any{"name": name, "cus_code": cusCode})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete hides the customer from listings. The row stays so historical
// orders keep a valid reference.
func (s *CustomerStore) SoftDelete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
