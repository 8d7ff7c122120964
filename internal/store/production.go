package store

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type ProductionStore struct {
	DB *gorm.DB
}

func NewProductionStore(db *gorm.DB) *ProductionStore {
	return &ProductionStore{DB: db}
}

type ProductionRow struct {
	ItemCode      string
	ItemName      string
	Category      string
	TotalQuantity int
}

// Daily sums line-item quantities per item over every order shipping on the
// given day (local time). Read-only.
func (s *ProductionStore) Daily(ctx context.Context, day time.Time) ([]ProductionRow, error) {
	start := startOfDay(day)
	end := start.AddDate(0, 0, 1)

	var rows []ProductionRow
	err := s.DB.WithContext(ctx).Table("order_items AS oi").
		Joins("JOIN orders AS o ON o.id = oi.order_id").
		Joins("JOIN item AS i ON i.id = oi.item_id").
		Where("o.shipment_date >= ? AND o.shipment_date < ?", start, end).
		Group("i.category, i.item_code, i.item_name").
		Select("i.item_code, i.item_name, i.category, SUM(oi.quantity) AS total_quantity").
		Order("i.category ASC, i.item_name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
