package store

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sallyfoods/orderdesk/internal/models"
	"github.com/sallyfoods/orderdesk/internal/util"
)

type OrderStore struct {
	DB *gorm.DB
}

func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{DB: db}
}

// LineInput is one requested (item, quantity) pair. Entries with a zero
// item or a non-positive quantity are dropped, never persisted.
type LineInput struct {
	ItemID   uint
	Quantity int
}

type OrderFilter struct {
	CustomerSearch string
	// DateFrom/DateTo are inclusive day bounds; both must be set for the
	// range to apply.
	DateFrom time.Time
	DateTo   time.Time
}

type OrderRow struct {
	ID           uint
	CustomerName string
	ShipmentDate time.Time
	Remarks      string
}

type DetailLine struct {
	ItemID   uint
	ItemCode string
	ItemName string
	Category string
	Quantity int
}

type OrderDetail struct {
	ID           uint
	CustomerID   uint
	CustomerName string
	ShipmentDate time.Time
	Remarks      string
	Lines        []DetailLine `gorm:"-"`
}

func (s *OrderStore) listQuery(ctx context.Context, f OrderFilter) *gorm.DB {
	q := s.DB.WithContext(ctx).Table("orders AS o").
		Joins("JOIN customer AS c ON c.id = o.customer_id").
		Where("c.is_active = ?", true)
	if f.CustomerSearch != "" {
		q = q.Where("LOWER(c.name) LIKE ?", "%"+strings.ToLower(f.CustomerSearch)+"%")
	}
	if !f.DateFrom.IsZero() && !f.DateTo.IsZero() {
		q = q.Where("o.shipment_date >= ? AND o.shipment_date < ?",
			startOfDay(f.DateFrom), startOfDay(f.DateTo).AddDate(0, 0, 1))
	}
	return q
}

// List hides orders whose customer has been soft-deleted, newest shipment
// first.
func (s *OrderStore) List(ctx context.Context, f OrderFilter, page, size int) ([]OrderRow, int64, error) {
	var total int64
	if err := s.listQuery(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := util.Calculate(page, size)
	var rows []OrderRow
	err := s.listQuery(ctx, f).
		Select("o.id, c.name AS customer_name, o.shipment_date, o.remarks").
		Order("o.shipment_date DESC, o.id DESC").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *OrderStore) Get(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	res := s.DB.WithContext(ctx).Limit(1).Find(&order, id)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &order, nil
}

func (s *OrderStore) Detail(ctx context.Context, id uint) (*OrderDetail, error) {
	var d OrderDetail
	res := s.DB.WithContext(ctx).Table("orders AS o").
		Joins("JOIN customer AS c ON c.id = o.customer_id").
		Where("o.id = ?", id).
		Select("o.id, o.customer_id, c.name AS customer_name, o.shipment_date, o.remarks").
		Scan(&d)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	err := s.DB.WithContext(ctx).Table("order_items AS oi").
		Joins("JOIN item AS i ON i.id = oi.item_id").
		Where("oi.order_id = ?", id).
		Select("oi.item_id, i.item_code, i.item_name, i.category, oi.quantity").
		Order("i.category ASC, i.item_name ASC").
		Scan(&d.Lines).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Lines returns the current (item, quantity) pairs of an order, used to
// pre-populate the assignment form.
func (s *OrderStore) Lines(ctx context.Context, orderID uint) ([]models.OrderItem, error) {
	var lines []models.OrderItem
	err := s.DB.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("item_id ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// CreateOrder inserts the header and its line items in one transaction.
// When no line survives filtering the whole transaction rolls back, so an
// empty order is never left behind.
func (s *OrderStore) CreateOrder(ctx context.Context, order *models.Order, lines []LineInput) (uint, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		return replaceLines(tx, order.ID, lines)
	})
	if err != nil {
		return 0, err
	}
	return order.ID, nil
}

// ReplaceItems makes the persisted line items of an order equal exactly the
// filtered input set, or leaves them untouched on any failure.
func (s *OrderStore) ReplaceItems(ctx context.Context, orderID uint, lines []LineInput) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return replaceLines(tx, orderID, lines)
	})
}

// replaceLines runs inside an open transaction: delete everything, then
// insert one row per surviving entry. Duplicate items are merged by summing
// their quantities, matching the composite (order_id, item_id) key.
func replaceLines(tx *gorm.DB, orderID uint, lines []LineInput) error {
	if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}

	merged := make(map[uint]int, len(lines))
	var itemOrder []uint
	for _, l := range lines {
		if l.ItemID == 0 || l.Quantity <= 0 {
			continue
		}
		if _, seen := merged[l.ItemID]; !seen {
			itemOrder = append(itemOrder, l.ItemID)
		}
		merged[l.ItemID] += l.Quantity
	}
	if len(merged) == 0 {
		return ErrNoItems
	}

	rows := make([]models.OrderItem, 0, len(merged))
	for _, itemID := range itemOrder {
		rows = append(rows, models.OrderItem{OrderID: orderID, ItemID: itemID, Quantity: merged[itemID]})
	}
	return tx.Create(&rows).Error
}

func (s *OrderStore) UpdateHeader(ctx context.Context, id, customerID uint, shipmentDate time.Time, remarks string) error {
	res := s.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).
		Updates(map[string]any{
			"customer_id":   customerID,
			"shipment_date": shipmentDate,
			"remarks":       remarks,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the order and its line items. The explicit line delete
// keeps the behaviour identical across databases; ON DELETE CASCADE covers
// anything that bypasses the store.
func (s *OrderStore) Delete(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Order{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
