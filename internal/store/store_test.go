package store

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sallyfoods/orderdesk/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{})
	require.NoError(t, err)

	// a single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Customer{}, &models.Item{}, &models.Order{}, &models.OrderItem{}))
	return db
}

func seedCustomer(t *testing.T, db *gorm.DB, name, code string) models.Customer {
	t.Helper()
	customer := models.Customer{Name: name, CusCode: code, IsActive: true}
	require.NoError(t, db.Create(&customer).Error)
	return customer
}

func seedItem(t *testing.T, db *gorm.DB, code, name, category string) models.Item {
	t.Helper()
	item := models.Item{ItemCode: code, ItemName: name, Category: category}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func seedOrder(t *testing.T, db *gorm.DB, customerID uint, ship time.Time, lines ...models.OrderItem) models.Order {
	t.Helper()
	order := models.Order{CustomerID: customerID, ShipmentDate: ship}
	require.NoError(t, db.Create(&order).Error)
	for i := range lines {
		lines[i].OrderID = order.ID
		require.NoError(t, db.Create(&lines[i]).Error)
	}
	return order
}

// lineMap reads the persisted line set of an order as item_id -> quantity.
func lineMap(t *testing.T, db *gorm.DB, orderID uint) map[uint]int {
	t.Helper()
	var rows []models.OrderItem
	require.NoError(t, db.Where("order_id = ?", orderID).Find(&rows).Error)
	m := make(map[uint]int, len(rows))
	for _, r := range rows {
		m[r.ItemID] = r.Quantity
	}
	return m
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func ctx() context.Context { return context.Background() }
