package models

import (
	"time"
)

// Customer is never hard-deleted: historical orders keep pointing at it,
// so deletion only flips IsActive.
type Customer struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"               json:"id"`
	Name     string `gorm:"column:name;not null"                   json:"name"`
	CusCode  string `gorm:"column:cus_code;not null"               json:"cus_code"`
	IsActive bool   `gorm:"column:is_active;not null;default:true" json:"is_active"`
}

func (Customer) TableName() string { return "customer" }

type Item struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"  json:"id"`
	ItemCode string `gorm:"column:item_code;not null" json:"item_code"`
	ItemName string `gorm:"column:item_name;not null" json:"item_name"`
	Category string `gorm:"column:category;not null"  json:"category"`
}

func (Item) TableName() string { return "item" }

type Order struct {
	ID           uint        `gorm:"primaryKey;autoIncrement"            json:"id"`
	CustomerID   uint        `gorm:"index;not null"                      json:"customer_id"`
	Customer     Customer    `gorm:"foreignKey:CustomerID"               json:"-"`
	ShipmentDate time.Time   `gorm:"column:shipment_date;not null;index" json:"shipment_date"`
	Remarks      string      `gorm:"column:remarks"                      json:"remarks"`
	Items        []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Order) TableName() string { return "orders" }

// OrderItem rows are owned by their order. The composite primary key keeps
// one row per (order, item); writers merge duplicate items before insert.
type OrderItem struct {
	OrderID  uint `gorm:"column:order_id;primaryKey;autoIncrement:false" json:"order_id"`
	ItemID   uint `gorm:"column:item_id;primaryKey;autoIncrement:false"  json:"item_id"`
	Item     Item `gorm:"foreignKey:ItemID;constraint:OnDelete:RESTRICT" json:"-"`
	Quantity int  `gorm:"not null;check:quantity > 0"                    json:"quantity"`
}

func (OrderItem) TableName() string { return "order_items" }
