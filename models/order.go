package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every recognized status in lifecycle order
var OrderStatuses = []OrderStatus{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled}

var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
}

// Valid reports whether s is one of the recognized statuses
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether the lifecycle graph allows moving from s to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// StatusStrings returns the recognized statuses as plain strings, for SQL IN clauses
func StatusStrings() []string {
	out := make([]string, len(OrderStatuses))
	for i, s := range OrderStatuses {
		out[i] = string(s)
	}
	return out
}

// Order represents a customer's placed purchase
type Order struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	UserID       uint        `gorm:"not null;index" json:"userId"` // foreign key to users table
	User         *User       `gorm:"foreignKey:UserID" json:"-"`
	Address      string      `gorm:"not null" json:"address"`
	CustomerName string      `json:"customerName"`
	Status       OrderStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	TotalPrice   Money       `gorm:"type:numeric(10,2);not null" json:"totalPrice"` // persisted once at creation
	Items        []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt    time.Time   `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderItem is one product-quantity-price line of an order.
// Price is the unit price captured when the order was placed and never changes afterwards.
type OrderItem struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	OrderID   uint     `gorm:"not null;index" json:"orderId"`
	ProductID uint     `gorm:"not null;index" json:"productId"`
	Product   *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"product,omitempty"`
	Quantity  int      `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price     Money    `gorm:"type:numeric(10,2);not null" json:"price"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// LineTotal returns price × quantity for the line
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CalculateTotal sums price × quantity over items.
// It is the only place an order total is derived.
func CalculateTotal(items []OrderItem) Money {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return NewMoney(total)
}
