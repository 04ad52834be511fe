package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusPaid       = "paid"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"
)

// 訂單狀態的顯示名稱
var OrderStatusLabels = map[string]string{
	OrderStatusPending:    "待付款",
	OrderStatusPaid:       "已付款",
	OrderStatusProcessing: "處理中",
	OrderStatusShipped:    "已出貨",
	OrderStatusDelivered:  "已送達",
	OrderStatusCancelled:  "已取消",
	OrderStatusRefunded:   "已退款",
}

func IsValidOrderStatus(status string) bool {
	_, ok := OrderStatusLabels[status]
	return ok
}

type Order struct {
	ID          string `gorm:"type:char(36);primaryKey"`
	UserID      uint   `gorm:"not null;index"`
	User        User
	OrderNumber string `gorm:"size:32;uniqueIndex;not null"`
	Status      string `gorm:"size:20;not null;default:pending"`

	ReceiverName    string `gorm:"size:100;not null"`
	ReceiverPhone   string `gorm:"size:20;not null"`
	ReceiverAddress string `gorm:"type:text;not null"`

	TotalAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	ShippingFee    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	FinalAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`

	Notes string `gorm:"type:text"`

	CreatedAt   time.Time
	UpdatedAt   time.Time
	PaidAt      *time.Time
	ShippedAt   *time.Time
	DeliveredAt *time.Time

	OrderItems []OrderItem `gorm:"constraint:OnDelete:CASCADE"`
	OrderLogs  []OrderLog  `gorm:"constraint:OnDelete:CASCADE"`
}

// 訂單狀態顯示名稱，未知狀態直接回傳原值
func (o *Order) StatusLabel() string {
	if label, ok := OrderStatusLabels[o.Status]; ok {
		return label
	}
	return o.Status
}
