package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 訂單商品快照，建立訂單時複製商品資料，不參照商品目錄
type OrderItem struct {
	gorm.Model
	OrderID      string `gorm:"type:char(36);not null;index"`
	ProductName  string `gorm:"size:200;not null"`
	ProductSKU   string `gorm:"size:100"`
	ProductImage string
	Quantity     uint            `gorm:"not null;default:1"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}
