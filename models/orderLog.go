package models

import "time"

const (
	OrderLogActionCreate       = "CREATE"
	OrderLogActionStatusChange = "STATUS_CHANGE"
	OrderLogActionCancel       = "CANCEL"
)

// 訂單操作紀錄，只新增不修改
type OrderLog struct {
	ID          uint   `gorm:"primaryKey"`
	OrderID     string `gorm:"type:char(36);not null;index"`
	Action      string `gorm:"size:100;not null"`
	Description string `gorm:"type:text"`
	OperatorID  *uint
	Operator    *User `gorm:"constraint:OnDelete:SET NULL"`
	CreatedAt   time.Time
}
