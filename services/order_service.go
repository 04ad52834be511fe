package services

import (
	"MallBackend/models"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const statisticsCacheTTL = 5 * time.Minute

// 生成訂單編號，ORD加上毫秒時間戳
func GenerateOrderNumber() string {
	return fmt.Sprintf("ORD%d", time.Now().UnixMilli())
}

type OrderItemInput struct {
	ProductName  string
	ProductSKU   string
	ProductImage string
	Quantity     uint
	UnitPrice    decimal.Decimal
}

type CreateOrderInput struct {
	ReceiverName    string
	ReceiverPhone   string
	ReceiverAddress string
	Notes           string
	Items           []OrderItemInput
}

// 商品小計 = 數量 * 單價
func BuildOrderItem(orderID string, input OrderItemInput) models.OrderItem {
	quantity := decimal.NewFromInt(int64(input.Quantity))
	return models.OrderItem{
		OrderID:      orderID,
		ProductName:  input.ProductName,
		ProductSKU:   input.ProductSKU,
		ProductImage: input.ProductImage,
		Quantity:     input.Quantity,
		UnitPrice:    input.UnitPrice,
		TotalPrice:   input.UnitPrice.Mul(quantity),
	}
}

func SumItemTotals(items []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalPrice)
	}
	return total
}

// 應付金額 = 商品總額 + 運費 - 折扣
func ComputeFinalAmount(totalAmount, shippingFee, discountAmount decimal.Decimal) decimal.Decimal {
	return totalAmount.Add(shippingFee).Sub(discountAmount)
}

// 建立訂單，訂單、商品和操作紀錄在同一個事務中寫入
func CreateOrder(ctx context.Context, db *gorm.DB, rdb *redis.Client, user *models.User, input CreateOrderInput) (*models.Order, error) {
	order := models.Order{
		ID:              uuid.New().String(),
		UserID:          user.ID,
		OrderNumber:     GenerateOrderNumber(),
		Status:          models.OrderStatusPending,
		ReceiverName:    input.ReceiverName,
		ReceiverPhone:   input.ReceiverPhone,
		ReceiverAddress: input.ReceiverAddress,
		TotalAmount:     decimal.Zero,
		DiscountAmount:  decimal.Zero,
		ShippingFee:     decimal.Zero,
		FinalAmount:     decimal.Zero,
		Notes:           input.Notes,
	}

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()
	if tx.Error != nil {
		return nil, tx.Error
	}

	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(input.Items))
	for _, itemInput := range input.Items {
		item := BuildOrderItem(order.ID, itemInput)
		if err := tx.Create(&item).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		items = append(items, item)
	}

	order.TotalAmount = SumItemTotals(items)
	order.FinalAmount = ComputeFinalAmount(order.TotalAmount, order.ShippingFee, order.DiscountAmount)
	if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"total_amount": order.TotalAmount,
		"final_amount": order.FinalAmount,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	orderLog := models.OrderLog{
		OrderID:     order.ID,
		Action:      models.OrderLogActionCreate,
		Description: "訂單建立成功",
		OperatorID:  &user.ID,
	}
	if err := tx.Create(&orderLog).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	order.OrderItems = items
	order.OrderLogs = []models.OrderLog{orderLog}
	order.User = *user

	InvalidateOrderStatistics(ctx, rdb, user.ID)

	return &order, nil
}

type OrderListFilter struct {
	Status      string
	StartDate   string
	EndDate     string
	OrderNumber string
	Page        int
	PageSize    int
}

// 頁碼與每頁筆數修正為合法範圍，回應中的分頁資訊以修正後為準
func (f *OrderListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 10
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
}

// 查詢使用者的訂單列表，依建立時間由新到舊
func ListOrders(db *gorm.DB, userID uint, filter OrderListFilter) ([]models.Order, int64, error) {
	query := db.Model(&models.Order{}).Where("user_id = ?", userID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	//日期格式錯誤則忽略該條件
	if filter.StartDate != "" {
		if start, err := time.ParseInLocation("2006-01-02", filter.StartDate, time.Local); err == nil {
			query = query.Where("created_at >= ?", start)
		}
	}
	if filter.EndDate != "" {
		if end, err := time.ParseInLocation("2006-01-02", filter.EndDate, time.Local); err == nil {
			//含結束日期當天整天
			query = query.Where("created_at < ?", end.AddDate(0, 0, 1))
		}
	}
	if filter.OrderNumber != "" {
		query = query.Where("order_number LIKE ?", "%"+filter.OrderNumber+"%")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	filter.Normalize()

	var orders []models.Order
	err := query.
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Preload("User").
		Preload("OrderItems").
		Preload("OrderLogs", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("OrderLogs.Operator").
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}

	return orders, count, nil
}

// 查詢單筆訂單，不存在或非本人訂單一律回傳ErrOrderNotFound
func GetOrder(db *gorm.DB, userID uint, orderID string) (*models.Order, error) {
	var order models.Order
	err := db.
		Where("id = ? AND user_id = ?", orderID, userID).
		Preload("User").
		Preload("OrderItems").
		Preload("OrderLogs", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("OrderLogs.Operator").
		First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// 更新訂單狀態，任一狀態都可變更為任一合法狀態
// 第一次變更為paid/shipped/delivered時記錄對應時間，不覆蓋已存在的時間
func UpdateOrderStatus(ctx context.Context, db *gorm.DB, rdb *redis.Client, user *models.User, orderID, newStatus, notes string) (*models.Order, error) {
	if !models.IsValidOrderStatus(newStatus) {
		return nil, &ValidationError{Errors: map[string]string{"status": "無效的訂單狀態"}}
	}

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var order models.Order
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", orderID, user.ID).
		First(&order).Error
	if err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	oldStatus := order.Status
	order.Status = newStatus

	now := time.Now()
	switch newStatus {
	case models.OrderStatusPaid:
		if order.PaidAt == nil {
			order.PaidAt = &now
		}
	case models.OrderStatusShipped:
		if order.ShippedAt == nil {
			order.ShippedAt = &now
		}
	case models.OrderStatusDelivered:
		if order.DeliveredAt == nil {
			order.DeliveredAt = &now
		}
	}

	order.FinalAmount = ComputeFinalAmount(order.TotalAmount, order.ShippingFee, order.DiscountAmount)

	if err := tx.Save(&order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	description := fmt.Sprintf("訂單狀態從 %s 變更為 %s。%s",
		models.OrderStatusLabels[oldStatus], models.OrderStatusLabels[newStatus], notes)
	orderLog := models.OrderLog{
		OrderID:     order.ID,
		Action:      models.OrderLogActionStatusChange,
		Description: description,
		OperatorID:  &user.ID,
	}
	if err := tx.Create(&orderLog).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	order.User = *user
	order.OrderLogs = append(order.OrderLogs, orderLog)

	InvalidateOrderStatistics(ctx, rdb, user.ID)

	return &order, nil
}

// 取消訂單，只有待付款和已付款的訂單可以取消
func CancelOrder(ctx context.Context, db *gorm.DB, rdb *redis.Client, user *models.User, orderID string) (*models.Order, error) {
	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var order models.Order
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", orderID, user.ID).
		First(&order).Error
	if err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.Status != models.OrderStatusPending && order.Status != models.OrderStatusPaid {
		tx.Rollback()
		return nil, &BusinessError{Message: "該訂單狀態不允許取消"}
	}

	order.Status = models.OrderStatusCancelled
	if err := tx.Save(&order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	orderLog := models.OrderLog{
		OrderID:     order.ID,
		Action:      models.OrderLogActionCancel,
		Description: "使用者取消訂單",
		OperatorID:  &user.ID,
	}
	if err := tx.Create(&orderLog).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	order.User = *user
	order.OrderLogs = append(order.OrderLogs, orderLog)

	InvalidateOrderStatistics(ctx, rdb, user.ID)

	return &order, nil
}

type OrderStatistics struct {
	TotalOrders      int64 `json:"total_orders"`
	PendingOrders    int64 `json:"pending_orders"`
	PaidOrders       int64 `json:"paid_orders"`
	ProcessingOrders int64 `json:"processing_orders"`
	ShippedOrders    int64 `json:"shipped_orders"`
	DeliveredOrders  int64 `json:"delivered_orders"`
	CancelledOrders  int64 `json:"cancelled_orders"`
	RefundedOrders   int64 `json:"refunded_orders"`
}

func statisticsCacheKey(userID uint) string {
	return fmt.Sprintf("order_stats:%d", userID)
}

// 查詢使用者的訂單統計，嘗試從Redis讀取，失敗則查詢資料庫並寫回Redis
func GetOrderStatistics(ctx context.Context, db *gorm.DB, rdb *redis.Client, userID uint) (OrderStatistics, error) {
	var stats OrderStatistics

	cached, err := rdb.Get(ctx, statisticsCacheKey(userID)).Result()
	if err == nil {
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return stats, nil
		}
	}

	var rows []struct {
		Status string
		Count  int64
	}
	err = db.Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return stats, err
	}

	for _, row := range rows {
		stats.TotalOrders += row.Count
		switch row.Status {
		case models.OrderStatusPending:
			stats.PendingOrders = row.Count
		case models.OrderStatusPaid:
			stats.PaidOrders = row.Count
		case models.OrderStatusProcessing:
			stats.ProcessingOrders = row.Count
		case models.OrderStatusShipped:
			stats.ShippedOrders = row.Count
		case models.OrderStatusDelivered:
			stats.DeliveredOrders = row.Count
		case models.OrderStatusCancelled:
			stats.CancelledOrders = row.Count
		case models.OrderStatusRefunded:
			stats.RefundedOrders = row.Count
		}
	}

	statsJSON, err := json.Marshal(stats)
	if err == nil {
		if err := rdb.Set(ctx, statisticsCacheKey(userID), statsJSON, statisticsCacheTTL).Err(); err != nil {
			log.Printf("無法將訂單統計寫入Redis: %v", err)
		}
	}

	return stats, nil
}

// 清除訂單統計快取，Redis失敗不影響請求
func InvalidateOrderStatistics(ctx context.Context, rdb *redis.Client, userID uint) {
	if err := rdb.Del(ctx, statisticsCacheKey(userID)).Err(); err != nil {
		log.Printf("無法清除訂單統計快取: %v", err)
	}
}

// 查詢訂單操作紀錄，由新到舊
func GetOrderLogs(db *gorm.DB, userID uint, orderID string) ([]models.OrderLog, error) {
	var order models.Order
	err := db.Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	var logs []models.OrderLog
	err = db.
		Where("order_id = ?", order.ID).
		Preload("Operator").
		Order("created_at DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}

	return logs, nil
}
