package handlers

import (
	"MallBackend/models"
	"MallBackend/services"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func orderItemData(item *models.OrderItem) gin.H {
	return gin.H{
		"id":            item.ID,
		"product_name":  item.ProductName,
		"product_sku":   item.ProductSKU,
		"product_image": item.ProductImage,
		"quantity":      item.Quantity,
		"unit_price":    item.UnitPrice.StringFixed(2),
		"total_price":   item.TotalPrice.StringFixed(2),
	}
}

func orderLogData(orderLog *models.OrderLog) gin.H {
	operatorName := ""
	if orderLog.Operator != nil {
		operatorName = orderLog.Operator.Username
	}
	return gin.H{
		"id":            orderLog.ID,
		"action":        orderLog.Action,
		"description":   orderLog.Description,
		"operator_name": operatorName,
		"created_at":    orderLog.CreatedAt,
	}
}

func orderData(order *models.Order) gin.H {
	items := make([]gin.H, 0, len(order.OrderItems))
	for i := range order.OrderItems {
		items = append(items, orderItemData(&order.OrderItems[i]))
	}

	logs := make([]gin.H, 0, len(order.OrderLogs))
	for i := range order.OrderLogs {
		logs = append(logs, orderLogData(&order.OrderLogs[i]))
	}

	return gin.H{
		"id":               order.ID,
		"order_number":     order.OrderNumber,
		"status":           order.Status,
		"status_display":   order.StatusLabel(),
		"user":             order.UserID,
		"user_name":        order.User.Username,
		"receiver_name":    order.ReceiverName,
		"receiver_phone":   order.ReceiverPhone,
		"receiver_address": order.ReceiverAddress,
		"total_amount":     order.TotalAmount.StringFixed(2),
		"discount_amount":  order.DiscountAmount.StringFixed(2),
		"shipping_fee":     order.ShippingFee.StringFixed(2),
		"final_amount":     order.FinalAmount.StringFixed(2),
		"notes":            order.Notes,
		"created_at":       order.CreatedAt,
		"updated_at":       order.UpdatedAt,
		"paid_at":          order.PaidAt,
		"shipped_at":       order.ShippedAt,
		"delivered_at":     order.DeliveredAt,
		"items":            items,
		"logs":             logs,
	}
}

// 建立訂單，訂單、商品和操作紀錄一併寫入
func CreateOrderHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	user, ok := currentUser(c, db)
	if !ok {
		return
	}

	var orderReq struct {
		ReceiverName    string `json:"receiver_name" binding:"required"`
		ReceiverPhone   string `json:"receiver_phone" binding:"required"`
		ReceiverAddress string `json:"receiver_address" binding:"required"`
		Notes           string `json:"notes"`
		Items           []struct {
			ProductName  string          `json:"product_name" binding:"required"`
			ProductSKU   string          `json:"product_sku"`
			ProductImage string          `json:"product_image"`
			Quantity     uint            `json:"quantity" binding:"required,gt=0"`
			UnitPrice    decimal.Decimal `json:"unit_price"`
		} `json:"items"`
	}
	if err := c.ShouldBindJSON(&orderReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "訂單建立失敗",
			"errors":  gin.H{"detail": err.Error()},
		})
		return
	}

	items := make([]services.OrderItemInput, 0, len(orderReq.Items))
	for _, item := range orderReq.Items {
		items = append(items, services.OrderItemInput{
			ProductName:  item.ProductName,
			ProductSKU:   item.ProductSKU,
			ProductImage: item.ProductImage,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
		})
	}

	order, err := services.CreateOrder(c, db, rdb, user, services.CreateOrderInput{
		ReceiverName:    orderReq.ReceiverName,
		ReceiverPhone:   orderReq.ReceiverPhone,
		ReceiverAddress: orderReq.ReceiverAddress,
		Notes:           orderReq.Notes,
		Items:           items,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "訂單建立失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "訂單建立成功",
		"data":    orderData(order),
	})
}

// 查詢訂單列表，支援狀態、日期區間和訂單編號篩選
func GetOrderListHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "無法取得使用者ID",
		})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	filter := services.OrderListFilter{
		Status:      c.Query("status"),
		StartDate:   c.Query("start_date"),
		EndDate:     c.Query("end_date"),
		OrderNumber: c.Query("order_number"),
		Page:        page,
		PageSize:    pageSize,
	}
	filter.Normalize()

	orders, count, err := services.ListOrders(db, userID.(uint), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "查詢訂單列表失敗",
			"error":   err.Error(),
		})
		return
	}

	orderList := make([]gin.H, 0, len(orders))
	for i := range orders {
		orderList = append(orderList, orderData(&orders[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      orderList,
		"count":     count,
		"page":      filter.Page,
		"page_size": filter.PageSize,
	})
}

// 查詢訂單詳細資訊
func GetOrderDataHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "無法取得使用者ID",
		})
		return
	}

	order, err := services.GetOrder(db, userID.(uint), c.Param("orderID"))
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "訂單不存在",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "查詢訂單失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orderData(order),
	})
}

// 更新訂單狀態
func UpdateOrderStatusHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	user, ok := currentUser(c, db)
	if !ok {
		return
	}

	var statusReq struct {
		Status string `json:"status" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&statusReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "訂單狀態更新失敗",
			"errors":  gin.H{"status": "必須提供訂單狀態"},
		})
		return
	}

	order, err := services.UpdateOrderStatus(c, db, rdb, user, c.Param("orderID"), statusReq.Status, statusReq.Notes)
	if err != nil {
		var validationErr *services.ValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "訂單狀態更新失敗",
				"errors":  validationErr.Errors,
			})
		case errors.Is(err, services.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "訂單不存在",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "訂單狀態更新失敗",
				"error":   err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "訂單狀態更新成功",
		"data":    orderData(order),
	})
}

// 取消訂單，只有待付款和已付款的訂單可以取消
func CancelOrderHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	user, ok := currentUser(c, db)
	if !ok {
		return
	}

	order, err := services.CancelOrder(c, db, rdb, user, c.Param("orderID"))
	if err != nil {
		var businessErr *services.BusinessError
		switch {
		case errors.As(err, &businessErr):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": businessErr.Message,
			})
		case errors.Is(err, services.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "訂單不存在",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "取消訂單失敗",
				"error":   err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "訂單取消成功",
		"data":    orderData(order),
	})
}

// 查詢訂單統計
func GetOrderStatisticsHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "無法取得使用者ID",
		})
		return
	}

	stats, err := services.GetOrderStatistics(c, db, rdb, userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "查詢訂單統計失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

// 查詢訂單操作紀錄
func GetOrderLogsHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "無法取得使用者ID",
		})
		return
	}

	logs, err := services.GetOrderLogs(db, userID.(uint), c.Param("orderID"))
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "訂單不存在",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "查詢訂單紀錄失敗",
			"error":   err.Error(),
		})
		return
	}

	logList := make([]gin.H, 0, len(logs))
	for i := range logs {
		logList = append(logList, orderLogData(&logs[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    logList,
	})
}
