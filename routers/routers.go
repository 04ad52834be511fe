package routers

import (
	"MallBackend/config"
	"MallBackend/handlers"
	"MallBackend/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func SetupRouters(db *gorm.DB, rdb *redis.Client, cfg config.Config) *gin.Engine {
	//建立Gin路由器
	router := gin.Default()
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Next()
	})
	err := router.SetTrustedProxies(nil)
	if err != nil {
		return nil
	}

	router.OPTIONS("/*path", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	secret := cfg.Server.TokenSecret
	expireHours := cfg.Server.TokenExpireHours

	//使用中間件驗證Token並寫入使用者資訊
	router.Use(middleware.AuthMiddleware(db, secret))

	auth := router.Group("/auth")
	{
		//註冊帳號
		auth.POST("/register/", func(c *gin.Context) {
			handlers.RegisterHandler(c, db, secret, expireHours)
		})
		//登入帳號
		auth.POST("/login/", func(c *gin.Context) {
			handlers.LoginHandler(c, db, secret, expireHours)
		})

		////需要登入，使用中間件檢查是否登入
		loginRequired := auth.Group("")
		loginRequired.Use(middleware.CheckLoginMiddleware())
		{
			//登出
			loginRequired.POST("/logout/", func(c *gin.Context) {
				handlers.LogoutHandler(c, db)
			})
			//查詢使用者資料
			loginRequired.GET("/profile/", func(c *gin.Context) {
				handlers.GetProfileHandler(c, db)
			})
			//修改使用者資料
			loginRequired.PUT("/profile/", func(c *gin.Context) {
				handlers.UpdateProfileHandler(c, db)
			})
		}
	}

	////需要登入，使用中間件檢查是否登入
	orders := router.Group("/orders")
	orders.Use(middleware.CheckLoginMiddleware())
	{
		//送出訂單
		orders.POST("/", func(c *gin.Context) {
			handlers.CreateOrderHandler(c, db, rdb)
		})
		//查詢訂單列表
		orders.GET("/", func(c *gin.Context) {
			handlers.GetOrderListHandler(c, db)
		})
		//查詢訂單統計
		orders.GET("/statistics/", func(c *gin.Context) {
			handlers.GetOrderStatisticsHandler(c, db, rdb)
		})
		//查詢訂單詳細資訊
		orders.GET("/:orderID/", func(c *gin.Context) {
			handlers.GetOrderDataHandler(c, db)
		})
		//更新訂單狀態
		orders.PATCH("/:orderID/update_status/", func(c *gin.Context) {
			handlers.UpdateOrderStatusHandler(c, db, rdb)
		})
		//取消訂單
		orders.POST("/:orderID/cancel/", func(c *gin.Context) {
			handlers.CancelOrderHandler(c, db, rdb)
		})
		//查詢訂單操作紀錄
		orders.GET("/:orderID/logs/", func(c *gin.Context) {
			handlers.GetOrderLogsHandler(c, db)
		})
	}

	return router
}
