package middleware

import (
	"MallBackend/models"
	"MallBackend/token"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 驗證Authorization標頭的Token，合法則將UserID寫入Context
// Token使用「Token <key>」格式
func AuthMiddleware(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Token ") {
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Token ")
		if tokenString == "" {
			c.Next()
			return
		}

		userID, err := token.ParseToken(secret, tokenString)
		if err != nil {
			log.Printf("無法驗證Token: %v", err)
			c.Next()
			return
		}

		//從資料庫檢查Token是否已登出或過期
		var loginToken models.LoginToken
		err = db.Where("token = ?", tokenString).First(&loginToken).Error
		if err != nil {
			c.Next()
			return
		}
		if loginToken.ExpirationTime.Before(time.Now()) {
			c.Next()
			return
		}

		c.Set("Token", tokenString)
		c.Set("UserID", userID)
		c.Next()
	}
}
