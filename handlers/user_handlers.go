package handlers

import (
	"MallBackend/models"
	"MallBackend/services"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func userData(user *models.User) gin.H {
	return gin.H{
		"id":          user.ID,
		"username":    user.Username,
		"email":       user.Email,
		"first_name":  user.FirstName,
		"last_name":   user.LastName,
		"phone":       user.Phone,
		"avatar":      user.Avatar,
		"date_joined": user.CreatedAt,
	}
}

// 從Context取得登入使用者，中間件已保證UserID存在
func currentUser(c *gin.Context, db *gorm.DB) (*models.User, bool) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "無法取得使用者ID",
		})
		return nil, false
	}

	user, err := services.GetUserByID(db, userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "無法取得使用者資料",
		})
		return nil, false
	}

	return user, true
}

// 註冊使用者帳戶並發放Token
func RegisterHandler(c *gin.Context, db *gorm.DB, secret string, expireHours int) {
	var registerReq struct {
		Username        string  `json:"username" binding:"required"`
		Email           string  `json:"email" binding:"required"`
		Password        string  `json:"password" binding:"required"`
		PasswordConfirm string  `json:"password_confirm" binding:"required"`
		FirstName       string  `json:"first_name"`
		LastName        string  `json:"last_name"`
		Phone           *string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&registerReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "綁定請求資料錯誤",
			"errors":  gin.H{"detail": err.Error()},
		})
		return
	}

	user, tokenString, err := services.RegisterUser(db, secret, expireHours, services.RegisterInput{
		Username:        registerReq.Username,
		Email:           registerReq.Email,
		Password:        registerReq.Password,
		PasswordConfirm: registerReq.PasswordConfirm,
		FirstName:       registerReq.FirstName,
		LastName:        registerReq.LastName,
		Phone:           registerReq.Phone,
	})
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "註冊失敗",
				"errors":  validationErr.Errors,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "註冊失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "註冊成功",
		"token":   tokenString,
		"user":    userData(user),
	})
}

// 登入帳號，已有未過期Token則沿用
func LoginHandler(c *gin.Context, db *gorm.DB, secret string, expireHours int) {
	var loginReq struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&loginReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "必須提供使用者名稱和密碼",
		})
		return
	}

	user, tokenString, err := services.LoginUser(db, secret, expireHours, loginReq.Username, loginReq.Password)
	if err != nil {
		var businessErr *services.BusinessError
		if errors.As(err, &businessErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": businessErr.Message,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "登入失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "登入成功",
		"token":   tokenString,
		"user":    userData(user),
	})
}

// 登出，Token不存在也回傳成功
func LogoutHandler(c *gin.Context, db *gorm.DB) {
	tokenValue, exists := c.Get("Token")
	if exists {
		if err := services.LogoutUser(db, tokenValue.(string)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "資料庫錯誤",
				"error":   err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "登出成功",
	})
}

// 查詢使用者資料
func GetProfileHandler(c *gin.Context, db *gorm.DB) {
	user, ok := currentUser(c, db)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    userData(user),
	})
}

// 變更使用者資料，未提供的欄位維持原值
func UpdateProfileHandler(c *gin.Context, db *gorm.DB) {
	user, ok := currentUser(c, db)
	if !ok {
		return
	}

	var profileReq struct {
		Email     *string `json:"email"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Phone     *string `json:"phone"`
		Avatar    *string `json:"avatar"`
	}
	if err := c.ShouldBindJSON(&profileReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "綁定請求資料錯誤",
			"errors":  gin.H{"detail": err.Error()},
		})
		return
	}

	err := services.UpdateUserProfile(db, user, services.UpdateProfileInput{
		Email:     profileReq.Email,
		FirstName: profileReq.FirstName,
		LastName:  profileReq.LastName,
		Phone:     profileReq.Phone,
		Avatar:    profileReq.Avatar,
	})
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "修改使用者資料失敗",
				"errors":  validationErr.Errors,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "修改使用者資料失敗",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "成功修改使用者資料",
		"user":    userData(user),
	})
}
