package services

import (
	"MallBackend/models"
	"MallBackend/token"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// 檢查信箱是否合法
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// 檢查使用者名稱是否重複
func IsUsernameExists(db *gorm.DB, username string) (bool, error) {
	var user models.User
	err := db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// 檢查信箱是否重複
func IsEmailExists(db *gorm.DB, email string) (bool, error) {
	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// 檢查電話是否重複
func IsPhoneExists(db *gorm.DB, phone string) (bool, error) {
	var user models.User
	err := db.Where("phone = ?", phone).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
	FirstName       string
	LastName        string
	Phone           *string
}

// 註冊使用者並發放Token
func RegisterUser(db *gorm.DB, secret string, expireHours int, input RegisterInput) (*models.User, string, error) {
	fieldErrors := map[string]string{}

	if len(input.Password) < 8 {
		fieldErrors["password"] = "密碼長度至少需要8個字元"
	}
	if input.Password != input.PasswordConfirm {
		fieldErrors["password_confirm"] = "密碼和確認密碼不相符"
	}
	if !ValidateEmail(input.Email) {
		fieldErrors["email"] = "不合法的信箱"
	}

	if len(fieldErrors) > 0 {
		return nil, "", &ValidationError{Errors: fieldErrors}
	}

	exists, err := IsUsernameExists(db, input.Username)
	if err != nil {
		return nil, "", err
	}
	if exists {
		fieldErrors["username"] = "該使用者名稱已被使用"
	}

	exists, err = IsEmailExists(db, input.Email)
	if err != nil {
		return nil, "", err
	}
	if exists {
		fieldErrors["email"] = "該信箱已被註冊"
	}

	if input.Phone != nil && *input.Phone != "" {
		exists, err = IsPhoneExists(db, *input.Phone)
		if err != nil {
			return nil, "", err
		}
		if exists {
			fieldErrors["phone"] = "該電話已被註冊"
		}
	}

	if len(fieldErrors) > 0 {
		return nil, "", &ValidationError{Errors: fieldErrors}
	}

	hashedPassword, err := HashPassword(input.Password)
	if err != nil {
		return nil, "", err
	}

	user := models.User{
		Username:  input.Username,
		Email:     input.Email,
		Password:  hashedPassword,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		IsActive:  true,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, "", err
	}

	tokenString, err := issueToken(db, secret, expireHours, user.ID)
	if err != nil {
		return nil, "", err
	}

	return &user, tokenString, nil
}

// 登入並回傳Token，如使用者已有未過期Token則沿用
func LoginUser(db *gorm.DB, secret string, expireHours int, username, password string) (*models.User, string, error) {
	var user models.User
	err := db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, "", &BusinessError{Message: "使用者名稱或密碼錯誤"}
		}
		return nil, "", err
	}

	if !CheckPasswordHash(password, user.Password) {
		return nil, "", &BusinessError{Message: "使用者名稱或密碼錯誤"}
	}

	if !user.IsActive {
		return nil, "", &BusinessError{Message: "使用者帳戶已被停用"}
	}

	var loginToken models.LoginToken
	err = db.Where("user_id = ?", user.ID).First(&loginToken).Error
	if err == nil && loginToken.ExpirationTime.After(time.Now()) {
		return &user, loginToken.Token, nil
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, "", err
	}

	//Token過期或不存在，刪除舊資料後重新發放
	if err == nil {
		if err := db.Delete(&models.LoginToken{}, "user_id = ?", user.ID).Error; err != nil {
			return nil, "", err
		}
	}

	tokenString, err := issueToken(db, secret, expireHours, user.ID)
	if err != nil {
		return nil, "", err
	}

	return &user, tokenString, nil
}

func issueToken(db *gorm.DB, secret string, expireHours int, userID uint) (string, error) {
	expirationTime := time.Now().Add(time.Duration(expireHours) * time.Hour)
	tokenString, err := token.GenerateToken(secret, userID, expirationTime)
	if err != nil {
		return "", err
	}

	loginToken := models.LoginToken{
		Token:          tokenString,
		ExpirationTime: expirationTime,
		UserID:         userID,
	}
	if err := db.Create(&loginToken).Error; err != nil {
		return "", err
	}

	return tokenString, nil
}

// 登出，Token不存在也視為成功
func LogoutUser(db *gorm.DB, tokenString string) error {
	return db.Delete(&models.LoginToken{}, "token = ?", tokenString).Error
}

func GetUserByID(db *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

type UpdateProfileInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Phone     *string
	Avatar    *string
}

// 部分更新使用者資料，未提供的欄位維持原值
func UpdateUserProfile(db *gorm.DB, user *models.User, input UpdateProfileInput) error {
	fieldErrors := map[string]string{}

	if input.Email != nil && *input.Email != user.Email {
		if !ValidateEmail(*input.Email) {
			fieldErrors["email"] = "不合法的信箱"
		} else {
			exists, err := IsEmailExists(db, *input.Email)
			if err != nil {
				return err
			}
			if exists {
				fieldErrors["email"] = "該信箱已被註冊"
			}
		}
	}

	if input.Phone != nil && *input.Phone != "" && (user.Phone == nil || *input.Phone != *user.Phone) {
		exists, err := IsPhoneExists(db, *input.Phone)
		if err != nil {
			return err
		}
		if exists {
			fieldErrors["phone"] = "該電話已被註冊"
		}
	}

	if len(fieldErrors) > 0 {
		return &ValidationError{Errors: fieldErrors}
	}

	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.Avatar != nil {
		user.Avatar = *input.Avatar
	}

	return db.Save(user).Error
}
