package services

import "errors"

// 欄位驗證錯誤，Errors的Key為欄位名稱
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	return "驗證錯誤"
}

// 業務規則錯誤，回傳給使用者的訊息
type BusinessError struct {
	Message string
}

func (e *BusinessError) Error() string {
	return e.Message
}

// 訂單不存在或不屬於目前使用者時一律回傳此錯誤，避免洩漏訂單是否存在
var ErrOrderNotFound = errors.New("訂單不存在")
