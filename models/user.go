package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Username  string  `gorm:"unique;not null"`
	Email     string  `gorm:"unique;not null"`
	Password  string  `gorm:"not null"`
	FirstName string
	LastName  string
	Phone     *string `gorm:"uniqueIndex"`
	Avatar    string
	IsActive  bool `gorm:"default:true"`
	Orders    []Order
}
