package models

import (
	"golang.org/x/crypto/bcrypt"
)

// ShopOwner is the tenant account; every other row is scoped by its ID.
type ShopOwner struct {
	Base
	Name     string `json:"name" gorm:"not null"`
	ShopName string `json:"shop_name" gorm:"not null"`
	Email    string `json:"email" gorm:"unique;not null"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password []byte `json:"-" gorm:"not null"`
}

func (owner *ShopOwner) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}
	owner.Password = hashedPassword
	return nil
}

func (owner *ShopOwner) ComparePassword(password string) error {
	return bcrypt.CompareHashAndPassword(owner.Password, []byte(password))
}
