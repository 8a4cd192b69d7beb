package models

type Note struct {
	Base
	ShopOwnerID string `json:"-" gorm:"type:varchar(36);not null;index"`
	Title       string `json:"title" gorm:"not null"`
	Body        string `json:"body"`
}
