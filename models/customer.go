package models

type Customer struct {
	Base
	ShopOwnerID string `json:"-" gorm:"type:varchar(36);not null;index"`
	Name        string `json:"name" gorm:"not null"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	DueBalance
}

func (c *Customer) Party() Party {
	return Party{Kind: PartyCustomer, ID: c.ID, Name: c.Name, Phone: c.Phone, Address: c.Address, DueBalance: c.DueBalance}
}
