package models

type Supplier struct {
	Base
	ShopOwnerID string `json:"-" gorm:"type:varchar(36);not null;index"`
	Name        string `json:"name" gorm:"not null"`
	CompanyName string `json:"company_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	DueBalance
}

func (s *Supplier) Party() Party {
	return Party{Kind: PartySupplier, ID: s.ID, Name: s.Name, Phone: s.Phone, Address: s.Address, DueBalance: s.DueBalance}
}

// LoneProvider lends money to the shop.
type LoneProvider struct {
	Base
	ShopOwnerID string `json:"-" gorm:"type:varchar(36);not null;index"`
	Name        string `json:"name" gorm:"not null"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	DueBalance
}

func (l *LoneProvider) Party() Party {
	return Party{Kind: PartyLoneProvider, ID: l.ID, Name: l.Name, Phone: l.Phone, Address: l.Address, DueBalance: l.DueBalance}
}
