package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartyKind names the due-ledger tables that share DueBalance.
type PartyKind string

const (
	PartyCustomer     PartyKind = "customer"
	PartySupplier     PartyKind = "supplier"
	PartyLoneProvider PartyKind = "lone_provider"
)

func (k PartyKind) Valid() bool {
	switch k {
	case PartyCustomer, PartySupplier, PartyLoneProvider:
		return true
	}
	return false
}

// History directions, seen from the shop owner.
const (
	DirectionShopOwnerGive     = "SHOPOWNERGIVE"
	DirectionShopOwnerReceived = "SHOPOWNERRECEIVED"
)

// DueBalance is the money owed between the shop and one party.
type DueBalance struct {
	DueAmount  decimal.Decimal `json:"due_amount" gorm:"type:numeric(14,2);not null;default:0"`
	TotalTaken decimal.Decimal `json:"total_taken" gorm:"type:numeric(14,2);not null;default:0"`
	TotalPaid  decimal.Decimal `json:"total_paid" gorm:"type:numeric(14,2);not null;default:0"`
}

// Party is the kind-independent view of a customer, supplier or lone provider.
type Party struct {
	Kind    PartyKind
	ID      string
	Name    string
	Phone   string
	Address string
	DueBalance
}

// DueHistory is one transition of a party's due ledger.
type DueHistory struct {
	Base
	ShopOwnerID string          `json:"-" gorm:"type:varchar(36);not null;index"`
	PartyKind   PartyKind       `json:"party_kind" gorm:"type:varchar(20);not null;index:idx_due_histories_party,priority:1"`
	PartyID     string          `json:"party_id" gorm:"type:varchar(36);not null;index:idx_due_histories_party,priority:2"`
	Direction   string          `json:"direction" gorm:"type:varchar(20);not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	Method      string          `json:"method"`
	Note        string          `json:"note"`
	VoicerID    *string         `json:"voicer_id,omitempty" gorm:"type:varchar(36)"`
	Date        time.Time       `json:"date" gorm:"type:date;not null"`
}
