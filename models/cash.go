package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CashIn  = "cashIn"
	CashOut = "cashOut"
)

// CashLedger is created lazily on the first cash event of a shop owner.
type CashLedger struct {
	Base
	ShopOwnerID string          `json:"shop_owner_id" gorm:"type:varchar(36);not null;uniqueIndex"`
	CashBalance decimal.Decimal `json:"cash_balance" gorm:"type:numeric(14,2);not null;default:0"`
}

type CashHistory struct {
	Base
	ShopOwnerID string          `json:"-" gorm:"type:varchar(36);not null;index:idx_cash_histories_owner_date,priority:1"`
	Direction   string          `json:"direction" gorm:"type:varchar(8);not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	Source      string          `json:"source"`
	ReferenceID *string         `json:"reference_id,omitempty" gorm:"type:varchar(36)"`
	Date        time.Time       `json:"date" gorm:"type:date;not null;index:idx_cash_histories_owner_date,priority:2"`
}
