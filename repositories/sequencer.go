package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"shop-management-backend/models"
	"shop-management-backend/services"
)

// GormSequencer issues invoice numbers from the invoice_counters table with
// one upsert per number. It must be given its own pool (database.ConnectSequencer),
// not a request transaction, so a rolled back sale never hands its number out
// twice. Sharing the request pool lets sales that hold a connection and lot locks
// wait forever for a second connection.
type GormSequencer struct {
	db *gorm.DB
}

func NewGormSequencer(db *gorm.DB) *GormSequencer { return &GormSequencer{db: db} }

var _ services.InvoiceSequencer = (*GormSequencer)(nil)

const nextInvoiceSQL = `
INSERT INTO invoice_counters (shop_owner_id, last_invoice_number, updated_at)
VALUES (?, 1, NOW())
ON CONFLICT (shop_owner_id) DO UPDATE
SET last_invoice_number = invoice_counters.last_invoice_number + 1,
    updated_at = NOW()
RETURNING last_invoice_number`

func (s *GormSequencer) Next(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Raw(nextInvoiceSQL, ownerID).Scan(&n).Error; err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, errors.New("invoice counter returned no row")
	}
	return n, nil
}

// Current returns the last issued number, 0 when none was issued yet.
func (s *GormSequencer) Current(ctx context.Context, ownerID string) (int64, error) {
	var counter models.InvoiceCounter
	err := s.db.WithContext(ctx).Where("shop_owner_id = ?", ownerID).First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return counter.LastInvoiceNumber, nil
}
