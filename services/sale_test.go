package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-management-backend/inventory"
	"shop-management-backend/models"
)

const owner = "owner-1"

var fixedNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]any{fmt.Sprintf("want %s, got %s", want, got.String())}, msgAndArgs...)...)
}

type fixture struct {
	store      *memStore
	seq        *memSequencer
	dashboards *DashboardService
	cash       *CashService
	ledger     *LedgerService
	sales      *SaleService
	stock      *StockService
}

func newFixture() *fixture {
	now := func() time.Time { return fixedNow }
	f := &fixture{store: newMemStore(), seq: newMemSequencer()}
	f.dashboards = NewDashboardService()
	f.cash = NewCashService(now)
	f.ledger = NewLedgerService(f.cash, f.dashboards, now)
	f.sales = NewSaleService(f.seq, f.ledger, f.dashboards, now)
	f.stock = NewStockService(f.ledger, f.dashboards, now)
	return f
}

// seedTwoLots is product P with lot A (5 @ 10) and lot B (5 @ 14).
func (f *fixture) seedTwoLots() {
	f.store.addProduct(owner, "prod-p", "Rice")
	f.store.addLot(owner, "prod-p", "lot-a", "5", "10", fixedNow.Add(-48*time.Hour))
	f.store.addLot(owner, "prod-p", "lot-b", "5", "14", fixedNow.Add(-24*time.Hour))
}

func sell(qty, price string) SaleLine {
	return SaleLine{ProductID: "prod-p", Quantity: dec(qty), SellingPrice: dec(price)}
}

func TestCreateVoicerFIFOScenario(t *testing.T) {
	f := newFixture()
	f.seedTwoLots()
	f.store.addParty(owner, models.PartyCustomer, "cust-1", "Karim", "0")

	v, err := f.sales.CreateVoicer(context.Background(), f.store, owner, SaleRequest{
		SellingProducts: []SaleLine{sell("8", "20")},
		CustomerID:      "cust-1",
		PaidAmount:      dec("100"),
	})
	require.NoError(t, err)

	assert.Equal(t, "000001", v.InvoiceNumber)
	assertDec(t, "160", v.TotalBillAmount)
	assertDec(t, "68", v.TotalProfit)
	assertDec(t, "0", v.TotalLoss)
	assertDec(t, "92", v.TotalInvestment)
	assertDec(t, "0", v.BeforeDue)
	assertDec(t, "60", v.InvoiceDue)
	assertDec(t, "60", v.RemainingDue)
	require.Len(t, v.Lines, 1)
	assert.Equal(t, "Rice", v.Lines[0].ProductName)
	assert.JSONEq(t,
		`[{"lot_id":"lot-a","quantity":"5","unit_cost":"10"},{"lot_id":"lot-b","quantity":"3","unit_cost":"14"}]`,
		string(v.Lines[0].Allocations))

	assertDec(t, "0", f.store.lot("lot-a").QuantityRemaining)
	assertDec(t, "2", f.store.lot("lot-b").QuantityRemaining)

	p := f.store.products["prod-p"]
	assertDec(t, "2", p.TotalStockAmount)
	assertDec(t, "28", p.TotalInvestment)
	assertDec(t, "68", p.TotalProfit)
	assertDec(t, "8", p.TotalSold)

	c := f.store.party(owner, models.PartyCustomer, "cust-1")
	assertDec(t, "60", c.DueAmount)
	assertDec(t, "160", c.TotalTaken)
	assertDec(t, "100", c.TotalPaid)
	require.Len(t, f.store.dueHistory, 2)
	assert.Equal(t, models.DirectionShopOwnerGive, f.store.dueHistory[0].Direction)
	assertDec(t, "160", f.store.dueHistory[0].Amount)
	assert.Equal(t, models.DirectionShopOwnerReceived, f.store.dueHistory[1].Direction)
	assertDec(t, "100", f.store.dueHistory[1].Amount)

	assertDec(t, "100", f.store.cashOf(owner))
	require.Len(t, f.store.cashLog, 1)
	assert.Equal(t, models.CashIn, f.store.cashLog[0].Direction)
	assert.Equal(t, "Karim", f.store.cashLog[0].Source)
	assert.Equal(t, v.ID, *f.store.cashLog[0].ReferenceID)

	d, err := f.store.FindDashboard(context.Background(), owner, Day(fixedNow))
	require.NoError(t, err)
	assertDec(t, "160", d.TotalSales)
	assertDec(t, "68", d.TotalProfit)
	assertDec(t, "28", d.TotalInvestments)
	assertDec(t, "2", d.TotalProductsOnStock)
	assertDec(t, "8", d.TotalProductsSold)
	assertDec(t, "60", d.TotalDueFromCustomers)
	assert.Equal(t, int64(1), d.TotalInvoices)
	assert.Equal(t, int64(1), d.TotalOrders)
}

func TestCreateVoicerDiscountAndLabour(t *testing.T) {
	f := newFixture()
	f.seedTwoLots()
	f.store.addParty(owner, models.PartyCustomer, "cust-1", "Karim", "40")

	v, err := f.sales.CreateVoicer(context.Background(), f.store, owner, SaleRequest{
		SellingProducts: []SaleLine{sell("8", "20")},
		CustomerID:      "cust-1",
		PaidAmount:      dec("100"),
		DiscountAmount:  dec("10"),
		LabourCost:      dec("5"),
	})
	require.NoError(t, err)

	// 160 - (100 + 10) + 5
	assertDec(t, "55", v.InvoiceDue)
	assertDec(t, "40", v.BeforeDue)
	assertDec(t, "95", v.RemainingDue)

	c := f.store.party(owner, models.PartyCustomer, "cust-1")
	assertDec(t, "95", c.DueAmount)
	assertDec(t, "155", c.TotalTaken)
	assertDec(t, "100", c.TotalPaid)

	receipt := ReceiptFor(v)
	assert.Equal(t, "Karim", receipt.CustomerName)
	assertDec(t, "10", receipt.Discount)
	assertDec(t, "5", receipt.LabourCost)
	assert.Equal(t, "2026-03-10", receipt.Date)
}

func TestCreateVoicerLinesShareLots(t *testing.T) {
	f := newFixture()
	f.seedTwoLots()

	v, err := f.sales.CreateVoicer(context.Background(), f.store, owner, SaleRequest{
		SellingProducts: []SaleLine{sell("5", "20"), sell("4", "12")},
		PaidAmount:      dec("148"),
	})
	require.NoError(t, err)
	require.Len(t, v.Lines, 2)

	assertDec(t, "50", v.Lines[0].Profit)
	// second line comes entirely from lot B at 14
	assertDec(t, "0", v.Lines[1].Profit)
	assertDec(t, "8", v.Lines[1].Loss)
	assertDec(t, "1", f.store.lot("lot-b").QuantityRemaining)

	p := f.store.products["prod-p"]
	assertDec(t, "1", p.TotalStockAmount)
	assertDec(t, "8", p.TotalLoss)
}

func TestCreateVoicerOversellRejected(t *testing.T) {
	f := newFixture()
	f.seedTwoLots()

	_, err := f.sales.CreateVoicer(context.Background(), f.store, owner, SaleRequest{
		SellingProducts: []SaleLine{sell("12", "20")},
		PaidAmount:      dec("240"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, inventory.ErrInsufficientStock))

	var stockErr *inventory.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assertDec(t, "10", stockErr.Available)

	assertDec(t, "5", f.store.lot("lot-a").QuantityRemaining)
	assertDec(t, "5", f.store.lot("lot-b").QuantityRemaining)
	assert.Empty(t, f.store.voicers)
	assert.Empty(t, f.store.dashboards)
	assert.Zero(t, f.seq.counters[owner])
}

func TestCreateVoicerQuickInvoiceMustBePaid(t *testing.T) {
	f := newFixture()
	f.seedTwoLots()

	_, err := f.sales.CreateVoicer(context.Background(), f.store, owner, SaleRequest{
		SellingProducts: []SaleLine{sell("2", "20")},
		PaidAmount:      dec("30"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assertDec(t, "5", f.store.lot("lot-a").QuantityRemaining)
	assert.Zero(t, f.seq.counters[owner])

	v, err := f.sales.CreateVoicer(context.Background(), f.store, owner, SaleRequest{
		SellingProducts: []SaleLine{sell("2", "20")},
		PaidAmount:      dec("40"),
	})
	require.NoError(t, err)
	assert.Nil(t, v.CustomerID)
	assert.Equal(t, "quick invoice", ReceiptFor(v).CustomerName)
	assert.Equal(t, "quick invoice", f.store.cashLog[0].Source)
	assert.Empty(t, f.store.dueHistory)
}

func TestCreateVoicerDiscountCannotExceedBill(t *testing.T) {
	f := newFixture()
	f.seedTwoLots()
	f.store.addParty(owner, models.PartyCustomer, "cust-1", "Karim", "100")

	_, err := f.sales.CreateVoicer(context.Background(), f.store, owner, SaleRequest{
		SellingProducts: []SaleLine{sell("2", "20")},
		CustomerID:      "cust-1",
		DiscountAmount:  dec("90"),
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, "discount_amount", verr.Field)

	assertDec(t, "100", f.store.party(owner, models.PartyCustomer, "cust-1").DueAmount)
	assertDec(t, "5", f.store.lot("lot-a").QuantityRemaining)
	assert.Empty(t, f.store.dueHistory)
	assert.Empty(t, f.store.voicers)
	assert.Zero(t, f.seq.counters[owner])

	// labour counts toward the ceiling
	v, err := f.sales.CreateVoicer(context.Background(), f.store, owner, SaleRequest{
		SellingProducts: []SaleLine{sell("2", "20")},
		CustomerID:      "cust-1",
		DiscountAmount:  dec("45"),
		LabourCost:      dec("5"),
	})
	require.NoError(t, err)
	assertDec(t, "0", v.InvoiceDue)
	assertDec(t, "100", v.RemainingDue)
	assert.Empty(t, f.store.dueHistory)
}

func TestCreateVoicerFreeSaleWritesNoZeroDueRows(t *testing.T) {
	f := newFixture()
	f.seedTwoLots()
	f.store.addParty(owner, models.PartyCustomer, "cust-1", "Karim", "12")

	v, err := f.sales.CreateVoicer(context.Background(), f.store, owner, SaleRequest{
		SellingProducts: []SaleLine{sell("1", "0")},
		CustomerID:      "cust-1",
	})
	require.NoError(t, err)
	assertDec(t, "0", v.TotalBillAmount)
	assertDec(t, "10", v.TotalLoss)
	assertDec(t, "12", v.RemainingDue)
	assert.Empty(t, f.store.dueHistory)
	assert.Empty(t, f.store.cashLog)
	assertDec(t, "12", f.store.party(owner, models.PartyCustomer, "cust-1").DueAmount)
}

func TestCreateVoicerRejectsUnknownReferences(t *testing.T) {
	f := newFixture()
	f.seedTwoLots()

	_, err := f.sales.CreateVoicer(context.Background(), f.store, owner, SaleRequest{
		SellingProducts: []SaleLine{{ProductID: "missing", Quantity: dec("1"), SellingPrice: dec("1")}},
		PaidAmount:      dec("1"),
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "selling_products[0].product_id", verr.Field)

	_, err = f.sales.CreateVoicer(context.Background(), f.store, owner, SaleRequest{
		SellingProducts: []SaleLine{sell("1", "20")},
		CustomerID:      "nobody",
	})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "customer_id", verr.Field)

	// another owner's product is invisible
	_, err = f.sales.CreateVoicer(context.Background(), f.store, "owner-2", SaleRequest{
		SellingProducts: []SaleLine{sell("1", "20")},
		PaidAmount:      dec("20"),
	})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestCreateVoicerLocksProductsInIDOrder(t *testing.T) {
	f := newFixture()
	f.store.addProduct(owner, "prod-b", "Oil")
	f.store.addLot(owner, "prod-b", "lot-b1", "4", "50", fixedNow.Add(-time.Hour))
	f.store.addProduct(owner, "prod-a", "Salt")
	f.store.addLot(owner, "prod-a", "lot-a1", "9", "2", fixedNow.Add(-time.Hour))

	v, err := f.sales.CreateVoicer(context.Background(), f.store, owner, SaleRequest{
		SellingProducts: []SaleLine{
			{ProductID: "prod-b", Quantity: dec("1"), SellingPrice: dec("60")},
			{ProductID: "prod-a", Quantity: dec("3"), SellingPrice: dec("3")},
			{ProductID: "prod-b", Quantity: dec("1"), SellingPrice: dec("60")},
		},
		PaidAmount: dec("129"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"prod-a", "prod-b"}, f.store.lockOrder)

	require.Len(t, v.Lines, 3)
	assert.Equal(t, "prod-b", v.Lines[0].ProductID)
	assert.Equal(t, "Salt", v.Lines[1].ProductName)
	assertDec(t, "129", v.TotalBillAmount)
	assertDec(t, "2", f.store.lot("lot-b1").QuantityRemaining)
}

func TestCreateVoicerRejectsBadInput(t *testing.T) {
	f := newFixture()
	f.seedTwoLots()

	cases := map[string]SaleRequest{
		"no lines":       {},
		"zero quantity":  {SellingProducts: []SaleLine{sell("0", "20")}},
		"negative price": {SellingProducts: []SaleLine{sell("1", "-1")}},
		"negative paid":  {SellingProducts: []SaleLine{sell("1", "20")}, PaidAmount: dec("-5")},
		"bad date":       {SellingProducts: []SaleLine{sell("1", "20")}, PaidAmount: dec("20"), Date: "10/03/2026"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.sales.CreateVoicer(context.Background(), f.store, owner, req)
			assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
		})
	}
	assert.Zero(t, f.seq.counters[owner])
}

func TestCreateVoicerWriteFailureIsTransactionFailed(t *testing.T) {
	f := newFixture()
	f.seedTwoLots()
	f.store.failOn = "ApplyCash"

	_, err := f.sales.CreateVoicer(context.Background(), f.store, owner, SaleRequest{
		SellingProducts: []SaleLine{sell("1", "20")},
		PaidAmount:      dec("20"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransactionFailed))
	assert.True(t, errors.Is(err, errBoom))

	var txErr *TransactionFailedError
	require.True(t, errors.As(err, &txErr))
	assert.Equal(t, "cash", txErr.Step)
	// the number is burnt, never reused
	assert.Equal(t, int64(1), f.seq.counters[owner])
}

func TestCreateVoicerSequencerFailure(t *testing.T) {
	f := newFixture()
	f.seedTwoLots()
	f.seq.err = errors.New("counter unavailable")

	_, err := f.sales.CreateVoicer(context.Background(), f.store, owner, SaleRequest{
		SellingProducts: []SaleLine{sell("1", "20")},
		PaidAmount:      dec("20"),
	})
	assert.True(t, errors.Is(err, ErrTransactionFailed))
	assertDec(t, "5", f.store.lot("lot-a").QuantityRemaining)
}

func TestFindVoicerReturnsStoredReceipt(t *testing.T) {
	f := newFixture()
	f.seedTwoLots()
	f.store.addParty(owner, models.PartyCustomer, "cust-1", "Karim", "0")

	created, err := f.sales.CreateVoicer(context.Background(), f.store, owner, SaleRequest{
		SellingProducts: []SaleLine{sell("3", "20")},
		CustomerID:      "cust-1",
		PaidAmount:      dec("20"),
	})
	require.NoError(t, err)

	found, err := f.store.FindVoicer(context.Background(), owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, ReceiptFor(created), ReceiptFor(found))

	// reading twice changes nothing
	_, err = f.store.FindVoicer(context.Background(), owner, created.ID)
	require.NoError(t, err)
	assertDec(t, "40", f.store.party(owner, models.PartyCustomer, "cust-1").DueAmount)
	assert.Equal(t, int64(1), f.seq.counters[owner])
}

func TestConcurrentSalesGetDistinctNumbers(t *testing.T) {
	f := newFixture()
	f.store.addProduct(owner, "prod-p", "Rice")
	f.store.addLot(owner, "prod-p", "lot-a", "100", "10", fixedNow.Add(-time.Hour))

	const n = 20
	numbers := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := f.sales.CreateVoicer(context.Background(), f.store, owner, SaleRequest{
				SellingProducts: []SaleLine{sell("1", "20")},
				PaidAmount:      dec("20"),
			})
			errs[i] = err
			if err == nil {
				numbers[i] = v.InvoiceNumber
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	sort.Strings(numbers)
	for i, num := range numbers {
		assert.Equal(t, FormatInvoiceNumber(int64(i+1)), num)
	}
	assertDec(t, "80", f.store.lot("lot-a").QuantityRemaining)
	assertDec(t, "400", f.store.cashOf(owner))
}

func TestTwoConcurrentSalesAdvanceCounterByTwo(t *testing.T) {
	f := newFixture()
	f.seedTwoLots()
	f.seq.counters[owner] = 41

	var wg sync.WaitGroup
	got := make(chan string, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := f.sales.CreateVoicer(context.Background(), f.store, owner, SaleRequest{
				SellingProducts: []SaleLine{sell("1", "20")},
				PaidAmount:      dec("20"),
			})
			if assert.NoError(t, err) {
				got <- v.InvoiceNumber
			}
		}()
	}
	wg.Wait()
	close(got)

	var numbers []string
	for num := range got {
		numbers = append(numbers, num)
	}
	sort.Strings(numbers)
	assert.Equal(t, []string{"000042", "000043"}, numbers)
	assert.Equal(t, int64(43), f.seq.counters[owner])
}

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "000001", FormatInvoiceNumber(1))
	assert.Equal(t, "123456", FormatInvoiceNumber(123456))
	assert.Equal(t, "1234567", FormatInvoiceNumber(1234567))
}
