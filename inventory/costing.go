// Package inventory allocates sold quantities across stock lots and prices the result.
//
// Allocation is FIFO: lots are consumed in the order they were handed to NewPool,
// which callers must provide sorted by intake time ascending.
package inventory

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"shop-management-backend/utils"
)

// ErrInsufficientStock is matched by every *InsufficientStockError.
var ErrInsufficientStock = errors.New("insufficient stock")

type InsufficientStockError struct {
	ProductID string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (available: %s, requested: %s)",
		e.ProductID, e.Available.String(), e.Requested.String())
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

type Lot struct {
	ID        string
	Remaining decimal.Decimal
	UnitCost  decimal.Decimal
}

// Consumption is the part of one lot taken by a sale line.
type Consumption struct {
	LotID    string          `json:"lot_id"`
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// Allocation is the costed result of one sale line.
type Allocation struct {
	Consumptions []Consumption
	Quantity     decimal.Decimal
	Revenue      decimal.Decimal
	Profit       decimal.Decimal
	Loss         decimal.Decimal
	Investment   decimal.Decimal
}

// Pool is the remaining stock of one product. Take mutates it, so several lines
// selling the same product see each other's consumption.
type Pool struct {
	productID string
	lots      []Lot
}

func NewPool(productID string, lots []Lot) *Pool {
	cp := make([]Lot, 0, len(lots))
	for _, l := range lots {
		if l.Remaining.IsPositive() {
			cp = append(cp, l)
		}
	}
	return &Pool{productID: productID, lots: cp}
}

// Available is the total remaining quantity across lots.
func (p *Pool) Available() decimal.Decimal {
	total := decimal.Zero
	for _, l := range p.lots {
		total = total.Add(l.Remaining)
	}
	return total
}

// Lots returns a copy of the lots still holding stock.
func (p *Pool) Lots() []Lot {
	out := make([]Lot, 0, len(p.lots))
	for _, l := range p.lots {
		if l.Remaining.IsPositive() {
			out = append(out, l)
		}
	}
	return out
}

// Take allocates qty units sold at price, oldest lot first. The pool is left
// untouched when it cannot cover qty.
func (p *Pool) Take(qty, price decimal.Decimal) (Allocation, error) {
	if !qty.IsPositive() {
		return Allocation{}, fmt.Errorf("quantity must be positive, got %s", qty.String())
	}
	if available := p.Available(); available.LessThan(qty) {
		return Allocation{}, &InsufficientStockError{ProductID: p.productID, Requested: qty, Available: available}
	}

	alloc := Allocation{Quantity: qty}
	profit, loss, investment := decimal.Zero, decimal.Zero, decimal.Zero
	remaining := qty
	for i := range p.lots {
		if remaining.IsZero() {
			break
		}
		lot := &p.lots[i]
		if !lot.Remaining.IsPositive() {
			continue
		}
		take := utils.MinDecimal(remaining, lot.Remaining)

		diff := price.Sub(lot.UnitCost)
		if diff.IsNegative() {
			loss = loss.Add(diff.Neg().Mul(take))
		} else {
			profit = profit.Add(diff.Mul(take))
		}
		investment = investment.Add(lot.UnitCost.Mul(take))

		lot.Remaining = lot.Remaining.Sub(take)
		remaining = remaining.Sub(take)
		alloc.Consumptions = append(alloc.Consumptions, Consumption{LotID: lot.ID, Quantity: take, UnitCost: lot.UnitCost})
	}

	alloc.Revenue = utils.Round2(qty.Mul(price))
	alloc.Profit = utils.Round2(profit)
	alloc.Loss = utils.Round2(loss)
	alloc.Investment = utils.Round2(investment)
	return alloc, nil
}

// Totals aggregates the allocations of a whole sale.
type Totals struct {
	Units      decimal.Decimal
	Bill       decimal.Decimal
	Profit     decimal.Decimal
	Loss       decimal.Decimal
	Investment decimal.Decimal
}

func Sum(allocs []Allocation) Totals {
	t := Totals{Units: decimal.Zero, Bill: decimal.Zero, Profit: decimal.Zero, Loss: decimal.Zero, Investment: decimal.Zero}
	for _, a := range allocs {
		t.Units = t.Units.Add(a.Quantity)
		t.Bill = t.Bill.Add(a.Revenue)
		t.Profit = t.Profit.Add(a.Profit)
		t.Loss = t.Loss.Add(a.Loss)
		t.Investment = t.Investment.Add(a.Investment)
	}
	return t
}
