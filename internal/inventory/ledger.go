package inventory

import (
	"context"
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"restopos/backend/internal/domain"
	"restopos/backend/internal/recipe"
	"restopos/backend/internal/units"
)

// Decrementer is the storage contract the ledger needs. CompareAndDecrement
// must subtract amount only while the stored quantity is at least amount, as
// one indivisible step, and report ok=false without touching stock otherwise.
type Decrementer interface {
	CompareAndDecrement(ctx context.Context, inventoryItemID string, amount float64) (before float64, after float64, ok bool, err error)
}

type Decrement struct {
	Success   bool
	BeforeQty float64
	AfterQty  float64
}

type Ledger struct {
	store Decrementer
}

func NewLedger(store Decrementer) *Ledger {
	return &Ledger{store: store}
}

func (l *Ledger) TryDecrement(ctx context.Context, inventoryItemID string, needed float64) (Decrement, error) {
	if !finite(needed) || needed <= 0 {
		return Decrement{}, errors.New("decrement amount must be positive")
	}
	before, after, ok, err := l.store.CompareAndDecrement(ctx, inventoryItemID, needed)
	if err != nil {
		return Decrement{}, err
	}
	if !ok {
		return Decrement{Success: false}, nil
	}
	return Decrement{Success: true, BeforeQty: before, AfterQty: after}, nil
}

// Settle normalises the raw requirements for one inventory item into its
// stored unit and applies them as a single decrement. The returned entry
// always describes the outcome; storage errors are folded into it.
func (l *Ledger) Settle(ctx context.Context, item *domain.InventoryItem, inventoryItemID string, reqs []recipe.Quantity) domain.ConsumptionEntry {
	entry := domain.ConsumptionEntry{InventoryItemID: inventoryItemID}
	if item == nil {
		return skip(entry, domain.ReasonNotFound)
	}
	entry.InventoryName = item.Name
	entry.InventoryUnit = item.Unit
	if !finite(item.Quantity) || item.Quantity < 0 {
		return skip(entry, domain.ReasonInvalidStockQty)
	}

	total, err := Normalize(reqs, item.Unit)
	entry.RequiredQty = total
	if err != nil {
		return skip(entry, domain.ReasonUnitMismatch)
	}
	if !finite(total) || total <= 0 {
		return skip(entry, domain.ReasonInvalidRequiredQty)
	}

	dec, err := l.TryDecrement(ctx, inventoryItemID, total)
	if err != nil {
		return skip(entry, domain.ReasonDecrementFailed)
	}
	if !dec.Success {
		return skip(entry, domain.ReasonInsufficientStock)
	}
	before, after := dec.BeforeQty, dec.AfterQty
	entry.DeductedQty = total
	entry.BeforeQty = &before
	entry.AfterQty = &after
	entry.Reason = domain.ReasonDeducted
	return entry
}

// Normalize converts every requirement into target and sums them. Any
// incompatible unit fails the whole set; the returned total is then the sum
// of the requirements converted before the first incompatible one.
func Normalize(reqs []recipe.Quantity, target domain.Unit) (float64, error) {
	total := 0.0
	for _, r := range reqs {
		q, err := units.Convert(r.Qty, r.Unit, target)
		if err != nil {
			return total, err
		}
		total += q
	}
	return total, nil
}

// WeightedUnitPrice blends the current stock value with a purchase. When the
// combined quantity is not positive the purchase price per unit wins.
func WeightedUnitPrice(oldQty, oldPrice, addedQty, totalAmount float64) float64 {
	if !finite(oldQty) {
		oldQty = 0
	}
	if !finite(oldPrice) {
		oldPrice = 0
	}
	if !finite(addedQty) || !finite(totalAmount) {
		return oldPrice
	}
	prevQty := decimal.NewFromFloat(oldQty)
	if prevQty.IsNegative() {
		prevQty = decimal.Zero
	}
	added := decimal.NewFromFloat(addedQty)
	amount := decimal.NewFromFloat(totalAmount)

	combined := prevQty.Add(added)
	if !combined.IsPositive() {
		if !added.IsPositive() {
			return oldPrice
		}
		return amount.Div(added).InexactFloat64()
	}
	value := prevQty.Mul(decimal.NewFromFloat(oldPrice)).Add(amount)
	return value.Div(combined).InexactFloat64()
}

func skip(entry domain.ConsumptionEntry, reason domain.SkipReason) domain.ConsumptionEntry {
	entry.Skipped = true
	entry.Reason = reason
	entry.DeductedQty = 0
	return entry
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
