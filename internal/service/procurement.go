package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"restopos/backend/internal/domain"
	"restopos/backend/internal/store"
	"restopos/backend/internal/units"
	"restopos/backend/internal/xid"
)

func (s *Service) CreateSupplier(ctx context.Context, req domain.SupplierCreateRequest) (domain.Supplier, error) {
	if _, err := requirePermission(ctx, domain.PermManageSuppliers); err != nil {
		return domain.Supplier{}, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Supplier{}, store.ErrInvalidInput
	}

	saved, err := s.repo.CreateSupplier(ctx, domain.Supplier{
		ID:            xid.New("sup"),
		Name:          req.Name,
		Address:       strings.TrimSpace(req.Address),
		ContactNumber: strings.TrimSpace(req.ContactNumber),
		Email:         strings.TrimSpace(req.Email),
		CreatedAt:     s.now(),
	})
	if err != nil {
		return domain.Supplier{}, err
	}

	s.logAudit(ctx, "supplier_create", "supplier", saved.ID, fmt.Sprintf("name=%s", saved.Name))
	return *saved, nil
}

func (s *Service) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

// ReceiveSupplierBill records a purchase and adds its quantities to stock.
// Purchase units are converted into each item's stored unit; the whole bill
// is rejected if any line cannot be.
func (s *Service) ReceiveSupplierBill(ctx context.Context, req domain.SupplierBillRequest) (domain.SupplierBill, error) {
	if _, err := requirePermission(ctx, domain.PermManageSuppliers); err != nil {
		return domain.SupplierBill{}, err
	}

	req.SupplierID = strings.TrimSpace(req.SupplierID)
	req.PaymentMethod = strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if req.SupplierID == "" || len(req.Items) == 0 {
		return domain.SupplierBill{}, fmt.Errorf("%w: supplier and items are required", store.ErrInvalidInput)
	}
	if _, err := s.repo.GetSupplier(ctx, req.SupplierID); err != nil {
		return domain.SupplierBill{}, err
	}

	ids := make([]string, 0, len(req.Items))
	for _, it := range req.Items {
		ids = append(ids, strings.TrimSpace(it.InventoryItemID))
	}
	stock, err := s.repo.GetInventoryItemsByIDs(ctx, ids)
	if err != nil {
		return domain.SupplierBill{}, err
	}

	grandTotal := decimal.Zero
	items := make([]domain.SupplierBillItem, 0, len(req.Items))
	receipts := make([]store.StockReceipt, 0, len(req.Items))
	for _, it := range req.Items {
		it.InventoryItemID = strings.TrimSpace(it.InventoryItemID)
		inv, ok := stock[it.InventoryItemID]
		if !ok {
			return domain.SupplierBill{}, fmt.Errorf("%w: inventory item %s", store.ErrNotFound, it.InventoryItemID)
		}
		if !positiveFinite(it.Quantity) || !nonNegativeFinite(it.TotalAmount) || !nonNegativeFinite(it.Rate) {
			return domain.SupplierBill{}, fmt.Errorf("%w: invalid quantity or amount for %s", store.ErrInvalidInput, inv.Name)
		}
		if it.Unit == "" {
			it.Unit = inv.Unit
		}
		added, err := units.Convert(it.Quantity, it.Unit, inv.Unit)
		if err != nil {
			return domain.SupplierBill{}, fmt.Errorf("%w: %s: %v", store.ErrInvalidInput, inv.Name, err)
		}
		items = append(items, it)
		receipts = append(receipts, store.StockReceipt{
			InventoryItemID: it.InventoryItemID,
			Quantity:        added,
			TotalAmount:     it.TotalAmount,
		})
		grandTotal = grandTotal.Add(decimal.NewFromFloat(it.TotalAmount))
	}

	cash, credit, err := splitPayment(req.PaymentMethod, grandTotal, req.CashAmount, req.CreditAmount)
	if err != nil {
		return domain.SupplierBill{}, err
	}

	var paymentDate *time.Time
	if d := strings.TrimSpace(req.PaymentDate); d != "" {
		parsed, err := time.ParseInLocation("2006-01-02", d, s.days.Location())
		if err != nil {
			return domain.SupplierBill{}, fmt.Errorf("%w: invalid payment date", store.ErrInvalidInput)
		}
		paymentDate = &parsed
	}

	saved, err := s.repo.ReceiveSupplierBill(ctx, domain.SupplierBill{
		ID:            xid.New("bill"),
		SupplierID:    req.SupplierID,
		PaymentMethod: req.PaymentMethod,
		BillID:        strings.TrimSpace(req.BillID),
		PaymentDate:   paymentDate,
		Remarks:       strings.TrimSpace(req.Remarks),
		GrandTotal:    grandTotal.InexactFloat64(),
		CashAmount:    cash,
		CreditAmount:  credit,
		Items:         items,
		CreatedBy:     actorName(ctx),
		CreatedAt:     s.now(),
	}, receipts)
	if err != nil {
		return domain.SupplierBill{}, err
	}

	s.logAudit(ctx, "supplier_bill_receive", "supplier_bill", saved.ID, fmt.Sprintf("supplier=%s,items=%d,total=%s", saved.SupplierID, len(saved.Items), grandTotal.StringFixed(2)))
	return *saved, nil
}

func (s *Service) ListSupplierBills(ctx context.Context, filter domain.SupplierBillFilter, limit int) ([]domain.SupplierBill, error) {
	if _, err := requirePermission(ctx, domain.PermManageSuppliers); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 100
	}
	return s.repo.ListSupplierBills(ctx, filter, limit)
}

// splitPayment divides a bill between cash and credit. The declared side of
// the payment method must be provided and cannot exceed the grand total; the
// other side is the remainder.
func splitPayment(method string, grandTotal decimal.Decimal, cashAmount float64, creditAmount float64) (float64, float64, error) {
	var declared float64
	switch method {
	case domain.PaymentMethodCash:
		declared = cashAmount
	case domain.PaymentMethodCredit:
		declared = creditAmount
	default:
		return 0, 0, fmt.Errorf("%w: payment method must be cash or credit", store.ErrInvalidInput)
	}
	if !nonNegativeFinite(declared) {
		return 0, 0, fmt.Errorf("%w: %s amount is required", store.ErrInvalidInput, method)
	}
	paid := decimal.NewFromFloat(declared)
	if paid.GreaterThan(grandTotal) {
		return 0, 0, fmt.Errorf("%w: %s amount exceeds grand total", store.ErrInvalidInput, method)
	}
	rest := grandTotal.Sub(paid).InexactFloat64()
	if method == domain.PaymentMethodCash {
		return declared, rest, nil
	}
	return rest, declared, nil
}

func positiveFinite(v float64) bool {
	return nonNegativeFinite(v) && v > 0
}

func nonNegativeFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
