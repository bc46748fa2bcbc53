package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"

	"restopos/backend/internal/businessday"
	"restopos/backend/internal/cache"
	"restopos/backend/internal/domain"
	"restopos/backend/internal/store"
	"restopos/backend/internal/store/memory"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Publish(_ context.Context, event string, _ any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func newTestService(t *testing.T) (*Service, *memory.Store, *recordingNotifier) {
	t.Helper()
	repo := memory.NewSeeded(nil)
	days, err := businessday.New("Asia/Karachi", 8)
	if err != nil {
		t.Fatalf("business day resolver: %v", err)
	}
	notifier := &recordingNotifier{}
	logger, _ := logtest.NewNullLogger()
	return New(repo, cache.NoopMenuCache{}, time.Minute, notifier, days, logger), repo, notifier
}

func adminCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "admin", Role: domain.RoleAdmin})
}

func staffCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "staff", Role: domain.RoleStaff})
}

func stock(t *testing.T, repo *memory.Store, id string) domain.InventoryItem {
	t.Helper()
	items, err := repo.GetInventoryItemsByIDs(context.Background(), []string{id})
	if err != nil {
		t.Fatalf("load inventory: %v", err)
	}
	return items[id]
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCreateOrderExpandsDealAndTotals(t *testing.T) {
	svc, _, notifier := newTestService(t)

	order, err := svc.CreateOrder(staffCtx(), domain.OrderCreateRequest{
		TableNumber:     "T4",
		ApplyTax:        true,
		TaxPercent:      16,
		ApplyDiscount:   true,
		DiscountPercent: 45,
		Items: []domain.OrderLineRequest{
			{MenuItemID: "menu-combo", Qty: 2, DealSelection: []domain.DealSelection{{CategoryID: "drinks", Items: []string{"menu-cola"}}}},
			{MenuItemID: "menu-paratha"},
			{MenuItemID: "menu-unknown", Qty: 1},
		},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if len(order.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(order.Lines))
	}
	deal := order.Lines[0]
	if !deal.Composite || len(deal.Components) != 3 {
		t.Fatalf("expected deal with 3 components, got %+v", deal)
	}
	if deal.Components[2].MenuItemID != "menu-cola" || deal.Components[2].Qty != 1 {
		t.Fatalf("expected selected cola as last component, got %+v", deal.Components[2])
	}
	if order.Lines[1].Qty != 1 {
		t.Fatalf("expected default qty 1, got %d", order.Lines[1].Qty)
	}

	// 2*950 + 80 = 1980; discount clamps to 30% = 594; tax 16% = 316.8 -> 317
	if order.Subtotal != 1980 || order.Discount != 594 || order.Tax != 317 || order.Total != 1703 {
		t.Fatalf("unexpected totals %+v", order)
	}
	if order.DiscountPercent != 30 {
		t.Fatalf("expected discount percent clamped to 30, got %v", order.DiscountPercent)
	}
	if order.Number != 1 || order.Status != domain.OrderStatusPending {
		t.Fatalf("unexpected number/status %d/%s", order.Number, order.Status)
	}
	if len(notifier.events) != 1 || notifier.events[0] != "order:new" {
		t.Fatalf("expected order:new event, got %v", notifier.events)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateOrder(staffCtx(), domain.OrderCreateRequest{})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty order, got %v", err)
	}
	_, err = svc.CreateOrder(staffCtx(), domain.OrderCreateRequest{
		OrderType:    "delivery",
		DeliveryMode: "self",
		Items:        []domain.OrderLineRequest{{MenuItemID: "menu-fries", Qty: 1}},
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected phone requirement for self delivery, got %v", err)
	}
	_, err = svc.CreateOrder(staffCtx(), domain.OrderCreateRequest{
		Items: []domain.OrderLineRequest{{MenuItemID: "menu-nope", Qty: 1}},
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected invalid input when nothing is orderable, got %v", err)
	}
}

func TestDoneConsumesInventoryOnce(t *testing.T) {
	svc, repo, notifier := newTestService(t)
	ctx := staffCtx()

	order, err := svc.CreateOrder(ctx, domain.OrderCreateRequest{
		Items: []domain.OrderLineRequest{
			{MenuItemID: "menu-combo", Qty: 1, DealSelection: []domain.DealSelection{{Items: []string{"menu-cola"}}}},
		},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	resp, err := svc.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusRequest{Status: "DONE"})
	if err != nil {
		t.Fatalf("status update failed: %v", err)
	}
	if resp.Consumption == nil || !resp.Consumption.Triggered || resp.Consumption.Updated != 5 || resp.Consumption.Skipped != 0 {
		t.Fatalf("unexpected consumption outcome %+v", resp.Consumption)
	}
	if !resp.Order.InventoryDeducted || resp.Order.EndTime == nil {
		t.Fatalf("expected order flagged deducted with end time, got %+v", resp.Order)
	}

	// 20 ml (burger) + 50 ml (fries) from 20 l
	if got := stock(t, repo, "inv-oil").Quantity; !approx(got, 19.93) {
		t.Fatalf("expected 19.93 l oil, got %v", got)
	}
	if got := stock(t, repo, "inv-potato").Quantity; !approx(got, 24.75) {
		t.Fatalf("expected 24.75 kg potato, got %v", got)
	}
	if got := stock(t, repo, "inv-cola").Quantity; got != 7940 {
		t.Fatalf("expected 7940 ml cola, got %v", got)
	}

	for _, status := range []string{"DONE", "IN_PROGRESS", "DONE"} {
		again, err := svc.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusRequest{Status: domain.OrderStatus(status)})
		if err != nil {
			t.Fatalf("status %s failed: %v", status, err)
		}
		if again.Consumption != nil {
			t.Fatalf("status %s must not consume again, got %+v", status, again.Consumption)
		}
	}
	if got := stock(t, repo, "inv-bun").Quantity; got != 119 {
		t.Fatalf("expected exactly one bun consumed, got %v", got)
	}

	record, err := svc.GetConsumptionRecord(ctx, order.ID)
	if err != nil {
		t.Fatalf("expected consumption record: %v", err)
	}
	if record.Summary.Updated != 5 || record.CreatedBy != "staff" {
		t.Fatalf("unexpected record %+v", record)
	}
	if notifier.events[len(notifier.events)-1] != "order:update" {
		t.Fatalf("expected order:update events, got %v", notifier.events)
	}
}

func TestConcurrentDoneConsumesOnce(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := staffCtx()

	order, err := svc.CreateOrder(ctx, domain.OrderCreateRequest{
		Items: []domain.OrderLineRequest{{MenuItemID: "menu-burger", Qty: 3}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	triggered := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := svc.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusRequest{Status: domain.OrderStatusDone})
			if err != nil {
				t.Errorf("status update failed: %v", err)
				return
			}
			if resp.Consumption != nil && resp.Consumption.Triggered {
				mu.Lock()
				triggered++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if triggered != 1 {
		t.Fatalf("expected exactly one consumption, got %d", triggered)
	}
	if got := stock(t, repo, "inv-patty").Quantity; got != 77 {
		t.Fatalf("expected 77 patties, got %v", got)
	}
}

func TestDoneWithShortStockStillCompletes(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := staffCtx()

	order, err := svc.CreateOrder(ctx, domain.OrderCreateRequest{
		Items: []domain.OrderLineRequest{{MenuItemID: "menu-paratha", Qty: 51}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	resp, err := svc.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusRequest{Status: domain.OrderStatusDone})
	if err != nil {
		t.Fatalf("status update failed: %v", err)
	}
	if resp.Order.Status != domain.OrderStatusDone {
		t.Fatalf("expected DONE, got %s", resp.Order.Status)
	}
	if resp.Consumption.Updated != 0 || resp.Consumption.Skipped != 1 {
		t.Fatalf("expected a single skipped item, got %+v", resp.Consumption)
	}
	if got := stock(t, repo, "inv-flour").Quantity; got != 10000 {
		t.Fatalf("flour must stay at 10000, got %v", got)
	}
}

// cancelAfterClaim drops the caller's context as soon as the DONE claim is
// committed and refuses any later store call made on a dead context.
type cancelAfterClaim struct {
	*memory.Store
	cancel context.CancelFunc
}

func (r cancelAfterClaim) TransitionOrderStatus(ctx context.Context, id string, status domain.OrderStatus, at time.Time) (*domain.Order, bool, error) {
	order, claimed, err := r.Store.TransitionOrderStatus(ctx, id, status, at)
	r.cancel()
	return order, claimed, err
}

func (r cancelAfterClaim) HasConsumed(ctx context.Context, orderID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return r.Store.HasConsumed(ctx, orderID)
}

func (r cancelAfterClaim) GetMenuItemsByIDs(ctx context.Context, ids []string) (map[string]domain.MenuItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.Store.GetMenuItemsByIDs(ctx, ids)
}

func (r cancelAfterClaim) GetInventoryItemsByIDs(ctx context.Context, ids []string) (map[string]domain.InventoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.Store.GetInventoryItemsByIDs(ctx, ids)
}

func (r cancelAfterClaim) CompareAndDecrement(ctx context.Context, id string, amount float64) (float64, float64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, false, err
	}
	return r.Store.CompareAndDecrement(ctx, id, amount)
}

func (r cancelAfterClaim) CreateConsumptionRecord(ctx context.Context, record domain.ConsumptionRecord) (*domain.ConsumptionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.Store.CreateConsumptionRecord(ctx, record)
}

func TestDoneConsumesAfterCallerCancels(t *testing.T) {
	base := memory.NewSeeded(nil)
	reqCtx, cancel := context.WithCancel(staffCtx())
	defer cancel()
	repo := cancelAfterClaim{Store: base, cancel: cancel}
	days, err := businessday.New("Asia/Karachi", 8)
	if err != nil {
		t.Fatalf("business day resolver: %v", err)
	}
	logger, _ := logtest.NewNullLogger()
	svc := New(repo, cache.NoopMenuCache{}, time.Minute, &recordingNotifier{}, days, logger)

	order, err := svc.CreateOrder(staffCtx(), domain.OrderCreateRequest{
		Items: []domain.OrderLineRequest{{MenuItemID: "menu-burger", Qty: 1}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	resp, err := svc.UpdateOrderStatus(reqCtx, order.ID, domain.OrderStatusRequest{Status: domain.OrderStatusDone})
	if err != nil {
		t.Fatalf("status update failed: %v", err)
	}
	if reqCtx.Err() == nil {
		t.Fatal("expected the request context to be cancelled after the claim")
	}
	if resp.Consumption == nil || resp.Consumption.RecordID == "" || resp.Consumption.Updated == 0 {
		t.Fatalf("expected a full consumption run, got %+v", resp.Consumption)
	}
	if got := stock(t, base, "inv-patty").Quantity; got != 79 {
		t.Fatalf("expected 79 patties, got %v", got)
	}
	record, err := base.GetConsumptionRecord(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("expected consumption record: %v", err)
	}
	if record.CreatedBy != "staff" || record.Summary.Skipped != 0 {
		t.Fatalf("unexpected record %+v", record)
	}
}

func TestModifyOrderRecomputesTotals(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := staffCtx()

	order, err := svc.CreateOrder(ctx, domain.OrderCreateRequest{
		Items: []domain.OrderLineRequest{{MenuItemID: "menu-fries", Qty: 1}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	applyTax := true
	taxPercent := 10.0
	name := "Ayesha"
	updated, err := svc.ModifyOrder(ctx, order.ID, domain.OrderModifyRequest{
		ApplyTax:     &applyTax,
		TaxPercent:   &taxPercent,
		CustomerName: &name,
		Items: []domain.OrderLineRequest{
			{MenuItemID: "menu-fries", Qty: 2},
			{MenuItemID: "menu-burger", Qty: 1},
		},
	})
	if err != nil {
		t.Fatalf("modify failed: %v", err)
	}
	if updated.Subtotal != 1250 || updated.Tax != 125 || updated.Total != 1375 {
		t.Fatalf("unexpected totals %+v", updated)
	}
	if updated.Customer.Name != "Ayesha" || updated.Number != order.Number {
		t.Fatalf("unexpected order after modify %+v", updated)
	}
}

func TestModifyOrderGuard(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := staffCtx()
	items := []domain.OrderLineRequest{{MenuItemID: "menu-fries", Qty: 1}}

	old, err := repo.CreateOrder(context.Background(), domain.Order{
		Lines:     []domain.OrderLine{{MenuItemID: "menu-fries", Name: "Fries", Price: 300, Qty: 1}},
		CreatedAt: time.Now().UTC().Add(-49 * time.Hour),
	})
	if err != nil {
		t.Fatalf("seed old order: %v", err)
	}
	if _, err := svc.ModifyOrder(ctx, old.ID, domain.OrderModifyRequest{Items: items}); !errors.Is(err, store.ErrOrderLocked) {
		t.Fatalf("expected old order to be locked, got %v", err)
	}

	order, err := svc.CreateOrder(ctx, domain.OrderCreateRequest{Items: items})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := svc.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusRequest{Status: domain.OrderStatusDone}); err != nil {
		t.Fatalf("status update failed: %v", err)
	}
	if _, err := svc.ModifyOrder(ctx, order.ID, domain.OrderModifyRequest{Items: items}); !errors.Is(err, store.ErrOrderLocked) {
		t.Fatalf("expected consumed order to be locked, got %v", err)
	}
}

func TestKitchenPrintAndPayment(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := staffCtx()

	order, err := svc.CreateOrder(ctx, domain.OrderCreateRequest{
		Items: []domain.OrderLineRequest{{MenuItemID: "menu-cola", Qty: 2}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := svc.MarkKitchenPrinted(ctx, order.ID); err != nil {
			t.Fatalf("kitchen print failed: %v", err)
		}
	}
	printed, _ := svc.GetOrder(ctx, order.ID)
	if !printed.KitchenSlipPrinted || printed.KitchenSlipPrintCount != 2 {
		t.Fatalf("unexpected print state %+v", printed)
	}

	if _, err := svc.ReceivePayment(ctx, order.ID, domain.PaymentRequest{Method: "card", Amount: 300}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected invalid method error, got %v", err)
	}
	paid, err := svc.ReceivePayment(ctx, order.ID, domain.PaymentRequest{Method: "easypaisa", Amount: 300})
	if err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	if paid.Payment == nil || !paid.Payment.Received || paid.Payment.Method != "easypaisa" {
		t.Fatalf("unexpected payment %+v", paid.Payment)
	}
	if _, err := svc.ReceivePayment(ctx, order.ID, domain.PaymentRequest{Method: "cash", Amount: 300}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected second payment to be rejected, got %v", err)
	}
}

func TestReceiveSupplierBillUpdatesStockAndPrice(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := adminCtx()

	bill, err := svc.ReceiveSupplierBill(ctx, domain.SupplierBillRequest{
		SupplierID:    "sup-main",
		PaymentMethod: "credit",
		CreditAmount:  1000,
		BillID:        "INV-778",
		PaymentDate:   "2025-03-05",
		Items: []domain.SupplierBillItem{
			{InventoryItemID: "inv-flour", Quantity: 10, Unit: domain.UnitKilogram, Rate: 300, TotalAmount: 3000},
		},
	})
	if err != nil {
		t.Fatalf("receive bill failed: %v", err)
	}
	if bill.GrandTotal != 3000 || bill.CreditAmount != 1000 || bill.CashAmount != 2000 {
		t.Fatalf("unexpected bill split %+v", bill)
	}

	flour := stock(t, repo, "inv-flour")
	if flour.Quantity != 20000 {
		t.Fatalf("expected 20000 g flour, got %v", flour.Quantity)
	}
	if !approx(flour.UnitPrice, 0.25) {
		t.Fatalf("expected weighted unit price 0.25, got %v", flour.UnitPrice)
	}

	bills, err := svc.ListSupplierBills(ctx, domain.SupplierBillFilter{InventoryItemID: "inv-flour"}, 10)
	if err != nil || len(bills) != 1 {
		t.Fatalf("expected one bill for flour, got %d (%v)", len(bills), err)
	}
}

func TestReceiveSupplierBillRejectsBadLines(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := adminCtx()

	_, err := svc.ReceiveSupplierBill(ctx, domain.SupplierBillRequest{
		SupplierID:    "sup-main",
		PaymentMethod: "cash",
		CashAmount:    100,
		Items: []domain.SupplierBillItem{
			{InventoryItemID: "inv-bun", Quantity: 10, Unit: domain.UnitPiece, TotalAmount: 50},
			{InventoryItemID: "inv-oil", Quantity: 2, Unit: domain.UnitKilogram, TotalAmount: 50},
		},
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected unit mismatch to reject the bill, got %v", err)
	}
	if got := stock(t, repo, "inv-bun").Quantity; got != 120 {
		t.Fatalf("rejected bill must not add stock, got %v", got)
	}

	_, err = svc.ReceiveSupplierBill(ctx, domain.SupplierBillRequest{
		SupplierID:    "sup-main",
		PaymentMethod: "cash",
		CashAmount:    500,
		Items:         []domain.SupplierBillItem{{InventoryItemID: "inv-bun", Quantity: 10, TotalAmount: 250}},
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected cash above total to be rejected, got %v", err)
	}
}

func TestOperationsRequirePermission(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.CreateSupplier(staffCtx(), domain.SupplierCreateRequest{Name: "Fresh Farms"}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	if _, err := svc.CreateMenuItem(staffCtx(), domain.MenuItemCreateRequest{Name: "Tea", Price: 100}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	if _, err := svc.ListActivityLogs(staffCtx(), "", 10); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	if _, err := svc.ListActivityLogs(context.Background(), "", 10); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected anonymous caller to be denied, got %v", err)
	}

	// token permissions win over the role defaults
	auditor := WithActor(context.Background(), domain.Actor{
		Username:    "auditor",
		Role:        domain.RoleStaff,
		Permissions: []domain.Permission{domain.PermViewConsumption},
	})
	if _, err := svc.ListConsumptionRecords(auditor, "", 10); err != nil {
		t.Fatalf("expected consumption view to be allowed, got %v", err)
	}
	narrowed := WithActor(context.Background(), domain.Actor{
		Username:    "admin",
		Role:        domain.RoleAdmin,
		Permissions: []domain.Permission{domain.PermTakeOrders},
	})
	if _, err := svc.CreateSupplier(narrowed, domain.SupplierCreateRequest{Name: "Fresh Farms"}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected narrowed admin token to be denied, got %v", err)
	}
}

func TestCreateMenuItemValidatesRecipe(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := adminCtx()

	_, err := svc.CreateMenuItem(ctx, domain.MenuItemCreateRequest{
		Name:        "Milkshake",
		Price:       400,
		Ingredients: []domain.Ingredient{{InventoryItemID: "inv-bun", Quantity: 100, Unit: domain.UnitMillilitre}},
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected incompatible ingredient unit to be rejected, got %v", err)
	}

	item, err := svc.CreateMenuItem(ctx, domain.MenuItemCreateRequest{
		Name:        "Naan",
		Price:       60,
		Ingredients: []domain.Ingredient{{InventoryItemID: "inv-flour", Quantity: 0.15, Unit: domain.UnitKilogram}},
	})
	if err != nil {
		t.Fatalf("create menu item failed: %v", err)
	}
	if item.Type() != domain.MenuItemTypeItem {
		t.Fatalf("expected plain item, got %s", item.Type())
	}

	deal, err := svc.CreateMenuItem(ctx, domain.MenuItemCreateRequest{
		Name:      "Naan Deal",
		Price:     150,
		Type:      domain.MenuItemTypeDeal,
		DealItems: []domain.Component{{MenuItemID: item.ID}, {CategoryID: "drinks", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create deal failed: %v", err)
	}
	components := deal.Recipe.(domain.CompositeRecipe).Components
	if components[0].Quantity != 1 {
		t.Fatalf("expected default component quantity 1, got %d", components[0].Quantity)
	}

	logs, err := svc.ListActivityLogs(ctx, "", 10)
	if err != nil {
		t.Fatalf("list activity logs: %v", err)
	}
	if len(logs) != 2 || logs[0].Action != "menu_item_create" {
		t.Fatalf("expected two menu activity logs, got %+v", logs)
	}
}

type countingCache struct {
	cache.NoopMenuCache
	sets        int
	invalidates int
}

func (c *countingCache) Set(context.Context, string, []domain.MenuItem, time.Duration) error {
	c.sets++
	return nil
}

func (c *countingCache) Invalidate(context.Context, string) error {
	c.invalidates++
	return nil
}

func TestMenuCacheFilledAndInvalidated(t *testing.T) {
	repo := memory.NewSeeded(nil)
	mc := &countingCache{}
	logger, _ := logtest.NewNullLogger()
	svc := New(repo, mc, time.Minute, nil, nil, logger)

	items, err := svc.ListMenu(context.Background())
	if err != nil {
		t.Fatalf("list menu: %v", err)
	}
	if len(items) != 5 || mc.sets != 1 {
		t.Fatalf("expected 5 items and one cache fill, got %d/%d", len(items), mc.sets)
	}
	if _, err := svc.CreateMenuItem(adminCtx(), domain.MenuItemCreateRequest{Name: "Lassi", Price: 200}); err != nil {
		t.Fatalf("create menu item: %v", err)
	}
	if mc.invalidates != 1 {
		t.Fatalf("expected cache invalidation, got %d", mc.invalidates)
	}
}
