package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"restopos/backend/internal/domain"
	"restopos/backend/internal/store"
)

func newIntegrationStore(t *testing.T) *Store {
	t.Helper()
	databaseURL := os.Getenv("RESTOPOS_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set RESTOPOS_TEST_DATABASE_URL to run postgres integration test")
	}

	s, err := New(context.Background(), databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestCompareAndDecrementNeverGoesNegative(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	id := fmt.Sprintf("inv-it-%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	})
	if _, err := s.CreateInventoryItem(ctx, domain.InventoryItem{
		ID:       id,
		Name:     "Integration Salt",
		Quantity: 50,
		Unit:     domain.UnitGram,
		Type:     domain.InventoryTypeConsumable,
	}); err != nil {
		t.Fatalf("create inventory item: %v", err)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, ok, err := s.CompareAndDecrement(ctx, id, 10)
			if err != nil {
				t.Errorf("decrement: %v", err)
				return
			}
			if ok {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if success != 5 {
		t.Fatalf("expected 5 successful decrements, got %d", success)
	}
	items, err := s.GetInventoryItemsByIDs(ctx, []string{id})
	if err != nil {
		t.Fatalf("get inventory: %v", err)
	}
	if got := items[id].Quantity; got != 0 {
		t.Fatalf("expected quantity 0, got %v", got)
	}

	if _, _, ok, err := s.CompareAndDecrement(ctx, "inv-missing-"+id, 1); ok || err != nil {
		t.Fatalf("expected missing item to report not ok without error, got ok=%v err=%v", ok, err)
	}
}

func TestTransitionOrderStatusClaimsOnce(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	order, err := s.CreateOrder(ctx, domain.Order{
		Lines:  []domain.OrderLine{{MenuItemID: "menu-it", Name: "Integration Item", Price: 100, Qty: 1}},
		Status: domain.OrderStatusPending,
		Total:  100,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM consumption_records WHERE order_id = $1`, order.ID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, order.ID)
	})

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		claims int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, claimed, err := s.TransitionOrderStatus(ctx, order.ID, domain.OrderStatusDone, time.Now().UTC())
			if err != nil {
				t.Errorf("transition: %v", err)
				return
			}
			if claimed {
				mu.Lock()
				claims++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if claims != 1 {
		t.Fatalf("expected exactly one claim, got %d", claims)
	}

	record := domain.ConsumptionRecord{OrderID: order.ID, OrderNumber: order.Number, Action: domain.ConsumptionActionDecrement}
	if _, err := s.CreateConsumptionRecord(ctx, record); err != nil {
		t.Fatalf("create consumption record: %v", err)
	}
	if _, err := s.CreateConsumptionRecord(ctx, record); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected duplicate record error, got %v", err)
	}
	consumed, err := s.HasConsumed(ctx, order.ID)
	if err != nil || !consumed {
		t.Fatalf("expected order to be consumed, got %v (err %v)", consumed, err)
	}

	if _, err := s.UpdateOrder(ctx, *order); !errors.Is(err, store.ErrOrderLocked) {
		t.Fatalf("expected locked order after deduction, got %v", err)
	}
}
