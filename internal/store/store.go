package store

import (
	"context"
	"errors"
	"time"

	"restopos/backend/internal/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicate    = errors.New("duplicate")
	ErrOrderLocked  = errors.New("order locked")
)

// StockReceipt adds purchased stock to one inventory item. Quantity is already
// in the item's own unit.
type StockReceipt struct {
	InventoryItemID string
	Quantity        float64
	TotalAmount     float64
}

type Repository interface {
	ListMenuItems(ctx context.Context, availableOnly bool) ([]domain.MenuItem, error)
	GetMenuItem(ctx context.Context, id string) (*domain.MenuItem, error)
	GetMenuItemsByIDs(ctx context.Context, ids []string) (map[string]domain.MenuItem, error)
	CreateMenuItem(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error)

	ListInventoryItems(ctx context.Context, inventoryType string) ([]domain.InventoryItem, error)
	GetInventoryItemsByIDs(ctx context.Context, ids []string) (map[string]domain.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error)
	// CompareAndDecrement subtracts amount only if the current quantity is at
	// least amount. ok is false, with stock untouched, otherwise.
	CompareAndDecrement(ctx context.Context, inventoryItemID string, amount float64) (before float64, after float64, ok bool, err error)

	CreateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error)
	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
	GetSupplier(ctx context.Context, id string) (*domain.Supplier, error)
	// ReceiveSupplierBill stores the bill and applies every receipt with a
	// weighted average unit price, all or nothing.
	ReceiveSupplierBill(ctx context.Context, bill domain.SupplierBill, receipts []StockReceipt) (*domain.SupplierBill, error)
	ListSupplierBills(ctx context.Context, filter domain.SupplierBillFilter, limit int) ([]domain.SupplierBill, error)

	CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, status domain.OrderStatus, limit int) ([]domain.Order, error)
	// UpdateOrder replaces the editable fields of an order. It fails with
	// ErrOrderLocked once inventory has been deducted.
	UpdateOrder(ctx context.Context, order domain.Order) (*domain.Order, error)
	// TransitionOrderStatus writes the new status and end time. claimed is
	// true for exactly one caller: the one that moved a not yet deducted order
	// into DONE, which also marks it deducted in the same write.
	TransitionOrderStatus(ctx context.Context, id string, status domain.OrderStatus, at time.Time) (order *domain.Order, claimed bool, err error)
	MarkKitchenPrinted(ctx context.Context, id string, at time.Time) (*domain.Order, error)
	// RecordPayment fails with ErrDuplicate when payment was already received.
	RecordPayment(ctx context.Context, id string, payment domain.Payment) (*domain.Order, error)

	// CreateConsumptionRecord fails with ErrDuplicate when a record for the
	// same order and action exists.
	CreateConsumptionRecord(ctx context.Context, record domain.ConsumptionRecord) (*domain.ConsumptionRecord, error)
	HasConsumed(ctx context.Context, orderID string) (bool, error)
	GetConsumptionRecord(ctx context.Context, orderID string) (*domain.ConsumptionRecord, error)
	ListConsumptionRecords(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.ConsumptionRecord, error)

	CreateActivityLog(ctx context.Context, entry domain.ActivityLog) error
	ListActivityLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.ActivityLog, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
	SetUserActive(ctx context.Context, username string, active bool) error
}
