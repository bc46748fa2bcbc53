package memory

import (
	"context"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"restopos/backend/internal/domain"
	"restopos/backend/internal/inventory"
	"restopos/backend/internal/store"
	"restopos/backend/internal/xid"
)

type Store struct {
	mu                 sync.RWMutex
	menuByID           map[string]domain.MenuItem
	inventoryByID      map[string]domain.InventoryItem
	suppliersByID      map[string]domain.Supplier
	supplierBills      []domain.SupplierBill
	ordersByID         map[string]domain.Order
	lastOrderNumber    int64
	consumptionByOrder map[string]domain.ConsumptionRecord
	activityLogs       []domain.ActivityLog
	usersByUsername    map[string]domain.UserAccount
}

func New() *Store {
	return &Store{
		menuByID:           make(map[string]domain.MenuItem),
		inventoryByID:      make(map[string]domain.InventoryItem),
		suppliersByID:      make(map[string]domain.Supplier),
		supplierBills:      make([]domain.SupplierBill, 0, 16),
		ordersByID:         make(map[string]domain.Order),
		consumptionByOrder: make(map[string]domain.ConsumptionRecord),
		activityLogs:       make([]domain.ActivityLog, 0, 128),
		usersByUsername:    make(map[string]domain.UserAccount),
	}
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials come from SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD, falling
// back to dev defaults with a warning.
func seedUsers(logger logrus.FieldLogger) map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	staffPwd := envOr("SEED_STAFF_PASSWORD", "staff123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_STAFF_PASSWORD") == "" {
		logger.Warn("memory store: using default dev credentials, set SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD to override")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, domain.RoleAdmin},
		{"staff", staffPwd, domain.RoleStaff},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			logger.WithError(err).WithField("username", u.username).Fatal("memory store: failed to hash seed password")
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// NewSeeded returns a store with a small kitchen: a burger, fries and a deal
// built from them, plus the raw materials they consume. Seeding warnings go
// to logger, or to the standard logger when it is nil.
func NewSeeded(logger logrus.FieldLogger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := New()
	now := time.Now().UTC()

	for _, item := range []domain.InventoryItem{
		{ID: "inv-flour", Name: "Flour", Quantity: 10000, Unit: domain.UnitGram, UnitPrice: 0.2},
		{ID: "inv-bun", Name: "Burger Bun", Quantity: 120, Unit: domain.UnitPiece, UnitPrice: 25},
		{ID: "inv-patty", Name: "Beef Patty", Quantity: 80, Unit: domain.UnitPiece, UnitPrice: 180},
		{ID: "inv-potato", Name: "Potato", Quantity: 25, Unit: domain.UnitKilogram, UnitPrice: 90},
		{ID: "inv-oil", Name: "Cooking Oil", Quantity: 20, Unit: domain.UnitLitre, UnitPrice: 550},
		{ID: "inv-cola", Name: "Cola Syrup", Quantity: 8000, Unit: domain.UnitMillilitre, UnitPrice: 0.6},
	} {
		item.Type = domain.InventoryTypeConsumable
		item.CreatedAt = now
		item.UpdatedAt = now
		s.inventoryByID[item.ID] = item
	}

	for _, item := range []domain.MenuItem{
		{ID: "menu-burger", Name: "Beef Burger", Price: 650, Category: "burgers", Recipe: domain.SimpleRecipe{Ingredients: []domain.Ingredient{
			{InventoryItemID: "inv-bun", Quantity: 1, Unit: domain.UnitPiece},
			{InventoryItemID: "inv-patty", Quantity: 1, Unit: domain.UnitPiece},
			{InventoryItemID: "inv-oil", Quantity: 20, Unit: domain.UnitMillilitre},
		}}},
		{ID: "menu-fries", Name: "Fries", Price: 300, Category: "sides", Recipe: domain.SimpleRecipe{Ingredients: []domain.Ingredient{
			{InventoryItemID: "inv-potato", Quantity: 250, Unit: domain.UnitGram},
			{InventoryItemID: "inv-oil", Quantity: 50, Unit: domain.UnitMillilitre},
		}}},
		{ID: "menu-cola", Name: "Cola", Price: 150, Category: "drinks", Recipe: domain.SimpleRecipe{Ingredients: []domain.Ingredient{
			{InventoryItemID: "inv-cola", Quantity: 60, Unit: domain.UnitMillilitre},
		}}},
		{ID: "menu-paratha", Name: "Paratha", Price: 80, Category: "breads", Recipe: domain.SimpleRecipe{Ingredients: []domain.Ingredient{
			{InventoryItemID: "inv-flour", Quantity: 200, Unit: domain.UnitGram},
		}}},
		{ID: "menu-combo", Name: "Burger Combo", Price: 950, Category: "deals", Recipe: domain.CompositeRecipe{Components: []domain.Component{
			{MenuItemID: "menu-burger", Quantity: 1},
			{MenuItemID: "menu-fries", Quantity: 1},
			{CategoryID: "drinks", Quantity: 1},
		}}},
	} {
		item.Available = true
		item.CreatedAt = now
		item.UpdatedAt = now
		s.menuByID[item.ID] = item
	}

	s.suppliersByID["sup-main"] = domain.Supplier{ID: "sup-main", Name: "Main Wholesale", CreatedAt: now}
	s.usersByUsername = seedUsers(logger)
	return s
}

func (s *Store) ListMenuItems(_ context.Context, availableOnly bool) ([]domain.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.MenuItem, 0, len(s.menuByID))
	for _, item := range s.menuByID {
		if availableOnly && !item.Available {
			continue
		}
		items = append(items, item)
	}
	slices.SortFunc(items, func(a, b domain.MenuItem) int {
		return cmpString(a.Name, b.Name)
	})
	return items, nil
}

func (s *Store) GetMenuItem(_ context.Context, id string) (*domain.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.menuByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &item, nil
}

func (s *Store) GetMenuItemsByIDs(_ context.Context, ids []string) (map[string]domain.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]domain.MenuItem, len(ids))
	for _, id := range ids {
		if item, ok := s.menuByID[id]; ok {
			result[id] = item
		}
	}
	return result, nil
}

func (s *Store) CreateMenuItem(_ context.Context, item domain.MenuItem) (*domain.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return nil, store.ErrInvalidInput
	}
	if item.ID == "" {
		item.ID = xid.New("menu")
	}
	if _, exists := s.menuByID[item.ID]; exists {
		return nil, store.ErrDuplicate
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	s.menuByID[item.ID] = item
	return &item, nil
}

func (s *Store) ListInventoryItems(_ context.Context, inventoryType string) ([]domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.InventoryItem, 0, len(s.inventoryByID))
	for _, item := range s.inventoryByID {
		if inventoryType != "" && item.Type != inventoryType {
			continue
		}
		items = append(items, item)
	}
	slices.SortFunc(items, func(a, b domain.InventoryItem) int {
		return cmpString(a.Name, b.Name)
	})
	return items, nil
}

func (s *Store) GetInventoryItemsByIDs(_ context.Context, ids []string) (map[string]domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]domain.InventoryItem, len(ids))
	for _, id := range ids {
		if item, ok := s.inventoryByID[id]; ok {
			result[id] = item
		}
	}
	return result, nil
}

func (s *Store) CreateInventoryItem(_ context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" || !item.Unit.Valid() || item.Quantity < 0 {
		return nil, store.ErrInvalidInput
	}
	if item.ID == "" {
		item.ID = xid.New("inv")
	}
	if _, exists := s.inventoryByID[item.ID]; exists {
		return nil, store.ErrDuplicate
	}
	if item.Type == "" {
		item.Type = domain.InventoryTypeNonConsumable
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	s.inventoryByID[item.ID] = item
	return &item, nil
}

func (s *Store) CompareAndDecrement(_ context.Context, inventoryItemID string, amount float64) (float64, float64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.inventoryByID[inventoryItemID]
	if !ok || item.Quantity < amount {
		return 0, 0, false, nil
	}
	before := item.Quantity
	item.Quantity = before - amount
	item.UpdatedAt = time.Now().UTC()
	s.inventoryByID[inventoryItemID] = item
	return before, item.Quantity, true, nil
}

func (s *Store) CreateSupplier(_ context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	supplier.Name = strings.TrimSpace(supplier.Name)
	if supplier.Name == "" {
		return nil, store.ErrInvalidInput
	}
	for _, existing := range s.suppliersByID {
		if strings.EqualFold(existing.Name, supplier.Name) {
			return nil, store.ErrDuplicate
		}
	}
	if supplier.ID == "" {
		supplier.ID = xid.New("sup")
	}
	if supplier.CreatedAt.IsZero() {
		supplier.CreatedAt = time.Now().UTC()
	}

	s.suppliersByID[supplier.ID] = supplier
	copySupplier := supplier
	return &copySupplier, nil
}

func (s *Store) ListSuppliers(_ context.Context) ([]domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	suppliers := make([]domain.Supplier, 0, len(s.suppliersByID))
	for _, supplier := range s.suppliersByID {
		suppliers = append(suppliers, supplier)
	}
	slices.SortFunc(suppliers, func(a, b domain.Supplier) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(a.Name, b.Name)
		}
		if a.CreatedAt.Before(b.CreatedAt) {
			return -1
		}
		return 1
	})
	return suppliers, nil
}

func (s *Store) GetSupplier(_ context.Context, id string) (*domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	supplier, ok := s.suppliersByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &supplier, nil
}

func (s *Store) ReceiveSupplierBill(_ context.Context, bill domain.SupplierBill, receipts []store.StockReceipt) (*domain.SupplierBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.suppliersByID[bill.SupplierID]; !ok {
		return nil, store.ErrNotFound
	}
	for _, r := range receipts {
		if _, ok := s.inventoryByID[r.InventoryItemID]; !ok {
			return nil, store.ErrNotFound
		}
	}

	now := time.Now().UTC()
	for _, r := range receipts {
		item := s.inventoryByID[r.InventoryItemID]
		item.UnitPrice = inventory.WeightedUnitPrice(item.Quantity, item.UnitPrice, r.Quantity, r.TotalAmount)
		item.Quantity += r.Quantity
		item.UpdatedAt = now
		s.inventoryByID[r.InventoryItemID] = item
	}

	if bill.ID == "" {
		bill.ID = xid.New("bill")
	}
	if bill.CreatedAt.IsZero() {
		bill.CreatedAt = now
	}
	bill = cloneSupplierBill(bill)
	s.supplierBills = append(s.supplierBills, bill)
	out := cloneSupplierBill(bill)
	return &out, nil
}

func (s *Store) ListSupplierBills(_ context.Context, filter domain.SupplierBillFilter, limit int) ([]domain.SupplierBill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.SupplierBill, 0, len(s.supplierBills))
	for _, bill := range s.supplierBills {
		if filter.SupplierID != "" && bill.SupplierID != filter.SupplierID {
			continue
		}
		if filter.PaymentMethod != "" && bill.PaymentMethod != filter.PaymentMethod {
			continue
		}
		if filter.InventoryItemID != "" && !slices.ContainsFunc(bill.Items, func(it domain.SupplierBillItem) bool {
			return it.InventoryItemID == filter.InventoryItemID
		}) {
			continue
		}
		result = append(result, cloneSupplierBill(bill))
	}
	slices.SortFunc(result, func(a, b domain.SupplierBill) int {
		return compareNewestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreateOrder(_ context.Context, order domain.Order) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(order.Lines) == 0 {
		return nil, store.ErrInvalidInput
	}
	if order.ID == "" {
		order.ID = xid.New("ord")
	}
	if _, exists := s.ordersByID[order.ID]; exists {
		return nil, store.ErrDuplicate
	}
	s.lastOrderNumber++
	order.Number = s.lastOrderNumber
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	s.ordersByID[order.ID] = cloneOrder(order)
	out := cloneOrder(order)
	return &out, nil
}

func (s *Store) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.ordersByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneOrder(order)
	return &out, nil
}

func (s *Store) ListOrders(_ context.Context, status domain.OrderStatus, limit int) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Order, 0, len(s.ordersByID))
	for _, order := range s.ordersByID {
		if status != "" && order.Status != status {
			continue
		}
		result = append(result, cloneOrder(order))
	}
	slices.SortFunc(result, func(a, b domain.Order) int {
		return compareNewestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) UpdateOrder(_ context.Context, order domain.Order) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.ordersByID[order.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if current.InventoryDeducted {
		return nil, store.ErrOrderLocked
	}
	current.Lines = order.Lines
	current.Customer = order.Customer
	current.Subtotal = order.Subtotal
	current.ApplyTax = order.ApplyTax
	current.TaxPercent = order.TaxPercent
	current.Tax = order.Tax
	current.ApplyDiscount = order.ApplyDiscount
	current.DiscountPercent = order.DiscountPercent
	current.Discount = order.Discount
	current.Total = order.Total
	current.UpdatedAt = time.Now().UTC()

	s.ordersByID[order.ID] = cloneOrder(current)
	out := cloneOrder(current)
	return &out, nil
}

func (s *Store) TransitionOrderStatus(_ context.Context, id string, status domain.OrderStatus, at time.Time) (*domain.Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.ordersByID[id]
	if !ok {
		return nil, false, store.ErrNotFound
	}
	claimed := status == domain.OrderStatusDone && order.Status != domain.OrderStatusDone && !order.InventoryDeducted

	order.Status = status
	if status == domain.OrderStatusDone {
		endTime := at
		order.EndTime = &endTime
	} else {
		order.EndTime = nil
	}
	if claimed {
		deductedAt := at
		order.InventoryDeducted = true
		order.InventoryDeductedAt = &deductedAt
	}
	order.UpdatedAt = at

	s.ordersByID[id] = cloneOrder(order)
	out := cloneOrder(order)
	return &out, claimed, nil
}

func (s *Store) MarkKitchenPrinted(_ context.Context, id string, at time.Time) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.ordersByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	printedAt := at
	order.KitchenSlipPrinted = true
	order.KitchenSlipPrintedAt = &printedAt
	order.KitchenSlipPrintCount++
	order.UpdatedAt = at

	s.ordersByID[id] = cloneOrder(order)
	out := cloneOrder(order)
	return &out, nil
}

func (s *Store) RecordPayment(_ context.Context, id string, payment domain.Payment) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.ordersByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if order.Payment != nil && order.Payment.Received {
		return nil, store.ErrDuplicate
	}
	payment.Received = true
	order.Payment = &payment
	order.UpdatedAt = payment.ReceivedAt

	s.ordersByID[id] = cloneOrder(order)
	out := cloneOrder(order)
	return &out, nil
}

func (s *Store) CreateConsumptionRecord(_ context.Context, record domain.ConsumptionRecord) (*domain.ConsumptionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.OrderID == "" {
		return nil, store.ErrInvalidInput
	}
	if record.Action == "" {
		record.Action = domain.ConsumptionActionDecrement
	}
	if _, exists := s.consumptionByOrder[record.OrderID]; exists {
		return nil, store.ErrDuplicate
	}
	if record.ID == "" {
		record.ID = xid.New("cons")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	s.consumptionByOrder[record.OrderID] = cloneConsumptionRecord(record)
	out := cloneConsumptionRecord(record)
	return &out, nil
}

func (s *Store) HasConsumed(_ context.Context, orderID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.consumptionByOrder[orderID]
	return exists, nil
}

func (s *Store) GetConsumptionRecord(_ context.Context, orderID string) (*domain.ConsumptionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.consumptionByOrder[orderID]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneConsumptionRecord(record)
	return &out, nil
}

func (s *Store) ListConsumptionRecords(_ context.Context, from time.Time, to time.Time, limit int) ([]domain.ConsumptionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.ConsumptionRecord, 0, len(s.consumptionByOrder))
	for _, record := range s.consumptionByOrder {
		if record.CreatedAt.Before(from) || !record.CreatedAt.Before(to) {
			continue
		}
		result = append(result, cloneConsumptionRecord(record))
	}
	slices.SortFunc(result, func(a, b domain.ConsumptionRecord) int {
		return compareNewestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreateActivityLog(_ context.Context, entry domain.ActivityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("act")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.activityLogs = append(s.activityLogs, entry)
	return nil
}

func (s *Store) ListActivityLogs(_ context.Context, from time.Time, to time.Time, limit int) ([]domain.ActivityLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.ActivityLog, 0, 64)
	for _, entry := range s.activityLogs {
		if entry.CreatedAt.Before(from) || !entry.CreatedAt.Before(to) {
			continue
		}
		result = append(result, entry)
	}

	slices.SortFunc(result, func(a, b domain.ActivityLog) int {
		return compareNewestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidInput
	}
	if _, exists := s.usersByUsername[username]; exists {
		return store.ErrDuplicate
	}
	user.Username = username
	if user.Role == "" {
		user.Role = domain.RoleStaff
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Active = true
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidInput
	}
	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func (s *Store) SetUserActive(_ context.Context, username string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Active = active
	s.usersByUsername[username] = user
	return nil
}

func compareNewestFirst(a time.Time, b time.Time, aID string, bID string) int {
	if a.Equal(b) {
		return cmpString(bID, aID)
	}
	if a.After(b) {
		return -1
	}
	return 1
}

func cmpString(a string, b string) int {
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

func cloneOrder(src domain.Order) domain.Order {
	dup := src
	dup.Lines = make([]domain.OrderLine, len(src.Lines))
	for i, line := range src.Lines {
		line.Components = slices.Clone(line.Components)
		dup.Lines[i] = line
	}
	if src.Payment != nil {
		payment := *src.Payment
		dup.Payment = &payment
	}
	dup.EndTime = cloneTime(src.EndTime)
	dup.InventoryDeductedAt = cloneTime(src.InventoryDeductedAt)
	dup.KitchenSlipPrintedAt = cloneTime(src.KitchenSlipPrintedAt)
	return dup
}

func cloneConsumptionRecord(src domain.ConsumptionRecord) domain.ConsumptionRecord {
	dup := src
	dup.Entries = slices.Clone(src.Entries)
	return dup
}

func cloneSupplierBill(src domain.SupplierBill) domain.SupplierBill {
	dup := src
	dup.Items = slices.Clone(src.Items)
	dup.PaymentDate = cloneTime(src.PaymentDate)
	return dup
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
