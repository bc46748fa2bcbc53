package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"restopos/backend/internal/domain"
	"restopos/backend/internal/inventory"
	"restopos/backend/internal/store"
	"restopos/backend/internal/xid"
)

//go:embed schema.sql
var schemaSQL string

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

const menuColumns = `id, name, price, category, available, item_type, ingredients, deal_items, created_at, updated_at`

func scanMenuItem(row rowScanner) (domain.MenuItem, error) {
	var (
		item        domain.MenuItem
		itemType    string
		ingredients []byte
		components  []byte
	)
	if err := row.Scan(&item.ID, &item.Name, &item.Price, &item.Category, &item.Available, &itemType, &ingredients, &components, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return domain.MenuItem{}, err
	}
	var ings []domain.Ingredient
	if err := json.Unmarshal(ingredients, &ings); err != nil {
		return domain.MenuItem{}, err
	}
	var comps []domain.Component
	if err := json.Unmarshal(components, &comps); err != nil {
		return domain.MenuItem{}, err
	}
	recipe, err := domain.NewRecipe(domain.MenuItemType(itemType), ings, comps)
	if err != nil {
		return domain.MenuItem{}, err
	}
	item.Recipe = recipe
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()
	return item, nil
}

func (s *Store) ListMenuItems(ctx context.Context, availableOnly bool) ([]domain.MenuItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+menuColumns+`
		FROM menu_items
		WHERE ($1 = false OR available)
		ORDER BY name ASC
	`, availableOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.MenuItem, 0, 64)
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) GetMenuItem(ctx context.Context, id string) (*domain.MenuItem, error) {
	item, err := scanMenuItem(s.db.QueryRowContext(ctx, `SELECT `+menuColumns+` FROM menu_items WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetMenuItemsByIDs(ctx context.Context, ids []string) (map[string]domain.MenuItem, error) {
	result := make(map[string]domain.MenuItem, len(ids))
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+menuColumns+` FROM menu_items WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		result[item.ID] = item
	}
	return result, rows.Err()
}

func (s *Store) CreateMenuItem(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return nil, store.ErrInvalidInput
	}
	if item.ID == "" {
		item.ID = xid.New("menu")
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	ingredients := []domain.Ingredient{}
	components := []domain.Component{}
	switch r := item.Recipe.(type) {
	case domain.SimpleRecipe:
		if r.Ingredients != nil {
			ingredients = r.Ingredients
		}
	case domain.CompositeRecipe:
		if r.Components != nil {
			components = r.Components
		}
	}
	ingredientsJSON, err := json.Marshal(ingredients)
	if err != nil {
		return nil, err
	}
	componentsJSON, err := json.Marshal(components)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO menu_items (`+menuColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, item.ID, item.Name, item.Price, item.Category, item.Available, string(item.Type()), ingredientsJSON, componentsJSON, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}
	return &item, nil
}

const inventoryColumns = `id, item_name, quantity, unit, unit_price, inventory_type, description, created_at, updated_at`

func scanInventoryItem(row rowScanner) (domain.InventoryItem, error) {
	var item domain.InventoryItem
	var unit string
	if err := row.Scan(&item.ID, &item.Name, &item.Quantity, &unit, &item.UnitPrice, &item.Type, &item.Description, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return domain.InventoryItem{}, err
	}
	item.Unit = domain.Unit(unit)
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()
	return item, nil
}

func (s *Store) ListInventoryItems(ctx context.Context, inventoryType string) ([]domain.InventoryItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory_items
		WHERE ($1 = '' OR inventory_type = $1)
		ORDER BY item_name ASC
	`, inventoryType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.InventoryItem, 0, 64)
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) GetInventoryItemsByIDs(ctx context.Context, ids []string) (map[string]domain.InventoryItem, error) {
	result := make(map[string]domain.InventoryItem, len(ids))
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+inventoryColumns+` FROM inventory_items WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		result[item.ID] = item
	}
	return result, rows.Err()
}

func (s *Store) CreateInventoryItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" || !item.Unit.Valid() || item.Quantity < 0 {
		return nil, store.ErrInvalidInput
	}
	if item.ID == "" {
		item.ID = xid.New("inv")
	}
	if item.Type == "" {
		item.Type = domain.InventoryTypeNonConsumable
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory_items (`+inventoryColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, item.ID, item.Name, item.Quantity, string(item.Unit), item.UnitPrice, item.Type, item.Description, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}
	return &item, nil
}

// CompareAndDecrement locks the row, checks the quantity and subtracts in a
// single statement, so concurrent callers can never take stock below zero.
func (s *Store) CompareAndDecrement(ctx context.Context, inventoryItemID string, amount float64) (float64, float64, bool, error) {
	var before, after float64
	err := s.db.QueryRowContext(ctx, `
		WITH prev AS (
			SELECT id, quantity FROM inventory_items WHERE id = $1 FOR UPDATE
		)
		UPDATE inventory_items i
		SET quantity = prev.quantity - $2, updated_at = now()
		FROM prev
		WHERE i.id = prev.id AND prev.quantity >= $2
		RETURNING prev.quantity, i.quantity
	`, inventoryItemID, amount).Scan(&before, &after)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, err
	}
	return before, after, true, nil
}

func (s *Store) CreateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	supplier.Name = strings.TrimSpace(supplier.Name)
	if supplier.Name == "" {
		return nil, store.ErrInvalidInput
	}
	if supplier.ID == "" {
		supplier.ID = xid.New("sup")
	}
	if supplier.CreatedAt.IsZero() {
		supplier.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO suppliers (id, name, address, contact_number, email, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, supplier.ID, supplier.Name, supplier.Address, supplier.ContactNumber, supplier.Email, supplier.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}
	return &supplier, nil
}

func (s *Store) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, address, contact_number, email, created_at
		FROM suppliers
		ORDER BY created_at ASC, name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	suppliers := make([]domain.Supplier, 0, 16)
	for rows.Next() {
		var sup domain.Supplier
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.Address, &sup.ContactNumber, &sup.Email, &sup.CreatedAt); err != nil {
			return nil, err
		}
		sup.CreatedAt = sup.CreatedAt.UTC()
		suppliers = append(suppliers, sup)
	}
	return suppliers, rows.Err()
}

func (s *Store) GetSupplier(ctx context.Context, id string) (*domain.Supplier, error) {
	var sup domain.Supplier
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, address, contact_number, email, created_at
		FROM suppliers
		WHERE id = $1
	`, id).Scan(&sup.ID, &sup.Name, &sup.Address, &sup.ContactNumber, &sup.Email, &sup.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	sup.CreatedAt = sup.CreatedAt.UTC()
	return &sup, nil
}

func (s *Store) ReceiveSupplierBill(ctx context.Context, bill domain.SupplierBill, receipts []store.StockReceipt) (*domain.SupplierBill, error) {
	if bill.ID == "" {
		bill.ID = xid.New("bill")
	}
	if bill.CreatedAt.IsZero() {
		bill.CreatedAt = time.Now().UTC()
	}
	itemsJSON, err := json.Marshal(bill.Items)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM suppliers WHERE id = $1)`, bill.SupplierID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, store.ErrNotFound
	}

	// lock rows in id order so two bills touching the same items cannot deadlock
	ordered := append([]store.StockReceipt(nil), receipts...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].InventoryItemID < ordered[j].InventoryItemID
	})
	for _, r := range ordered {
		var qty, price float64
		err := tx.QueryRowContext(ctx, `
			SELECT quantity, unit_price FROM inventory_items WHERE id = $1 FOR UPDATE
		`, r.InventoryItemID).Scan(&qty, &price)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE inventory_items
			SET quantity = $2, unit_price = $3, updated_at = now()
			WHERE id = $1
		`, r.InventoryItemID, qty+r.Quantity, inventory.WeightedUnitPrice(qty, price, r.Quantity, r.TotalAmount))
		if err != nil {
			return nil, err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO supplier_bills (
			id, supplier_id, payment_method, bill_id, payment_date, remarks,
			grand_total, cash_amount, credit_amount, items, created_by, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, bill.ID, bill.SupplierID, bill.PaymentMethod, nullIfEmpty(bill.BillID), nullTime(bill.PaymentDate), nullIfEmpty(bill.Remarks),
		bill.GrandTotal, bill.CashAmount, bill.CreditAmount, itemsJSON, nullIfEmpty(bill.CreatedBy), bill.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &bill, nil
}

func (s *Store) ListSupplierBills(ctx context.Context, filter domain.SupplierBillFilter, limit int) ([]domain.SupplierBill, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, supplier_id, payment_method, bill_id, payment_date, remarks,
			grand_total, cash_amount, credit_amount, items, created_by, created_at
		FROM supplier_bills
		WHERE ($1 = '' OR supplier_id = $1)
			AND ($2 = '' OR payment_method = $2)
			AND ($3 = '' OR items @> jsonb_build_array(jsonb_build_object('inventory_item_id', $3::text)))
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`, filter.SupplierID, filter.PaymentMethod, filter.InventoryItemID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bills := make([]domain.SupplierBill, 0, limit)
	for rows.Next() {
		var (
			bill        domain.SupplierBill
			billID      sql.NullString
			paymentDate sql.NullTime
			remarks     sql.NullString
			createdBy   sql.NullString
			items       []byte
		)
		if err := rows.Scan(&bill.ID, &bill.SupplierID, &bill.PaymentMethod, &billID, &paymentDate, &remarks,
			&bill.GrandTotal, &bill.CashAmount, &bill.CreditAmount, &items, &createdBy, &bill.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &bill.Items); err != nil {
			return nil, err
		}
		bill.BillID = billID.String
		bill.Remarks = remarks.String
		bill.CreatedBy = createdBy.String
		if paymentDate.Valid {
			t := paymentDate.Time.UTC()
			bill.PaymentDate = &t
		}
		bill.CreatedAt = bill.CreatedAt.UTC()
		bills = append(bills, bill)
	}
	return bills, rows.Err()
}

const orderColumns = `id, order_number, table_number, order_type, delivery_mode, customer, lines, status,
	subtotal, apply_tax, tax_percent, tax, apply_discount, discount_percent, discount, total,
	inventory_deducted, inventory_deducted_at, end_time,
	kitchen_slip_printed, kitchen_slip_print_count, kitchen_slip_printed_at,
	payment, created_by, created_at, updated_at`

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order      domain.Order
		status     string
		customer   []byte
		lines      []byte
		payment    []byte
		deductedAt sql.NullTime
		endTime    sql.NullTime
		printedAt  sql.NullTime
		createdBy  sql.NullString
	)
	err := row.Scan(
		&order.ID, &order.Number, &order.TableNumber, &order.OrderType, &order.DeliveryMode, &customer, &lines, &status,
		&order.Subtotal, &order.ApplyTax, &order.TaxPercent, &order.Tax, &order.ApplyDiscount, &order.DiscountPercent, &order.Discount, &order.Total,
		&order.InventoryDeducted, &deductedAt, &endTime,
		&order.KitchenSlipPrinted, &order.KitchenSlipPrintCount, &printedAt,
		&payment, &createdBy, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	order.Status = domain.OrderStatus(status)
	if err := json.Unmarshal(customer, &order.Customer); err != nil {
		return domain.Order{}, err
	}
	if err := json.Unmarshal(lines, &order.Lines); err != nil {
		return domain.Order{}, err
	}
	if len(payment) > 0 {
		var p domain.Payment
		if err := json.Unmarshal(payment, &p); err != nil {
			return domain.Order{}, err
		}
		order.Payment = &p
	}
	order.InventoryDeductedAt = timePtr(deductedAt)
	order.EndTime = timePtr(endTime)
	order.KitchenSlipPrintedAt = timePtr(printedAt)
	order.CreatedBy = createdBy.String
	order.CreatedAt = order.CreatedAt.UTC()
	order.UpdatedAt = order.UpdatedAt.UTC()
	return order, nil
}

func (s *Store) CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error) {
	if len(order.Lines) == 0 {
		return nil, store.ErrInvalidInput
	}
	if order.ID == "" {
		order.ID = xid.New("ord")
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	customer, err := json.Marshal(order.Customer)
	if err != nil {
		return nil, err
	}
	lines, err := json.Marshal(order.Lines)
	if err != nil {
		return nil, err
	}

	saved, err := scanOrder(s.db.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, table_number, order_type, delivery_mode, customer, lines, status,
			subtotal, apply_tax, tax_percent, tax, apply_discount, discount_percent, discount, total,
			created_by, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING `+orderColumns,
		order.ID, order.TableNumber, order.OrderType, order.DeliveryMode, customer, lines, string(order.Status),
		order.Subtotal, order.ApplyTax, order.TaxPercent, order.Tax, order.ApplyDiscount, order.DiscountPercent, order.Discount, order.Total,
		nullIfEmpty(order.CreatedBy), order.CreatedAt, order.UpdatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}
	return &saved, nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := scanOrder(s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Store) ListOrders(ctx context.Context, status domain.OrderStatus, limit int) ([]domain.Order, error) {
	if limit < 1 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, limit)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (s *Store) UpdateOrder(ctx context.Context, order domain.Order) (*domain.Order, error) {
	customer, err := json.Marshal(order.Customer)
	if err != nil {
		return nil, err
	}
	lines, err := json.Marshal(order.Lines)
	if err != nil {
		return nil, err
	}

	saved, err := scanOrder(s.db.QueryRowContext(ctx, `
		UPDATE orders
		SET customer = $2, lines = $3, subtotal = $4,
			apply_tax = $5, tax_percent = $6, tax = $7,
			apply_discount = $8, discount_percent = $9, discount = $10,
			total = $11, updated_at = now()
		WHERE id = $1 AND NOT inventory_deducted
		RETURNING `+orderColumns,
		order.ID, customer, lines, order.Subtotal,
		order.ApplyTax, order.TaxPercent, order.Tax,
		order.ApplyDiscount, order.DiscountPercent, order.Discount,
		order.Total,
	))
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := s.GetOrder(ctx, order.ID); getErr != nil {
			return nil, getErr
		}
		return nil, store.ErrOrderLocked
	}
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// TransitionOrderStatus holds the order row lock while it decides whether
// this call is the one that claims inventory consumption.
func (s *Store) TransitionOrderStatus(ctx context.Context, id string, status domain.OrderStatus, at time.Time) (*domain.Order, bool, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	var deducted bool
	err = tx.QueryRowContext(ctx, `
		SELECT status, inventory_deducted FROM orders WHERE id = $1 FOR UPDATE
	`, id).Scan(&current, &deducted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, store.ErrNotFound
	}
	if err != nil {
		return nil, false, err
	}

	done := status == domain.OrderStatusDone
	claimed := done && domain.OrderStatus(current) != domain.OrderStatusDone && !deducted
	var endTime *time.Time
	if done {
		endTime = &at
	}

	order, err := scanOrder(tx.QueryRowContext(ctx, `
		UPDATE orders
		SET status = $2,
			end_time = $3,
			inventory_deducted = inventory_deducted OR $4,
			inventory_deducted_at = CASE WHEN $4 THEN $5 ELSE inventory_deducted_at END,
			updated_at = $5
		WHERE id = $1
		RETURNING `+orderColumns,
		id, string(status), nullTime(endTime), claimed, at,
	))
	if err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return &order, claimed, nil
}

func (s *Store) MarkKitchenPrinted(ctx context.Context, id string, at time.Time) (*domain.Order, error) {
	order, err := scanOrder(s.db.QueryRowContext(ctx, `
		UPDATE orders
		SET kitchen_slip_printed = true,
			kitchen_slip_print_count = kitchen_slip_print_count + 1,
			kitchen_slip_printed_at = $2,
			updated_at = $2
		WHERE id = $1
		RETURNING `+orderColumns,
		id, at,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Store) RecordPayment(ctx context.Context, id string, payment domain.Payment) (*domain.Order, error) {
	payment.Received = true
	paymentJSON, err := json.Marshal(payment)
	if err != nil {
		return nil, err
	}

	order, err := scanOrder(s.db.QueryRowContext(ctx, `
		UPDATE orders
		SET payment = $2, updated_at = $3
		WHERE id = $1 AND (payment IS NULL OR NOT COALESCE((payment->>'received')::boolean, false))
		RETURNING `+orderColumns,
		id, paymentJSON, payment.ReceivedAt,
	))
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := s.GetOrder(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, store.ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

const consumptionColumns = `id, order_id, order_number, action, created_by, entries, updated_count, skipped_count, created_at`

func scanConsumptionRecord(row rowScanner) (domain.ConsumptionRecord, error) {
	var (
		record    domain.ConsumptionRecord
		createdBy sql.NullString
		entries   []byte
	)
	if err := row.Scan(&record.ID, &record.OrderID, &record.OrderNumber, &record.Action, &createdBy, &entries,
		&record.Summary.Updated, &record.Summary.Skipped, &record.CreatedAt); err != nil {
		return domain.ConsumptionRecord{}, err
	}
	if err := json.Unmarshal(entries, &record.Entries); err != nil {
		return domain.ConsumptionRecord{}, err
	}
	record.CreatedBy = createdBy.String
	record.CreatedAt = record.CreatedAt.UTC()
	return record, nil
}

func (s *Store) CreateConsumptionRecord(ctx context.Context, record domain.ConsumptionRecord) (*domain.ConsumptionRecord, error) {
	if record.OrderID == "" {
		return nil, store.ErrInvalidInput
	}
	if record.Action == "" {
		record.Action = domain.ConsumptionActionDecrement
	}
	if record.ID == "" {
		record.ID = xid.New("cons")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	entries, err := json.Marshal(record.Entries)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO consumption_records (`+consumptionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, record.ID, record.OrderID, record.OrderNumber, record.Action, nullIfEmpty(record.CreatedBy), entries,
		record.Summary.Updated, record.Summary.Skipped, record.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (s *Store) HasConsumed(ctx context.Context, orderID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM consumption_records WHERE order_id = $1 AND action = $2)
	`, orderID, domain.ConsumptionActionDecrement).Scan(&exists)
	return exists, err
}

func (s *Store) GetConsumptionRecord(ctx context.Context, orderID string) (*domain.ConsumptionRecord, error) {
	record, err := scanConsumptionRecord(s.db.QueryRowContext(ctx, `
		SELECT `+consumptionColumns+`
		FROM consumption_records
		WHERE order_id = $1 AND action = $2
	`, orderID, domain.ConsumptionActionDecrement))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Store) ListConsumptionRecords(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.ConsumptionRecord, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+consumptionColumns+`
		FROM consumption_records
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.ConsumptionRecord, 0, limit)
	for rows.Next() {
		record, err := scanConsumptionRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *Store) CreateActivityLog(ctx context.Context, entry domain.ActivityLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("act")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_logs (id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, entry.ID, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListActivityLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.ActivityLog, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		FROM activity_logs
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.ActivityLog, 0, limit)
	for rows.Next() {
		var entry domain.ActivityLog
		if err := rows.Scan(&entry.ID, &entry.ActorUsername, &entry.ActorRole, &entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidInput
	}
	if user.Role == "" {
		user.Role = domain.RoleStaff
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_users (username, password, role, active, created_at, updated_at)
		VALUES ($1,$2,$3,true,$4,$4)
	`, username, user.Password, user.Role, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM app_users
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE app_users
		SET password = $2, updated_at = now()
		WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) SetUserActive(ctx context.Context, username string, active bool) error {
	username = strings.ToLower(strings.TrimSpace(username))
	res, err := s.db.ExecContext(ctx, `
		UPDATE app_users
		SET active = $2, updated_at = now()
		WHERE username = $1
	`, username, active)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func uniqueIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullTime(val *time.Time) any {
	if val == nil {
		return nil
	}
	return *val
}

func timePtr(val sql.NullTime) *time.Time {
	if !val.Valid {
		return nil
	}
	t := val.Time.UTC()
	return &t
}
