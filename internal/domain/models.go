package domain

import "time"

type Unit string

const (
	UnitGram       Unit = "g"
	UnitKilogram   Unit = "kg"
	UnitMillilitre Unit = "ml"
	UnitLitre      Unit = "l"
	UnitPiece      Unit = "pcs"
)

func (u Unit) Valid() bool {
	switch u {
	case UnitGram, UnitKilogram, UnitMillilitre, UnitLitre, UnitPiece:
		return true
	default:
		return false
	}
}

const (
	InventoryTypeConsumable    = "consumable"
	InventoryTypeNonConsumable = "nonconsumable"
)

type InventoryItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"item_name"`
	Quantity    float64   `json:"quantity"`
	Unit        Unit      `json:"unit"`
	UnitPrice   float64   `json:"unit_price"`
	Type        string    `json:"inventory_type"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type InventoryItemCreateRequest struct {
	Name        string  `json:"item_name"`
	Quantity    float64 `json:"quantity"`
	Unit        Unit    `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
	Type        string  `json:"inventory_type"`
	Description string  `json:"description"`
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusDone       OrderStatus = "DONE"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusInProgress, OrderStatusDone:
		return true
	default:
		return false
	}
}

// LineComponent is one resolved constituent of a composite order line. It is
// captured when the line is created or modified and does not follow later
// menu changes.
type LineComponent struct {
	MenuItemID string `json:"menu_item_id"`
	Name       string `json:"name"`
	Qty        int    `json:"qty"`
}

type OrderLine struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	Price      int64           `json:"price"`
	Qty        int             `json:"qty"`
	Notes      string          `json:"notes,omitempty"`
	Composite  bool            `json:"is_deal"`
	Components []LineComponent `json:"deal_items,omitempty"`
}

type Customer struct {
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type Payment struct {
	Received   bool      `json:"received"`
	Method     string    `json:"method"`
	Amount     int64     `json:"amount"`
	ReceivedAt time.Time `json:"received_at"`
}

type Order struct {
	ID                    string      `json:"id"`
	Number                int64       `json:"order_id"`
	TableNumber           string      `json:"table_number,omitempty"`
	OrderType             string      `json:"order_type,omitempty"`
	DeliveryMode          string      `json:"delivery_mode,omitempty"`
	Customer              Customer    `json:"customer"`
	Lines                 []OrderLine `json:"items"`
	Status                OrderStatus `json:"status"`
	Subtotal              int64       `json:"subtotal"`
	ApplyTax              bool        `json:"apply_tax"`
	TaxPercent            float64     `json:"tax_percent"`
	Tax                   int64       `json:"tax"`
	ApplyDiscount         bool        `json:"apply_discount"`
	DiscountPercent       float64     `json:"discount_percent"`
	Discount              int64       `json:"discount"`
	Total                 int64       `json:"total"`
	InventoryDeducted     bool        `json:"inventory_deducted"`
	InventoryDeductedAt   *time.Time  `json:"inventory_deducted_at,omitempty"`
	EndTime               *time.Time  `json:"end_time,omitempty"`
	KitchenSlipPrinted    bool        `json:"kitchen_slip_printed"`
	KitchenSlipPrintCount int         `json:"kitchen_slip_print_count"`
	KitchenSlipPrintedAt  *time.Time  `json:"kitchen_slip_printed_at,omitempty"`
	Payment               *Payment    `json:"payment,omitempty"`
	CreatedBy             string      `json:"created_by,omitempty"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

// DealSelection carries the menu items a customer picked for a category slot
// of a composite menu item.
type DealSelection struct {
	CategoryID string   `json:"category_id,omitempty"`
	Items      []string `json:"items"`
}

type OrderLineRequest struct {
	MenuItemID    string          `json:"menu_item_id"`
	Qty           int             `json:"qty"`
	Notes         string          `json:"notes,omitempty"`
	DealSelection []DealSelection `json:"deal_selection,omitempty"`
}

type OrderCreateRequest struct {
	TableNumber     string             `json:"table_number"`
	OrderType       string             `json:"order_type"`
	DeliveryMode    string             `json:"delivery_mode"`
	CustomerName    string             `json:"customer_name"`
	CustomerPhone   string             `json:"customer_phone"`
	CustomerAddress string             `json:"customer_address"`
	ApplyTax        bool               `json:"apply_tax"`
	TaxPercent      float64            `json:"tax_percent"`
	ApplyDiscount   bool               `json:"apply_discount"`
	DiscountPercent float64            `json:"discount_percent"`
	Items           []OrderLineRequest `json:"items"`
}

type OrderModifyRequest struct {
	ApplyTax        *bool              `json:"apply_tax,omitempty"`
	TaxPercent      *float64           `json:"tax_percent,omitempty"`
	ApplyDiscount   *bool              `json:"apply_discount,omitempty"`
	DiscountPercent *float64           `json:"discount_percent,omitempty"`
	CustomerName    *string            `json:"customer_name,omitempty"`
	CustomerPhone   *string            `json:"customer_phone,omitempty"`
	CustomerAddress *string            `json:"customer_address,omitempty"`
	Items           []OrderLineRequest `json:"items"`
	ManagerPIN      string             `json:"manager_pin"`
}

type OrderStatusRequest struct {
	Status OrderStatus `json:"status"`
}

type PaymentRequest struct {
	Method string `json:"method"`
	Amount int64  `json:"amount"`
}

type OrderStatusResponse struct {
	Order       Order               `json:"order"`
	Consumption *ConsumptionOutcome `json:"consumption,omitempty"`
}

type OrderListResponse struct {
	Orders []Order `json:"orders"`
}

const (
	PaymentMethodCash      = "cash"
	PaymentMethodEasypaisa = "easypaisa"
	PaymentMethodCredit    = "credit"
)

type Supplier struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address,omitempty"`
	ContactNumber string    `json:"contact_number,omitempty"`
	Email         string    `json:"email,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type SupplierCreateRequest struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	ContactNumber string `json:"contact_number"`
	Email         string `json:"email"`
}

type SupplierBillItem struct {
	InventoryItemID string  `json:"inventory_item_id"`
	Quantity        float64 `json:"quantity"`
	Unit            Unit    `json:"unit"`
	Rate            float64 `json:"rate"`
	TotalAmount     float64 `json:"total_amount"`
}

type SupplierBillRequest struct {
	SupplierID    string             `json:"supplier_id"`
	PaymentMethod string             `json:"payment_method"`
	BillID        string             `json:"bill_id"`
	PaymentDate   string             `json:"payment_date,omitempty"`
	Remarks       string             `json:"remarks"`
	Items         []SupplierBillItem `json:"items"`
	CashAmount    float64            `json:"cash_amount"`
	CreditAmount  float64            `json:"credit_amount"`
}

// SupplierBill is one procurement bill. Receiving it adds stock to every
// listed inventory item.
type SupplierBill struct {
	ID            string             `json:"id"`
	SupplierID    string             `json:"supplier_id"`
	PaymentMethod string             `json:"payment_method"`
	BillID        string             `json:"bill_id,omitempty"`
	PaymentDate   *time.Time         `json:"payment_date,omitempty"`
	Remarks       string             `json:"remarks,omitempty"`
	GrandTotal    float64            `json:"grand_total"`
	CashAmount    float64            `json:"cash_amount"`
	CreditAmount  float64            `json:"credit_amount"`
	Items         []SupplierBillItem `json:"items"`
	CreatedBy     string             `json:"created_by,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

type SupplierBillFilter struct {
	SupplierID      string
	InventoryItemID string
	PaymentMethod   string
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	Role        string       `json:"role"`
	Permissions []Permission `json:"permissions"`
	ExpiresAt   string       `json:"expires_at"`
}

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

type Actor struct {
	Username    string
	Role        string
	Permissions []Permission
}

type StaffCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type StaffStatusRequest struct {
	Active *bool `json:"active"`
}

type StaffUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

// ActivityLog records who did what from the back office. Inventory
// consumption has its own record type.
type ActivityLog struct {
	ID            string    `json:"id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}
