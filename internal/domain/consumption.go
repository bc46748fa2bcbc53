package domain

import "time"

const ConsumptionActionDecrement = "DECREMENT"

type SkipReason string

const (
	ReasonDeducted           SkipReason = "DEDUCTED"
	ReasonNotFound           SkipReason = "NOT_FOUND"
	ReasonInvalidStockQty    SkipReason = "INVALID_STOCK_QTY"
	ReasonUnitMismatch       SkipReason = "UNIT_MISMATCH"
	ReasonInvalidRequiredQty SkipReason = "INVALID_REQUIRED_QTY"
	ReasonInsufficientStock  SkipReason = "INSUFFICIENT_STOCK"
	ReasonDecrementFailed    SkipReason = "DECREMENT_FAILED"
)

// ConsumptionEntry is the outcome for one inventory item within a
// consumption run. Quantities are in the inventory item's own unit.
type ConsumptionEntry struct {
	InventoryItemID string     `json:"inventory_item_id"`
	InventoryName   string     `json:"inventory_name,omitempty"`
	InventoryUnit   Unit       `json:"inventory_unit,omitempty"`
	RequiredQty     float64    `json:"required_qty"`
	DeductedQty     float64    `json:"deducted_qty"`
	BeforeQty       *float64   `json:"before_qty,omitempty"`
	AfterQty        *float64   `json:"after_qty,omitempty"`
	Skipped         bool       `json:"skipped"`
	Reason          SkipReason `json:"reason"`
}

type ConsumptionSummary struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// ConsumptionRecord is written once per order and never updated.
type ConsumptionRecord struct {
	ID          string             `json:"id"`
	OrderID     string             `json:"order_id"`
	OrderNumber int64              `json:"order_number"`
	Action      string             `json:"action"`
	CreatedBy   string             `json:"created_by,omitempty"`
	Entries     []ConsumptionEntry `json:"items"`
	Summary     ConsumptionSummary `json:"summary"`
	CreatedAt   time.Time          `json:"created_at"`
}

// ConsumptionOutcome is what a status update reports back about the
// inventory run it triggered.
type ConsumptionOutcome struct {
	Triggered       bool   `json:"triggered"`
	AlreadyConsumed bool   `json:"already_consumed,omitempty"`
	RecordID        string `json:"record_id,omitempty"`
	Updated         int    `json:"updated"`
	Skipped         int    `json:"skipped"`
}
