package consumption

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"restopos/backend/internal/domain"
	"restopos/backend/internal/inventory"
	"restopos/backend/internal/recipe"
)

// Repository is the slice of storage a consumption run touches.
type Repository interface {
	inventory.Decrementer
	HasConsumed(ctx context.Context, orderID string) (bool, error)
	GetMenuItemsByIDs(ctx context.Context, ids []string) (map[string]domain.MenuItem, error)
	GetInventoryItemsByIDs(ctx context.Context, ids []string) (map[string]domain.InventoryItem, error)
	CreateConsumptionRecord(ctx context.Context, record domain.ConsumptionRecord) (*domain.ConsumptionRecord, error)
}

type Result struct {
	AlreadyConsumed bool
	RecordID        string
	Updated         int
	Skipped         int
	Entries         []domain.ConsumptionEntry
}

// Outcome converts the result into the shape reported to API clients.
func (r Result) Outcome() domain.ConsumptionOutcome {
	return domain.ConsumptionOutcome{
		Triggered:       !r.AlreadyConsumed,
		AlreadyConsumed: r.AlreadyConsumed,
		RecordID:        r.RecordID,
		Updated:         r.Updated,
		Skipped:         r.Skipped,
	}
}

type Orchestrator struct {
	repo   Repository
	ledger *inventory.Ledger
	logger logrus.FieldLogger
	now    func() time.Time
}

func New(repo Repository, logger logrus.FieldLogger) *Orchestrator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Orchestrator{
		repo:   repo,
		ledger: inventory.NewLedger(repo),
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Consume deducts the raw materials of a completed order and records the
// outcome. It runs at most once per order: a second call finds the existing
// record and does nothing. Individual items that cannot be deducted are
// reported in the entries and never fail the run.
func (o *Orchestrator) Consume(ctx context.Context, order domain.Order, actor string) (Result, error) {
	log := o.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.Number,
	})

	consumed, err := o.repo.HasConsumed(ctx, order.ID)
	if err != nil {
		return Result{}, fmt.Errorf("check consumption record: %w", err)
	}
	if consumed {
		log.Info("inventory already consumed for order")
		return Result{AlreadyConsumed: true}, nil
	}
	if len(order.Lines) == 0 {
		return Result{}, nil
	}

	menu, err := o.repo.GetMenuItemsByIDs(ctx, recipe.MenuItemIDs(order.Lines))
	if err != nil {
		return Result{}, fmt.Errorf("load menu items: %w", err)
	}
	reqs := recipe.Resolve(order.Lines, menu)
	if reqs.Len() == 0 {
		log.Info("order has no inventory requirements")
		return Result{}, nil
	}

	stock, err := o.repo.GetInventoryItemsByIDs(ctx, reqs.IDs())
	if err != nil {
		return Result{}, fmt.Errorf("load inventory items: %w", err)
	}

	result := Result{Entries: make([]domain.ConsumptionEntry, 0, reqs.Len())}
	for _, id := range reqs.IDs() {
		var item *domain.InventoryItem
		if found, ok := stock[id]; ok {
			item = &found
		}
		entry := o.ledger.Settle(ctx, item, id, reqs.For(id))
		if entry.Skipped {
			result.Skipped++
			log.WithFields(logrus.Fields{
				"inventory_item_id": id,
				"reason":            entry.Reason,
			}).Warn("inventory item skipped")
		} else {
			result.Updated++
		}
		result.Entries = append(result.Entries, entry)
	}

	record, err := o.repo.CreateConsumptionRecord(ctx, domain.ConsumptionRecord{
		OrderID:     order.ID,
		OrderNumber: order.Number,
		Action:      domain.ConsumptionActionDecrement,
		CreatedBy:   actor,
		Entries:     result.Entries,
		Summary:     domain.ConsumptionSummary{Updated: result.Updated, Skipped: result.Skipped},
		CreatedAt:   o.now(),
	})
	if err != nil {
		log.WithError(err).Warn("failed to write consumption record")
	} else {
		result.RecordID = record.ID
	}

	log.WithFields(logrus.Fields{
		"updated": result.Updated,
		"skipped": result.Skipped,
	}).Info("inventory consumed for order")
	return result, nil
}
