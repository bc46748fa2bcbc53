package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"restopos/backend/internal/domain"
	"restopos/backend/internal/notify"
	"restopos/backend/internal/store"
	"restopos/backend/internal/xid"
)

const maxAdjustmentPercent = 30

func (s *Service) ListOrders(ctx context.Context, status string, limit int) (domain.OrderListResponse, error) {
	st := domain.OrderStatus(strings.ToUpper(strings.TrimSpace(status)))
	if st != "" && !st.Valid() {
		return domain.OrderListResponse{}, store.ErrInvalidInput
	}
	if limit < 1 {
		limit = 200
	}
	orders, err := s.repo.ListOrders(ctx, st, limit)
	if err != nil {
		return domain.OrderListResponse{}, err
	}
	return domain.OrderListResponse{Orders: orders}, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Order{}, err
	}
	return *order, nil
}

func (s *Service) CreateOrder(ctx context.Context, req domain.OrderCreateRequest) (domain.Order, error) {
	if len(req.Items) == 0 {
		return domain.Order{}, fmt.Errorf("%w: items are required", store.ErrInvalidInput)
	}
	if req.OrderType == "delivery" && req.DeliveryMode == "self" && strings.TrimSpace(req.CustomerPhone) == "" {
		return domain.Order{}, fmt.Errorf("%w: customer phone is required for self delivery", store.ErrInvalidInput)
	}

	lines, err := s.buildLines(ctx, req.Items)
	if err != nil {
		return domain.Order{}, err
	}

	order := domain.Order{
		ID:           xid.New("ord"),
		TableNumber:  strings.TrimSpace(req.TableNumber),
		OrderType:    strings.TrimSpace(req.OrderType),
		DeliveryMode: strings.TrimSpace(req.DeliveryMode),
		Customer: domain.Customer{
			Name:    strings.TrimSpace(req.CustomerName),
			Phone:   strings.TrimSpace(req.CustomerPhone),
			Address: strings.TrimSpace(req.CustomerAddress),
		},
		Lines:           lines,
		Status:          domain.OrderStatusPending,
		ApplyTax:        req.ApplyTax,
		TaxPercent:      clampPercent(req.TaxPercent),
		ApplyDiscount:   req.ApplyDiscount,
		DiscountPercent: clampPercent(req.DiscountPercent),
		CreatedBy:       actorName(ctx),
		CreatedAt:       s.now(),
	}
	applyTotals(&order)

	created, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return domain.Order{}, err
	}

	s.publish(ctx, notify.EventOrderNew, *created)
	return *created, nil
}

// ModifyOrder rebuilds the lines and totals of an order. Orders from an
// earlier business day and orders whose stock was already consumed are
// locked.
func (s *Service) ModifyOrder(ctx context.Context, id string, req domain.OrderModifyRequest) (domain.Order, error) {
	if len(req.Items) == 0 {
		return domain.Order{}, fmt.Errorf("%w: items are required", store.ErrInvalidInput)
	}

	existing, err := s.repo.GetOrder(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.Order{}, err
	}
	if !s.days.Contains(s.now(), existing.CreatedAt) {
		return domain.Order{}, fmt.Errorf("%w: order is from an earlier business day", store.ErrOrderLocked)
	}
	if existing.InventoryDeducted {
		return domain.Order{}, fmt.Errorf("%w: inventory already consumed", store.ErrOrderLocked)
	}

	lines, err := s.buildLines(ctx, req.Items)
	if err != nil {
		return domain.Order{}, err
	}

	updated := *existing
	updated.Lines = lines
	if req.ApplyTax != nil {
		updated.ApplyTax = *req.ApplyTax
	}
	if req.TaxPercent != nil {
		updated.TaxPercent = clampPercent(*req.TaxPercent)
	}
	if req.ApplyDiscount != nil {
		updated.ApplyDiscount = *req.ApplyDiscount
	}
	if req.DiscountPercent != nil {
		updated.DiscountPercent = clampPercent(*req.DiscountPercent)
	}
	if req.CustomerName != nil {
		updated.Customer.Name = strings.TrimSpace(*req.CustomerName)
	}
	if req.CustomerPhone != nil {
		updated.Customer.Phone = strings.TrimSpace(*req.CustomerPhone)
	}
	if req.CustomerAddress != nil {
		updated.Customer.Address = strings.TrimSpace(*req.CustomerAddress)
	}
	applyTotals(&updated)

	saved, err := s.repo.UpdateOrder(ctx, updated)
	if err != nil {
		return domain.Order{}, err
	}

	s.logAudit(ctx, "order_modify", "order", saved.ID, fmt.Sprintf("order=%d,total=%d", saved.Number, saved.Total))
	s.publish(ctx, notify.EventOrderUpdate, *saved)
	return *saved, nil
}

// consumptionTimeout bounds an inventory consumption run. The run is detached
// from the caller's cancellation once the DONE claim has been committed.
const consumptionTimeout = 15 * time.Second

// UpdateOrderStatus moves an order between kitchen states. The first move
// into DONE consumes the order's raw materials; the status change stands
// even if some or all items could not be deducted.
func (s *Service) UpdateOrderStatus(ctx context.Context, id string, req domain.OrderStatusRequest) (domain.OrderStatusResponse, error) {
	status := domain.OrderStatus(strings.ToUpper(strings.TrimSpace(string(req.Status))))
	if !status.Valid() {
		return domain.OrderStatusResponse{}, fmt.Errorf("%w: invalid status value", store.ErrInvalidInput)
	}

	order, claimed, err := s.repo.TransitionOrderStatus(ctx, strings.TrimSpace(id), status, s.now())
	if err != nil {
		return domain.OrderStatusResponse{}, err
	}

	resp := domain.OrderStatusResponse{Order: *order}
	if claimed {
		consumeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), consumptionTimeout)
		result, err := s.consumer.Consume(consumeCtx, *order, actorName(ctx))
		cancel()
		if err != nil {
			s.logger.WithError(err).WithField("order_id", order.ID).Warn("inventory consumption failed, order update kept")
			resp.Consumption = &domain.ConsumptionOutcome{Triggered: true}
		} else {
			outcome := result.Outcome()
			resp.Consumption = &outcome
		}
	}

	s.publish(ctx, notify.EventOrderUpdate, *order)
	return resp, nil
}

func (s *Service) MarkKitchenPrinted(ctx context.Context, id string) (domain.Order, error) {
	order, err := s.repo.MarkKitchenPrinted(ctx, strings.TrimSpace(id), s.now())
	if err != nil {
		return domain.Order{}, err
	}
	s.publish(ctx, notify.EventOrderUpdate, *order)
	return *order, nil
}

func (s *Service) ReceivePayment(ctx context.Context, id string, req domain.PaymentRequest) (domain.Order, error) {
	method := strings.ToLower(strings.TrimSpace(req.Method))
	if method != domain.PaymentMethodCash && method != domain.PaymentMethodEasypaisa {
		return domain.Order{}, fmt.Errorf("%w: invalid payment method", store.ErrInvalidInput)
	}
	if req.Amount <= 0 {
		return domain.Order{}, fmt.Errorf("%w: invalid amount", store.ErrInvalidInput)
	}

	order, err := s.repo.RecordPayment(ctx, strings.TrimSpace(id), domain.Payment{
		Method:     method,
		Amount:     req.Amount,
		ReceivedAt: s.now(),
	})
	if errors.Is(err, store.ErrDuplicate) {
		return domain.Order{}, fmt.Errorf("%w: payment already received", store.ErrInvalidInput)
	}
	if err != nil {
		return domain.Order{}, err
	}

	s.publish(ctx, notify.EventOrderUpdate, *order)
	return *order, nil
}

// buildLines snapshots the requested menu items into order lines. Composite
// items take their fixed components from the menu and their category slots
// from the customer's selection. Unknown or unavailable items are dropped.
func (s *Service) buildLines(ctx context.Context, reqs []domain.OrderLineRequest) ([]domain.OrderLine, error) {
	ids := make([]string, 0, len(reqs))
	for _, r := range reqs {
		if r.Qty < 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", store.ErrInvalidInput)
		}
		ids = append(ids, strings.TrimSpace(r.MenuItemID))
		for _, sel := range r.DealSelection {
			ids = append(ids, sel.Items...)
		}
	}
	menu, err := s.repo.GetMenuItemsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// fixed deal components may not be in the request
	var extra []string
	for _, item := range menu {
		if deal, ok := item.Recipe.(domain.CompositeRecipe); ok {
			for _, c := range deal.Components {
				if _, loaded := menu[c.MenuItemID]; c.MenuItemID != "" && !loaded {
					extra = append(extra, c.MenuItemID)
				}
			}
		}
	}
	if len(extra) > 0 {
		more, err := s.repo.GetMenuItemsByIDs(ctx, extra)
		if err != nil {
			return nil, err
		}
		for id, item := range more {
			menu[id] = item
		}
	}

	lines := make([]domain.OrderLine, 0, len(reqs))
	for _, r := range reqs {
		item, ok := menu[strings.TrimSpace(r.MenuItemID)]
		if !ok || !item.Available {
			continue
		}
		qty := r.Qty
		if qty == 0 {
			qty = 1
		}
		line := domain.OrderLine{
			MenuItemID: item.ID,
			Name:       item.Name,
			Price:      item.Price,
			Qty:        qty,
			Notes:      strings.TrimSpace(r.Notes),
		}
		if deal, ok := item.Recipe.(domain.CompositeRecipe); ok {
			line.Composite = true
			line.Components = dealComponents(deal, r.DealSelection, menu)
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no orderable menu items", store.ErrInvalidInput)
	}
	return lines, nil
}

func dealComponents(deal domain.CompositeRecipe, selections []domain.DealSelection, menu map[string]domain.MenuItem) []domain.LineComponent {
	components := make([]domain.LineComponent, 0, len(deal.Components))
	for _, c := range deal.Components {
		if c.MenuItemID == "" {
			continue
		}
		name := "Deal Item"
		if item, ok := menu[c.MenuItemID]; ok {
			name = item.Name
		}
		qty := c.Quantity
		if qty < 1 {
			qty = 1
		}
		components = append(components, domain.LineComponent{MenuItemID: c.MenuItemID, Name: name, Qty: qty})
	}
	for _, sel := range selections {
		for _, id := range sel.Items {
			item, ok := menu[id]
			if !ok {
				continue
			}
			components = append(components, domain.LineComponent{MenuItemID: item.ID, Name: item.Name, Qty: 1})
		}
	}
	return components
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > maxAdjustmentPercent {
		return maxAdjustmentPercent
	}
	return v
}

// applyTotals recomputes subtotal, discount, tax and total from the lines.
// Amounts are whole currency units, rounded half up.
func applyTotals(order *domain.Order) {
	subtotal := decimal.Zero
	for _, line := range order.Lines {
		subtotal = subtotal.Add(decimal.NewFromInt(line.Price).Mul(decimal.NewFromInt(int64(line.Qty))))
	}

	discount := decimal.Zero
	if order.ApplyDiscount {
		discount = percentOf(subtotal, order.DiscountPercent)
	}
	tax := decimal.Zero
	if order.ApplyTax {
		tax = percentOf(subtotal, order.TaxPercent)
	}

	order.Subtotal = subtotal.IntPart()
	order.Discount = discount.IntPart()
	order.Tax = tax.IntPart()
	order.Total = subtotal.Sub(discount).Add(tax).Round(0).IntPart()
}

func percentOf(amount decimal.Decimal, percent float64) decimal.Decimal {
	return decimal.NewFromFloat(percent).Div(decimal.NewFromInt(100)).Mul(amount).Round(0)
}
