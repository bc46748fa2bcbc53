package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"restopos/backend/internal/businessday"
	"restopos/backend/internal/cache"
	"restopos/backend/internal/consumption"
	"restopos/backend/internal/domain"
	"restopos/backend/internal/notify"
	"restopos/backend/internal/store"
	"restopos/backend/internal/units"
	"restopos/backend/internal/xid"
)

var ErrPermissionDenied = errors.New("permission denied")

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo         store.Repository
	menuCache    cache.MenuCache
	menuCacheTTL time.Duration
	notifier     notify.Notifier
	days         *businessday.Resolver
	consumer     *consumption.Orchestrator
	logger       logrus.FieldLogger
	now          func() time.Time
}

func New(repo store.Repository, menuCache cache.MenuCache, menuCacheTTL time.Duration, notifier notify.Notifier, days *businessday.Resolver, logger logrus.FieldLogger) *Service {
	if menuCache == nil {
		menuCache = cache.NoopMenuCache{}
	}
	if menuCacheTTL <= 0 {
		menuCacheTTL = time.Minute
	}
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if days == nil {
		days, _ = businessday.New("UTC", 0)
	}

	return &Service{
		repo:         repo,
		menuCache:    menuCache,
		menuCacheTTL: menuCacheTTL,
		notifier:     notifier,
		days:         days,
		consumer:     consumption.New(repo, logger),
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func requirePermission(ctx context.Context, perm domain.Permission) (domain.Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || !actor.Can(perm) {
		return domain.Actor{}, fmt.Errorf("%w: %s", ErrPermissionDenied, perm)
	}
	return actor, nil
}

func actorName(ctx context.Context) string {
	if actor, ok := ActorFromContext(ctx); ok {
		return actor.Username
	}
	return "system"
}

func (s *Service) ListMenu(ctx context.Context) ([]domain.MenuItem, error) {
	items, hit, err := s.menuCache.Get(ctx, cache.MenuKey)
	if err != nil {
		s.logger.WithError(err).Warn("menu cache read failed")
	}
	if hit {
		return items, nil
	}

	items, err = s.repo.ListMenuItems(ctx, true)
	if err != nil {
		return nil, err
	}
	if err := s.menuCache.Set(ctx, cache.MenuKey, items, s.menuCacheTTL); err != nil {
		s.logger.WithError(err).Warn("menu cache write failed")
	}
	return items, nil
}

func (s *Service) GetMenuItem(ctx context.Context, id string) (domain.MenuItem, error) {
	item, err := s.repo.GetMenuItem(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.MenuItem{}, err
	}
	return *item, nil
}

func (s *Service) CreateMenuItem(ctx context.Context, req domain.MenuItemCreateRequest) (domain.MenuItem, error) {
	if _, err := requirePermission(ctx, domain.PermManageMenu); err != nil {
		return domain.MenuItem{}, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if req.Name == "" || req.Price < 0 {
		return domain.MenuItem{}, store.ErrInvalidInput
	}

	recipe, err := domain.NewRecipe(req.Type, req.Ingredients, req.DealItems)
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
	}
	switch r := recipe.(type) {
	case domain.SimpleRecipe:
		for i, ing := range r.Ingredients {
			if ing.Unit == "" {
				r.Ingredients[i].Unit = domain.UnitGram
				ing.Unit = domain.UnitGram
			}
			if strings.TrimSpace(ing.InventoryItemID) == "" || ing.Quantity <= 0 || !ing.Unit.Valid() {
				return domain.MenuItem{}, store.ErrInvalidInput
			}
		}
		if err := s.checkIngredientUnits(ctx, r.Ingredients); err != nil {
			return domain.MenuItem{}, err
		}
	case domain.CompositeRecipe:
		if len(r.Components) == 0 {
			return domain.MenuItem{}, store.ErrInvalidInput
		}
		for i, c := range r.Components {
			if (c.MenuItemID == "") == (c.CategoryID == "") {
				return domain.MenuItem{}, store.ErrInvalidInput
			}
			if c.Quantity == 0 {
				r.Components[i].Quantity = 1
			} else if c.Quantity < 1 {
				return domain.MenuItem{}, store.ErrInvalidInput
			}
		}
	}

	created, err := s.repo.CreateMenuItem(ctx, domain.MenuItem{
		ID:        xid.New("menu"),
		Name:      req.Name,
		Price:     req.Price,
		Category:  req.Category,
		Available: true,
		Recipe:    recipe,
	})
	if err != nil {
		return domain.MenuItem{}, err
	}
	if err := s.menuCache.Invalidate(ctx, cache.MenuKey); err != nil {
		s.logger.WithError(err).Warn("menu cache invalidate failed")
	}

	s.logAudit(ctx, "menu_item_create", "menu_item", created.ID, fmt.Sprintf("name=%s,type=%s,price=%d", created.Name, created.Type(), created.Price))
	return *created, nil
}

// checkIngredientUnits rejects recipes whose units can never be converted
// into the stored unit of the inventory item they draw from.
func (s *Service) checkIngredientUnits(ctx context.Context, ingredients []domain.Ingredient) error {
	ids := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		ids = append(ids, ing.InventoryItemID)
	}
	stock, err := s.repo.GetInventoryItemsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, ing := range ingredients {
		item, ok := stock[ing.InventoryItemID]
		if !ok {
			return fmt.Errorf("%w: inventory item %s", store.ErrNotFound, ing.InventoryItemID)
		}
		if !units.Compatible(ing.Unit, item.Unit) {
			return fmt.Errorf("%w: %s cannot be measured in %s", store.ErrInvalidInput, item.Name, ing.Unit)
		}
	}
	return nil
}

func (s *Service) ListInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	return s.repo.ListInventoryItems(ctx, domain.InventoryTypeConsumable)
}

func (s *Service) CreateInventoryItem(ctx context.Context, req domain.InventoryItemCreateRequest) (domain.InventoryItem, error) {
	if _, err := requirePermission(ctx, domain.PermManageInventory); err != nil {
		return domain.InventoryItem{}, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Type == "" {
		req.Type = domain.InventoryTypeNonConsumable
	}
	if req.Name == "" || !req.Unit.Valid() || req.Quantity < 0 || req.UnitPrice < 0 {
		return domain.InventoryItem{}, store.ErrInvalidInput
	}
	if req.Type != domain.InventoryTypeConsumable && req.Type != domain.InventoryTypeNonConsumable {
		return domain.InventoryItem{}, store.ErrInvalidInput
	}

	created, err := s.repo.CreateInventoryItem(ctx, domain.InventoryItem{
		ID:          xid.New("inv"),
		Name:        req.Name,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		UnitPrice:   req.UnitPrice,
		Type:        req.Type,
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		return domain.InventoryItem{}, err
	}

	s.logAudit(ctx, "inventory_create", "inventory_item", created.ID, fmt.Sprintf("name=%s,qty=%g%s", created.Name, created.Quantity, created.Unit))
	return *created, nil
}

func (s *Service) GetConsumptionRecord(ctx context.Context, orderID string) (domain.ConsumptionRecord, error) {
	record, err := s.repo.GetConsumptionRecord(ctx, strings.TrimSpace(orderID))
	if err != nil {
		return domain.ConsumptionRecord{}, err
	}
	return *record, nil
}

// ListConsumptionRecords returns the records written during the business day
// named by date, or the current one when date is empty.
func (s *Service) ListConsumptionRecords(ctx context.Context, date string, limit int) ([]domain.ConsumptionRecord, error) {
	if _, err := requirePermission(ctx, domain.PermViewConsumption); err != nil {
		return nil, err
	}
	from, to, err := s.dayRange(date)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 100
	}
	return s.repo.ListConsumptionRecords(ctx, from, to, limit)
}

func (s *Service) ListActivityLogs(ctx context.Context, date string, limit int) ([]domain.ActivityLog, error) {
	if _, err := requirePermission(ctx, domain.PermViewActivity); err != nil {
		return nil, err
	}
	from, to, err := s.dayRange(date)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 100
	}
	return s.repo.ListActivityLogs(ctx, from, to, limit)
}

func (s *Service) dayRange(date string) (time.Time, time.Time, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		from, to := s.days.Window(s.now())
		return from, to, nil
	}
	from, to, err := s.days.DayRange(date)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
	}
	return from, to, nil
}

func (s *Service) logAudit(ctx context.Context, action string, entityType string, entityID string, detail string) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateActivityLog(ctx, domain.ActivityLog{
		ID:            xid.New("act"),
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     s.now(),
	}); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"action": action,
			"entity": entityType + "/" + entityID,
		}).Warn("failed to write activity log")
	}
}

func (s *Service) publish(ctx context.Context, event string, order domain.Order) {
	if err := s.notifier.Publish(ctx, event, order); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"event":    event,
			"order_id": order.ID,
		}).Warn("failed to publish order event")
	}
}
