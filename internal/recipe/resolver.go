package recipe

import (
	"math"

	"restopos/backend/internal/domain"
)

// Quantity is one raw requirement in the unit the recipe declared it in.
type Quantity struct {
	Qty  float64
	Unit domain.Unit
}

// Requirements maps inventory item ids to the raw quantities an order needs.
// Quantities are kept unsummed so that unit normalisation happens against the
// stored item.
type Requirements struct {
	order []string
	items map[string][]Quantity
}

// IDs returns the inventory item ids in first-seen order.
func (r Requirements) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r Requirements) For(id string) []Quantity {
	return r.items[id]
}

func (r Requirements) Len() int {
	return len(r.order)
}

func (r *Requirements) push(id string, qty float64, unit domain.Unit) {
	if id == "" || !positive(qty) {
		return
	}
	if r.items == nil {
		r.items = map[string][]Quantity{}
	}
	if _, seen := r.items[id]; !seen {
		r.order = append(r.order, id)
	}
	r.items[id] = append(r.items[id], Quantity{Qty: qty, Unit: unit})
}

// MenuItemIDs lists the distinct menu items whose recipes Resolve will read.
// Composite lines contribute their components, not themselves.
func MenuItemIDs(lines []domain.OrderLine) []string {
	seen := map[string]struct{}{}
	out := []string{}
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, line := range lines {
		if line.Composite {
			for _, c := range line.Components {
				add(c.MenuItemID)
			}
			continue
		}
		add(line.MenuItemID)
	}
	return out
}

// Resolve expands order lines into raw inventory requirements. Lines or
// components that cannot be resolved contribute nothing.
func Resolve(lines []domain.OrderLine, menu map[string]domain.MenuItem) Requirements {
	var reqs Requirements
	for _, line := range lines {
		lineQty := float64(line.Qty)
		if !positive(lineQty) {
			continue
		}
		if line.Composite {
			for _, c := range line.Components {
				addIngredients(&reqs, menu, c.MenuItemID, lineQty*float64(c.Qty))
			}
			continue
		}
		addIngredients(&reqs, menu, line.MenuItemID, lineQty)
	}
	return reqs
}

func addIngredients(reqs *Requirements, menu map[string]domain.MenuItem, menuItemID string, multiplier float64) {
	if !positive(multiplier) {
		return
	}
	item, ok := menu[menuItemID]
	if !ok {
		return
	}
	switch r := item.Recipe.(type) {
	case domain.SimpleRecipe:
		for _, ing := range r.Ingredients {
			reqs.push(ing.InventoryItemID, ing.Quantity*multiplier, ing.Unit)
		}
	case domain.CompositeRecipe:
		// nested deals are not expanded
	}
}

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
