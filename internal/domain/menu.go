package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

type MenuItemType string

const (
	MenuItemTypeItem MenuItemType = "item"
	MenuItemTypeDeal MenuItemType = "deal"
)

// Recipe describes what a menu item is made of. It is either a SimpleRecipe
// or a CompositeRecipe.
type Recipe interface {
	recipeType() MenuItemType
}

type Ingredient struct {
	InventoryItemID string  `json:"inventory_item_id"`
	Quantity        float64 `json:"quantity"`
	Unit            Unit    `json:"unit"`
}

// Component is one slot of a composite menu item. Exactly one of MenuItemID
// and CategoryID is set; a category slot is filled by the customer when the
// order is placed.
type Component struct {
	MenuItemID string `json:"item,omitempty"`
	CategoryID string `json:"category,omitempty"`
	Quantity   int    `json:"quantity"`
}

type SimpleRecipe struct {
	Ingredients []Ingredient
}

type CompositeRecipe struct {
	Components []Component
}

func (SimpleRecipe) recipeType() MenuItemType    { return MenuItemTypeItem }
func (CompositeRecipe) recipeType() MenuItemType { return MenuItemTypeDeal }

type MenuItem struct {
	ID        string
	Name      string
	Price     int64
	Category  string
	Available bool
	Recipe    Recipe
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Type reports the persisted kind of the item. A nil recipe is a plain item
// with no ingredients.
func (m MenuItem) Type() MenuItemType {
	if m.Recipe == nil {
		return MenuItemTypeItem
	}
	return m.Recipe.recipeType()
}

type menuItemJSON struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Price       int64        `json:"price"`
	Category    string       `json:"category,omitempty"`
	Available   bool         `json:"is_available"`
	Type        MenuItemType `json:"type"`
	DealItems   []Component  `json:"deal_items,omitempty"`
	Ingredients []Ingredient `json:"ingredients,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (m MenuItem) MarshalJSON() ([]byte, error) {
	out := menuItemJSON{
		ID:        m.ID,
		Name:      m.Name,
		Price:     m.Price,
		Category:  m.Category,
		Available: m.Available,
		Type:      m.Type(),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	switch r := m.Recipe.(type) {
	case SimpleRecipe:
		out.Ingredients = r.Ingredients
	case CompositeRecipe:
		out.DealItems = r.Components
	}
	return json.Marshal(out)
}

func (m *MenuItem) UnmarshalJSON(data []byte) error {
	var in menuItemJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	recipe, err := NewRecipe(in.Type, in.Ingredients, in.DealItems)
	if err != nil {
		return err
	}
	*m = MenuItem{
		ID:        in.ID,
		Name:      in.Name,
		Price:     in.Price,
		Category:  in.Category,
		Available: in.Available,
		Recipe:    recipe,
		CreatedAt: in.CreatedAt,
		UpdatedAt: in.UpdatedAt,
	}
	return nil
}

// NewRecipe builds the recipe variant for a persisted type tag. An empty tag
// is treated as a plain item.
func NewRecipe(t MenuItemType, ingredients []Ingredient, components []Component) (Recipe, error) {
	switch t {
	case "", MenuItemTypeItem:
		return SimpleRecipe{Ingredients: ingredients}, nil
	case MenuItemTypeDeal:
		return CompositeRecipe{Components: components}, nil
	default:
		return nil, fmt.Errorf("unknown menu item type %q", t)
	}
}

type MenuItemCreateRequest struct {
	Name        string       `json:"name"`
	Price       int64        `json:"price"`
	Category    string       `json:"category"`
	Type        MenuItemType `json:"type"`
	DealItems   []Component  `json:"deal_items"`
	Ingredients []Ingredient `json:"ingredients"`
}
