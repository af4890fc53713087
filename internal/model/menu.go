package model

import "github.com/shopspring/decimal"

// MenuItem is a sellable catalog entry.  The POS core consumes the
// catalog read-only; editing it belongs to a separate admin surface.
type MenuItem struct {
	ID        uint64          // menu_items.id
	SectionID uint64          // menu_items.section_id
	Name      string          // menu_items.name
	Price     decimal.Decimal // menu_items.price
	Available bool            // menu_items.available
}

// MenuItemVariant is a priced variation of a menu item (size, flavour).
// When an order line references a variant, the variant price overrides
// the item price.
type MenuItemVariant struct {
	ID         uint64          // menu_item_variants.id
	MenuItemID uint64          // menu_item_variants.menu_item_id
	Name       string          // menu_item_variants.name
	Price      decimal.Decimal // menu_item_variants.price
}
