package writer

import (
	"github.com/canopyhq/pos-sync-server/internal/pos"
)

const (
	// minWeightQuantity is the smallest quantity at which a weight-priced
	// product stays visible online.
	minWeightQuantity = 10

	// minUnitQuantity is the smallest quantity at which a unit-priced
	// product stays visible online.
	minUnitQuantity = 2
)

// Hidden reports whether an inventory item must be stored tombstoned even
// though the feed still carries it: the POS marked it unavailable online,
// or its quantity is too low to sell.
func Hidden(item *pos.InventoryItem) bool {
	if item.NotAvailableOnline {
		return true
	}
	switch item.PricingType {
	case pos.PricingWeight:
		return item.Quantity < minWeightQuantity
	default:
		return item.Quantity < minUnitQuantity
	}
}
