package validation

import (
	"fmt"

	"sumitpay/internal/models"
)

// DonationItems checks the line items flagged as donations. When donations
// are disabled any donation item is refused.
func DonationItems(items []models.OrderItem, enabled bool) Errors {
	v := New()
	for i, it := range items {
		if !it.IsDonation {
			continue
		}
		if !enabled {
			v.AddError(fmt.Sprintf("items[%d].is_donation", i), "Donations are not enabled")
			continue
		}
		v.Check(it.Name != "", fmt.Sprintf("items[%d].name", i),
			fmt.Sprintf("Donation item at index %d must have a name", i))
		v.Check(it.Price.IsPositive(), fmt.Sprintf("items[%d].price", i),
			fmt.Sprintf("Donation item at index %d must have a valid price", i))
	}
	if v.Valid() {
		return nil
	}
	return v.Errors
}
