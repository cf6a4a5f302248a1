package listing

import (
	"fmt"

	"github.com/arasmu/andorra-props/app/location"
	"github.com/arasmu/andorra-props/app/textutil"
)

// DefaultPriceCeiling is the highest price the tracker cares about.
const DefaultPriceCeiling = 450000

// Gate decides whether a normalized record is worth persisting. All checks
// must pass; a failing record is dropped before it reaches storage.
type Gate struct {
	PriceCeiling float64
}

func NewGate(priceCeiling float64) *Gate {
	if priceCeiling <= 0 {
		priceCeiling = DefaultPriceCeiling
	}
	return &Gate{PriceCeiling: priceCeiling}
}

// Run returns whether the record passes, and the reason when it does not.
func (g *Gate) Run(l Listing) (bool, string) {
	if l.Title == "" || l.Title == textutil.NotAvailable {
		return false, "unknown title"
	}
	if l.Price == 0 {
		return false, "price unknown or zero"
	}
	if l.Price > g.PriceCeiling {
		return false, fmt.Sprintf("price %.0f exceeds ceiling %.0f", l.Price, g.PriceCeiling)
	}
	if !location.InAndorra(l.Location) {
		return false, fmt.Sprintf("location '%s' outside Andorra", l.Location)
	}
	return true, ""
}
