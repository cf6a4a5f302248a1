package listing

import (
	"testing"
)

func validListing() Listing {
	return Listing{
		Reference: "AB-123",
		Operation: "Venta",
		Price:     320000,
		Rooms:     3,
		Title:     "Piso",
		Location:  "Encamp",
		URL:       "https://example.ad/piso/123",
		Website:   "example.ad",
	}
}

func TestGate_Accepts(t *testing.T) {
	gate := NewGate(450000)

	ok, reason := gate.Run(validListing())
	if !ok {
		t.Errorf("Expected record to pass, got reason: %s", reason)
	}
}

func TestGate_RejectsUnknownTitle(t *testing.T) {
	gate := NewGate(450000)

	l := validListing()
	l.Title = "N/A"
	if ok, _ := gate.Run(l); ok {
		t.Error("Expected rejection for unknown title")
	}

	l.Title = ""
	if ok, _ := gate.Run(l); ok {
		t.Error("Expected rejection for empty title")
	}
}

func TestGate_RejectsZeroPrice(t *testing.T) {
	gate := NewGate(450000)

	l := validListing()
	l.Price = 0
	if ok, _ := gate.Run(l); ok {
		t.Error("Expected rejection for zero price")
	}
}

func TestGate_RejectsPriceOverCeiling(t *testing.T) {
	gate := NewGate(450000)

	l := validListing()
	l.Price = 500000
	ok, reason := gate.Run(l)
	if ok {
		t.Error("Expected rejection for price over ceiling")
	}
	if reason == "" {
		t.Error("Expected a reason for the rejection")
	}

	l.Price = 450000
	if ok, _ := gate.Run(l); !ok {
		t.Error("Price exactly at the ceiling should pass")
	}
}

func TestGate_RejectsLocationOutsideAndorra(t *testing.T) {
	gate := NewGate(450000)

	l := validListing()
	l.Location = "N/A"
	if ok, _ := gate.Run(l); ok {
		t.Error("Expected rejection for N/A location")
	}

	l.Location = "Barcelona"
	if ok, _ := gate.Run(l); ok {
		t.Error("Expected rejection for location outside Andorra")
	}
}

func TestGate_DefaultCeiling(t *testing.T) {
	gate := NewGate(0)
	if gate.PriceCeiling != DefaultPriceCeiling {
		t.Errorf("Expected default ceiling %d, got %.0f", DefaultPriceCeiling, gate.PriceCeiling)
	}
}
