package listing

import (
	"testing"
)

func TestBuilder_NormalizesFields(t *testing.T) {
	builder := NewBuilder()

	raw := RawListing{
		Reference: " Ref. 4521 ",
		Operation: "venda",
		Price:     "234.500 €",
		Rooms:     "3 hab",
		Bathrooms: "2 baños",
		Surface:   "92,5 m²",
		Title:     "Ático  dúplex",
		Location:  "Ordino",
		Address:   "N/A",
		URL:       "https://example.ad/atic/4521",
		Website:   "example.ad",
	}

	got := builder.Run(raw, nil)

	if got.Reference != "Ref. 4521" {
		t.Errorf("Reference = %q", got.Reference)
	}
	if got.Operation != "Venta" {
		t.Errorf("Operation = %q", got.Operation)
	}
	if got.Price != 234500 {
		t.Errorf("Price = %v", got.Price)
	}
	if got.Rooms != 3 || got.Bathrooms != 2 {
		t.Errorf("Rooms/Bathrooms = %d/%d", got.Rooms, got.Bathrooms)
	}
	if got.Surface != 92.5 {
		t.Errorf("Surface = %v", got.Surface)
	}
	if got.Title != "Atico duplex" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Location != "Ordino" {
		t.Errorf("Location = %q", got.Location)
	}
	if got.URL != raw.URL || got.Website != raw.Website {
		t.Error("URL and website must pass through untouched")
	}
}

func TestBuilder_ClassifiesSpecialVillage(t *testing.T) {
	builder := NewBuilder()

	raw := RawListing{
		Title:    "Estudio",
		Location: "Encamp",
		Price:    "95.000",
		URL:      "https://example.ad/estudio/9",
	}

	got := builder.Run(raw, func() (string, error) {
		return "A pie de pistas en el Pas de la Casa", nil
	})

	if got.Location != "Pas de la Casa" {
		t.Errorf("Expected village remap, got %q", got.Location)
	}
}
