package textutil

import (
	"testing"
)

func TestCleanText_Empty(t *testing.T) {
	if got := CleanText(""); got != NotAvailable {
		t.Errorf("Expected %q for empty input, got %q", NotAvailable, got)
	}
	if got := CleanText(NotAvailable); got != NotAvailable {
		t.Errorf("Expected %q to pass through, got %q", NotAvailable, got)
	}
}

func TestCleanText_AccentsAndWhitespace(t *testing.T) {
	got := CleanText("  Café   Ático ")
	if got != "Cafe Atico" {
		t.Errorf("Expected 'Cafe Atico', got %q", got)
	}
}

func TestCleanText_Whitelist(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"234.500 €", "234.500 €"},
		{"Pis dúplex, 3 hab.", "Pis duplex, 3 hab."},
		{"C/ Major 12-14", "C/ Major 12-14"},
		{"precio: ¡450.000€!", "precio 450.000€"},
	}

	for _, tt := range tests {
		if got := CleanText(tt.input); got != tt.expected {
			t.Errorf("CleanText(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestCleanText_Idempotent(t *testing.T) {
	inputs := []string{"  Café   Ático ", "Borda d'Envalira", "Xalet a l'Aldosa, 250 m²"}
	for _, input := range inputs {
		once := CleanText(input)
		twice := CleanText(once)
		if once != twice {
			t.Errorf("CleanText not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"1.234,56", 1234.56},
		{"1234.50", 1234.50},
		{"1.234.567", 1234567},
		{"234.500 €", 234500},
		{"1234,50", 1234.50},
		{"450000", 450000},
		{"", 0},
		{"consultar", 0},
		{"€", 0},
	}

	for _, tt := range tests {
		if got := ParsePrice(tt.input); got != tt.expected {
			t.Errorf("ParsePrice(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"46,92 m²", 46.92},
		{"3 hab", 3},
		{"120m2", 120},
		{"Superficie: 85.5 m2", 85.5},
		{"sin datos", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := ParseNumber(tt.input); got != tt.expected {
			t.Errorf("ParseNumber(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestParseCount(t *testing.T) {
	if got := ParseCount("2 baños"); got != 2 {
		t.Errorf("Expected 2, got %d", got)
	}
	if got := ParseCount("N/A"); got != 0 {
		t.Errorf("Expected 0, got %d", got)
	}
}

func TestNormalizeOperation(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"venta", "Venta"},
		{"En venda", "Venta"},
		{"Vendre", "Venta"},
		{"ALQUILER", "Alquiler"},
		{"lloguer", "Alquiler"},
		{"rent", "Alquiler"},
		{"traspaso", "Traspaso"},
	}

	for _, tt := range tests {
		if got := NormalizeOperation(tt.input); got != tt.expected {
			t.Errorf("NormalizeOperation(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestSplitTitleAndAddress(t *testing.T) {
	title := "Apartamento en Ordino"
	if got := SplitTitle(title); got != "Apartamento" {
		t.Errorf("SplitTitle(%q) = %q", title, got)
	}
	if got := SplitAddress(title); got != "Ordino" {
		t.Errorf("SplitAddress(%q) = %q", title, got)
	}

	plain := "Estudio reformado"
	if got := SplitTitle(plain); got != plain {
		t.Errorf("SplitTitle(%q) = %q, expected passthrough", plain, got)
	}
	if got := SplitAddress(plain); got != NotAvailable {
		t.Errorf("SplitAddress(%q) = %q, expected %q", plain, got, NotAvailable)
	}
}
