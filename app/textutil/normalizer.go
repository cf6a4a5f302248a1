// Package textutil cleans and parses the raw text scraped from the source
// sites: accent-folded free text, European-formatted prices and numbers
// embedded in surrounding markup text ("46,92 m²", "1.234.567 €").
package textutil

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NotAvailable is the sentinel for absent string fields.
const NotAvailable = "N/A"

var (
	// Whitelist: letters, digits, underscore, whitespace and the handful of
	// punctuation the listings legitimately carry.
	nonWhitelistRe = regexp.MustCompile(`[^\p{L}\p{N}_\s.,€/-]`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	priceCharsRe   = regexp.MustCompile(`[^\d.,]`)
	numberTokenRe  = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

	spanishTitle = cases.Title(language.Spanish)

	// NFKD-decompose, drop the combining marks, recompose.
	accentFolder = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// CleanText normalizes scraped text: accents are folded away, characters
// outside the whitelist are removed and whitespace runs collapse to single
// spaces. Empty input maps to the "N/A" sentinel.
func CleanText(text string) string {
	if text == "" || text == NotAvailable {
		return NotAvailable
	}

	folded, _, err := transform.String(accentFolder, text)
	if err == nil {
		text = folded
	}

	text = nonWhitelistRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// ParsePrice extracts a price from text like "234.500 €" or "1.234,56".
// Dots and commas are disambiguated assuming European formats; anything
// unparseable yields 0.
func ParsePrice(text string) float64 {
	if text == "" {
		return 0
	}

	cleaned := priceCharsRe.ReplaceAllString(text, "")

	hasDot := strings.Contains(cleaned, ".")
	hasComma := strings.Contains(cleaned, ",")

	switch {
	case hasDot && hasComma:
		// European grouping: 1.234.567,89 -> 1234567.89
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case hasDot:
		// A single dot followed by at most two digits is a decimal point,
		// otherwise dots are thousands separators.
		parts := strings.Split(cleaned, ".")
		if !(len(parts) == 2 && len(parts[1]) <= 2) {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	case hasComma:
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

// ParseNumber extracts the first integer or decimal token from text, with a
// comma accepted as decimal separator ("46,92 m²" -> 46.92). Returns 0 when
// no token is found.
func ParseNumber(text string) float64 {
	token := numberTokenRe.FindString(text)
	if token == "" {
		return 0
	}

	token = strings.ReplaceAll(token, ",", ".")
	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0
	}
	return value
}

// ParseCount is ParseNumber truncated to an integer, for room and bathroom
// counts embedded in text.
func ParseCount(text string) int {
	return int(ParseNumber(text))
}

// NormalizeOperation maps the operation label of any source language to the
// two canonical values "Venta" and "Alquiler". Unrecognized labels are
// cleaned and title-cased as-is.
func NormalizeOperation(operation string) string {
	lower := strings.ToLower(operation)
	switch {
	case strings.Contains(lower, "venta") || strings.Contains(lower, "venda") ||
		strings.Contains(lower, "vendre") || strings.Contains(lower, "sell"):
		return "Venta"
	case strings.Contains(lower, "alquiler") || strings.Contains(lower, "lloguer") ||
		strings.Contains(lower, "rent"):
		return "Alquiler"
	}
	return spanishTitle.String(CleanText(operation))
}

// SplitTitle returns the part of a combined headline before " en "
// ("Apartamento en Ordino" -> "Apartamento").
func SplitTitle(text string) string {
	if idx := strings.Index(text, "en "); idx >= 0 {
		return strings.TrimSpace(text[:idx])
	}
	return text
}

// SplitAddress returns the part of a combined headline after the first
// " en " ("Apartamento en Ordino" -> "Ordino"), or "N/A".
func SplitAddress(text string) string {
	if idx := strings.Index(text, "en "); idx >= 0 {
		return strings.TrimSpace(text[idx+len("en "):])
	}
	return NotAvailable
}
