// Package location maps the free-text location labels used by the source
// sites to Andorra villages. Sites tend to label whole parishes ("Encamp",
// "Canillo") even when a listing sits in a specific hamlet; the detail-page
// description usually names the actual village, so classification is a
// cheap keyword pass optionally confirmed against that description.
package location

import (
	"regexp"
	"strings"

	"github.com/arasmu/andorra-props/app/textutil"
)

// Canonical names returned by the village classifier.
const (
	PasDeLaCasa    = "Pas de la Casa"
	Arinsal        = "Arinsal"
	BordesEnvalira = "Bordes d'Envalira"
)

// andorraKeywords names the parishes, villages and site-specific location
// slugs accepted as Andorra. Matching is lowercase containment.
var andorraKeywords = []string{
	"andorra", "escaldes", "engordany", "sant julia", "sant julià", "encamp", "canillo",
	"massana", "la massana", "ordino", "pas de la casa", "arinsal", "bordes", "envalira",
	"tarter", "el tarter", "soldeu", "incles", "pal", "serrat", "el serrat", "les bons",
	"santa coloma", "erts", "llorts", "sispony", "ransol", "aixovall", "nagol",
	"bixessarri", "aixàs", "meritxell", "vila", "anyós", "els cortals", "centre",
	"andorra la vella", "escaldes engordany", "la massana centro urbano", "encamp centro urbano",
	"canillo centro urbano", "pas_de_la_casa", "santa_coloma_distrito", "andorra_la_vella_centre",
	"escaldes_engordany_centro_urbano", "la_massana_centro_urbano", "encamp_centro_urbano",
	"canillo_centro_urbano",
}

var (
	pasDeLaCasaRes = compileAll(
		`pas\s+de\s+la\s+casa`,
		`pas\s+casa`,
		`paso\s+de\s+la\s+casa`,
		`paso\s+casa`,
		`pas\s+de\s+casa`,
	)
	arinsalRes = compileAll(
		`\barinsal\b`,
		`estació\s+arinsal`,
		`estacion\s+arinsal`,
		`pistes\s+arinsal`,
		`pistas\s+arinsal`,
	)
	bordesRes = compileAll(
		`bordes\s+d['’]?envalira`,
		`bordes\s+de\s+envalira`,
		`bordes\s+envalira`,
		`\bbordes\b`,
	)
)

func compileAll(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		res = append(res, regexp.MustCompile(p))
	}
	return res
}

// InAndorra reports whether a location label names somewhere in Andorra.
// The sentinel and empty strings are never Andorra.
func InAndorra(locationText string) bool {
	if locationText == "" || locationText == textutil.NotAvailable {
		return false
	}

	lower := strings.ToLower(locationText)
	for _, keyword := range andorraKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// DescriptionFetcher lazily retrieves the detail-page description of a
// listing. It is only invoked when a classification heuristic triggers.
type DescriptionFetcher func() (string, error)

// Classifier resolves umbrella parish labels to the specific villages the
// sites hide behind them.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Run remaps a location label to one of three known villages when the label
// suggests the village's parent area and the listing description confirms
// it. The checks are mutually exclusive and evaluated in a fixed order, so
// a description naming two villages resolves to the first one checked. When
// no heuristic triggers, fetch is never called and the label is returned
// unchanged. Fetch failures and empty descriptions count as "no match".
func (c *Classifier) Run(locationText string, fetch DescriptionFetcher) string {
	lower := strings.ToLower(locationText)

	if strings.Contains(lower, "encamp") || strings.Contains(lower, "andorra") {
		if confirm(fetch, pasDeLaCasaRes) {
			return PasDeLaCasa
		}
	} else if strings.Contains(lower, "massana") {
		if confirm(fetch, arinsalRes) {
			return Arinsal
		}
	} else if strings.Contains(lower, "canillo") {
		if confirm(fetch, bordesRes) {
			return BordesEnvalira
		}
	}

	return locationText
}

// MatchesPasDeLaCasa reports whether free text names Pas de la Casa.
func MatchesPasDeLaCasa(text string) bool { return matchAny(text, pasDeLaCasaRes) }

// MatchesArinsal reports whether free text names Arinsal.
func MatchesArinsal(text string) bool { return matchAny(text, arinsalRes) }

// MatchesBordesEnvalira reports whether free text names Bordes d'Envalira.
func MatchesBordesEnvalira(text string) bool { return matchAny(text, bordesRes) }

func confirm(fetch DescriptionFetcher, res []*regexp.Regexp) bool {
	if fetch == nil {
		return false
	}

	description, err := fetch()
	if err != nil || description == "" {
		return false
	}

	return matchAny(description, res)
}

func matchAny(text string, res []*regexp.Regexp) bool {
	if text == "" {
		return false
	}

	lower := strings.ToLower(text)
	for _, re := range res {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}
