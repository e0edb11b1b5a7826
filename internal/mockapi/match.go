package mockapi

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Joszi2006/pillinfo/internal/lookup"
)

var doseRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*mg`)

// Form words that make a query specific enough to pin down one product.
var formWords = []string{"tablet", "capsule", "chewable", "liquid", "syrup", "spray", "gel", "suspension"}

// extractIngredient scans free text for the first known ingredient name.
// Returns "" when nothing in the text matches the catalog.
func extractIngredient(text string, ingredients []string) string {
	lowered := strings.ToLower(text)
	for _, ing := range ingredients {
		if strings.Contains(lowered, ing) {
			return ing
		}
	}
	return ""
}

// isSpecific reports whether the text carries a dose or a dosage form,
// i.e. enough detail to distinguish between products of one ingredient.
func isSpecific(text string) bool {
	lowered := strings.ToLower(text)
	if doseRe.MatchString(lowered) {
		return true
	}
	for _, w := range formWords {
		if strings.Contains(lowered, w) {
			return true
		}
	}
	return false
}

// refine keeps the products consistent with every dose and form detail in
// the text. A detail the text does not mention filters nothing.
func refine(products []Product, text string) []Product {
	lowered := strings.ToLower(text)

	var wantDose string
	if m := doseRe.FindStringSubmatch(lowered); m != nil {
		wantDose = m[1] + "mg"
	}
	var wantForms []string
	for _, w := range formWords {
		if strings.Contains(lowered, w) {
			wantForms = append(wantForms, w)
		}
	}

	var kept []Product
	for _, p := range products {
		name := strings.ToLower(p.Name)
		if wantDose != "" && !strings.Contains(strings.ReplaceAll(name, " ", ""), wantDose) {
			continue
		}
		match := true
		for _, f := range wantForms {
			if !strings.Contains(name, f) {
				match = false
				break
			}
		}
		if match {
			kept = append(kept, p)
		}
	}
	return kept
}

// evaluate turns a free-text query into the response envelope. The match
// type depends on how specific the query was and how many products
// survive refinement: a specific query narrowing to exactly one product
// is exact, anything broader is multiple or vague.
func evaluate(s *Store, text string) (lookup.Result, error) {
	ingredients, err := s.Ingredients()
	if err != nil {
		return lookup.Result{}, err
	}

	ingredient := extractIngredient(text, ingredients)
	if ingredient == "" {
		return lookup.Result{
			Success:   false,
			Error:     "No drug name detected.",
			MatchType: lookup.MatchNone,
		}, nil
	}

	products, err := s.ProductsFor(ingredient)
	if err != nil {
		return lookup.Result{}, err
	}
	if len(products) == 0 {
		return lookup.Result{
			Success:   false,
			Error:     fmt.Sprintf("'%s' not found in database.", ingredient),
			MatchType: lookup.MatchNone,
		}, nil
	}

	specific := isSpecific(text)
	refined := refine(products, text)
	if len(refined) == 0 {
		refined = products
	}

	res := lookup.Result{
		Success:         true,
		BrandName:       titleCase(ingredient),
		MatchedProducts: toWire(refined),
		Source:          "mock",
	}

	switch {
	case specific && len(refined) == 1:
		p := refined[0]
		res.MatchType = lookup.MatchExact
		res.BestMatch = &lookup.Product{Name: p.Name, RxCUI: p.RxCUI}
		res.DrugInfo = &lookup.DrugInfo{
			DrugName:    p.Name,
			GenericName: p.GenericName,
		}
		if p.Warning != "" {
			res.DrugInfo.Warnings = []string{p.Warning}
		}
	case len(refined) > 1:
		res.MatchType = lookup.MatchMultiple
	default:
		res.MatchType = lookup.MatchVague
	}

	return res, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func toWire(products []Product) []lookup.Product {
	out := make([]lookup.Product, len(products))
	for i, p := range products {
		out[i] = lookup.Product{Name: p.Name, RxCUI: p.RxCUI}
	}
	return out
}
