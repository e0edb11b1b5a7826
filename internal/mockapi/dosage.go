package mockapi

import (
	"math"
	"regexp"
	"strconv"

	"github.com/Joszi2006/pillinfo/internal/lookup"
)

var (
	weightRe    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*kg`)
	ageSimpleRe = regexp.MustCompile(`(?i)age\s*:?\s*(\d+)`)
	ageWordRe   = regexp.MustCompile(`(?i)(\d+)\s*years?\s*old`)
)

// patientParams are the attributes extracted from free text accompanying
// an image lookup.
type patientParams struct {
	WeightKg float64
	AgeYears *int
}

// parsePatientParams pulls "NN kg" and "age NN" / "NN years old" out of
// free text. Missing attributes stay zero.
func parsePatientParams(text string) patientParams {
	var p patientParams
	if m := weightRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			p.WeightKg = v
		}
	}
	if m := ageSimpleRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			p.AgeYears = &v
		}
	} else if m := ageWordRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			p.AgeYears = &v
		}
	}
	return p
}

// calculateDosage applies pediatric dosing rules to the adult dose.
// Clark's rule (weight based) drives the recommendation; Young's and
// Fried's rules are reported alongside when the patient's age qualifies.
func calculateDosage(adultDoseMg float64, p patientParams) *lookup.DosageInfo {
	if adultDoseMg <= 0 || p.WeightKg <= 0 {
		return nil
	}

	info := &lookup.DosageInfo{
		AdultDoseMg:     adultDoseMg,
		PatientWeightKg: p.WeightKg,
		PatientAge:      p.AgeYears,
		Methods:         map[string]lookup.DosageMethod{},
	}

	clark := p.WeightKg / 70 * adultDoseMg
	info.Methods["clarks"] = lookup.DosageMethod{
		DoseMg:      round1(clark),
		Description: "Weight-based dose",
		Formula:     "(weight kg / 70) x adult dose",
	}
	info.RecommendedDoseMg = round1(clark)

	if p.AgeYears != nil {
		age := *p.AgeYears
		if age <= 18 {
			young := float64(age) / float64(age+12) * adultDoseMg
			info.Methods["youngs"] = lookup.DosageMethod{
				DoseMg:      round1(young),
				Description: "Age-based dose",
				Formula:     "(age / (age + 12)) x adult dose",
			}
		}
		if age < 2 {
			months := age * 12
			fried := float64(months) / 150 * adultDoseMg
			info.Methods["frieds"] = lookup.DosageMethod{
				DoseMg:      round1(fried),
				Description: "Infant dose by age in months",
				Formula:     "(age months / 150) x adult dose",
			}
			info.Warnings = append(info.Warnings, "Consult a pediatrician before dosing a child under 2.")
		}
	}

	if info.RecommendedDoseMg >= adultDoseMg {
		info.RecommendedDoseMg = adultDoseMg
		info.Warnings = append(info.Warnings, "Calculated dose meets the adult dose; use the adult dose.")
	}

	return info
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
