package lookup

// Result is the uniform envelope returned by both lookup operations.
// Transport failures and "not found" business failures share the same
// shape: Success is false and Error carries a printable reason.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	BrandName       string      `json:"brand_name,omitempty"`
	BestMatch       *Product    `json:"best_match,omitempty"`
	MatchedProducts []Product   `json:"matched_products,omitempty"`
	MatchType       string      `json:"match_type,omitempty"`
	DrugInfo        *DrugInfo   `json:"drug_info,omitempty"`
	DosageInfo      *DosageInfo `json:"dosage_info,omitempty"`
	Source          string      `json:"source,omitempty"`
}

// Match types reported by the lookup service.
const (
	MatchExact    = "exact"
	MatchMultiple = "multiple"
	MatchNone     = "none"
	MatchVague    = "vague"
)

// Product is one drug product concept from the lookup service.
type Product struct {
	Name  string `json:"name"`
	RxCUI string `json:"rxcui,omitempty"`
}

// DrugInfo carries the resolved drug identity for an exact match.
type DrugInfo struct {
	DrugName    string   `json:"drug_name"`
	GenericName string   `json:"generic_name,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

// DosageInfo is the pediatric dosage calculation attached when the
// request carried patient attributes.
type DosageInfo struct {
	AdultDoseMg       float64                 `json:"adult_dose_mg"`
	PatientWeightKg   float64                 `json:"patient_weight_kg"`
	PatientAge        *int                    `json:"patient_age,omitempty"`
	RecommendedDoseMg float64                 `json:"recommended_dose_mg"`
	Methods           map[string]DosageMethod `json:"methods,omitempty"`
	Warnings          []string                `json:"warnings,omitempty"`
}

// DosageMethod is one calculation rule's output.
type DosageMethod struct {
	DoseMg      float64 `json:"dose_mg"`
	Description string  `json:"description,omitempty"`
	Formula     string  `json:"formula,omitempty"`
}

// ExactMatch reports whether the result is an exact match with a resolved
// drug identity. Only these results are eligible for the recent-match
// history.
func (r Result) ExactMatch() bool {
	return r.Success && r.MatchType == MatchExact && r.DrugInfo != nil
}
