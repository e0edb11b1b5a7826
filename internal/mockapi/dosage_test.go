package mockapi

import "testing"

func TestParsePatientParams(t *testing.T) {
	tests := []struct {
		text    string
		wantKg  float64
		wantAge int
		hasAge  bool
	}{
		{"weighs 25kg", 25, 0, false},
		{"patient is 17.5 kg and age 3", 17.5, 3, true},
		{"my kid is 4 years old, about 18kg", 18, 4, true},
		{"no attributes here", 0, 0, false},
	}
	for _, tt := range tests {
		p := parsePatientParams(tt.text)
		if p.WeightKg != tt.wantKg {
			t.Errorf("%q: weight = %v, want %v", tt.text, p.WeightKg, tt.wantKg)
		}
		if tt.hasAge {
			if p.AgeYears == nil || *p.AgeYears != tt.wantAge {
				t.Errorf("%q: age = %v, want %d", tt.text, p.AgeYears, tt.wantAge)
			}
		} else if p.AgeYears != nil {
			t.Errorf("%q: unexpected age %d", tt.text, *p.AgeYears)
		}
	}
}

func TestCalculateDosageWeightBased(t *testing.T) {
	info := calculateDosage(650, patientParams{WeightKg: 35})
	if info == nil {
		t.Fatal("expected dosage info")
	}
	// (35 / 70) x 650 = 325
	if info.RecommendedDoseMg != 325 {
		t.Errorf("recommended = %v", info.RecommendedDoseMg)
	}
	if _, ok := info.Methods["clarks"]; !ok {
		t.Error("weight-based method missing")
	}
	if _, ok := info.Methods["youngs"]; ok {
		t.Error("age-based method present without an age")
	}
}

func TestCalculateDosageWithAge(t *testing.T) {
	age := 8
	info := calculateDosage(400, patientParams{WeightKg: 28, AgeYears: &age})
	if info == nil {
		t.Fatal("expected dosage info")
	}
	// Clark's: (28 / 70) x 400 = 160
	if info.RecommendedDoseMg != 160 {
		t.Errorf("recommended = %v", info.RecommendedDoseMg)
	}
	// Young's: (8 / 20) x 400 = 160
	if got := info.Methods["youngs"].DoseMg; got != 160 {
		t.Errorf("age-based dose = %v", got)
	}
	if _, ok := info.Methods["frieds"]; ok {
		t.Error("infant method present for an 8 year old")
	}
}

func TestCalculateDosageInfant(t *testing.T) {
	age := 1
	info := calculateDosage(650, patientParams{WeightKg: 10, AgeYears: &age})
	if info == nil {
		t.Fatal("expected dosage info")
	}
	if _, ok := info.Methods["frieds"]; !ok {
		t.Error("infant method missing for age 1")
	}
	if len(info.Warnings) == 0 {
		t.Error("expected an infant warning")
	}
}

func TestCalculateDosageCapsAtAdultDose(t *testing.T) {
	info := calculateDosage(650, patientParams{WeightKg: 90})
	if info == nil {
		t.Fatal("expected dosage info")
	}
	if info.RecommendedDoseMg != 650 {
		t.Errorf("recommended = %v, want adult dose", info.RecommendedDoseMg)
	}
	if len(info.Warnings) == 0 {
		t.Error("expected a cap warning")
	}
}

func TestCalculateDosageMissingInputs(t *testing.T) {
	if info := calculateDosage(0, patientParams{WeightKg: 30}); info != nil {
		t.Errorf("info = %+v for zero adult dose", info)
	}
	if info := calculateDosage(650, patientParams{}); info != nil {
		t.Errorf("info = %+v for zero weight", info)
	}
}
