package mockapi

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/Joszi2006/pillinfo/internal/lookup"
)

// The stand-in is exercised through the real client so both ends of the
// wire contract are covered at once.
func newTestService(t *testing.T) *lookup.Client {
	t.Helper()
	store := openSeeded(t)
	srv := httptest.NewServer(NewHandler(store))
	t.Cleanup(srv.Close)
	return lookup.New(srv.URL + "/api")
}

func TestTextLookupOverWire(t *testing.T) {
	c := newTestService(t)

	res := c.ResolveByText(context.Background(), "I have Tylenol 200MG Oral Tablet", lookup.DefaultTextOptions())
	if !res.ExactMatch() {
		t.Fatalf("result = %+v", res)
	}
	if res.DrugInfo.DrugName != "Tylenol 200MG Oral Tablet" {
		t.Errorf("drug name = %q", res.DrugInfo.DrugName)
	}
	if res.Source != "mock" {
		t.Errorf("source = %q", res.Source)
	}
}

func TestTextLookupNotFoundOverWire(t *testing.T) {
	c := newTestService(t)

	res := c.ResolveByText(context.Background(), "unpronounceable elixir", lookup.DefaultTextOptions())
	if res.Success {
		t.Fatalf("result = %+v", res)
	}
	if res.MatchType != lookup.MatchNone || res.Error == "" {
		t.Errorf("result = %+v", res)
	}
}

func TestImageLookupWithDosage(t *testing.T) {
	c := newTestService(t)

	res := c.ResolveByImages(context.Background(),
		[][]byte{[]byte("jpeg-bytes")},
		"advil 200mg capsule, patient is 28 kg and age 8")
	if !res.ExactMatch() {
		t.Fatalf("result = %+v", res)
	}
	if res.DosageInfo == nil {
		t.Fatal("expected dosage info")
	}
	// Clark's rule on Advil's 400mg adult dose: (28 / 70) x 400 = 160.
	if res.DosageInfo.RecommendedDoseMg != 160 {
		t.Errorf("recommended = %v", res.DosageInfo.RecommendedDoseMg)
	}
	if res.DosageInfo.PatientAge == nil || *res.DosageInfo.PatientAge != 8 {
		t.Errorf("age = %v", res.DosageInfo.PatientAge)
	}
}

func TestImageLookupNoDrugDetected(t *testing.T) {
	c := newTestService(t)

	res := c.ResolveByImages(context.Background(), [][]byte{[]byte("jpeg-bytes")}, "")
	if res.Success {
		t.Fatalf("result = %+v", res)
	}
	if res.Error != "No drug name detected in image." {
		t.Errorf("error = %q", res.Error)
	}
}

func TestImageLookupWithoutPatientAttributes(t *testing.T) {
	c := newTestService(t)

	res := c.ResolveByImages(context.Background(), [][]byte{[]byte("jpeg-bytes")}, "zyrtec 10mg tablet")
	if !res.ExactMatch() {
		t.Fatalf("result = %+v", res)
	}
	if res.DosageInfo != nil {
		t.Errorf("dosage info = %+v without a weight", res.DosageInfo)
	}
}
