package conversation

import (
	"fmt"
	"testing"

	"github.com/Joszi2006/pillinfo/internal/lookup"
)

func TestRecordExactMatch(t *testing.T) {
	h := NewMatchHistory()
	h.Record(exactResult("Tylenol"), 3)

	recent := h.Recent()
	if len(recent) != 1 {
		t.Fatalf("got %d entries, want 1", len(recent))
	}
	if recent[0].DrugName != "Tylenol" || recent[0].MessageID != 3 {
		t.Errorf("entry = %+v", recent[0])
	}
}

func TestRecordIgnoresNonExact(t *testing.T) {
	h := NewMatchHistory()

	h.Record(lookup.Result{Success: false, Error: "nope"}, 1)
	h.Record(lookup.Result{Success: true, MatchType: lookup.MatchMultiple}, 2)
	h.Record(lookup.Result{Success: true, MatchType: lookup.MatchExact}, 3) // no DrugInfo

	if got := len(h.Recent()); got != 0 {
		t.Errorf("got %d entries, want 0", got)
	}
}

func TestRecordIdempotentForSameName(t *testing.T) {
	h := NewMatchHistory()
	h.Record(exactResult("Tylenol"), 3)
	h.Record(exactResult("Tylenol"), 9)

	recent := h.Recent()
	if len(recent) != 1 {
		t.Fatalf("got %d entries, want 1", len(recent))
	}
	// The original entry wins; the duplicate is skipped, not refreshed.
	if recent[0].MessageID != 3 {
		t.Errorf("MessageID = %d, want 3", recent[0].MessageID)
	}
}

func TestRecordCaseSensitiveNames(t *testing.T) {
	h := NewMatchHistory()
	h.Record(exactResult("Tylenol"), 1)
	h.Record(exactResult("TYLENOL"), 2)

	if got := len(h.Recent()); got != 2 {
		t.Errorf("got %d entries, want 2 (names compared case-sensitively)", got)
	}
}

func TestRecordUnknownDrugFallback(t *testing.T) {
	h := NewMatchHistory()
	h.Record(lookup.Result{
		Success:   true,
		MatchType: lookup.MatchExact,
		DrugInfo:  &lookup.DrugInfo{},
	}, 5)

	recent := h.Recent()
	if len(recent) != 1 || recent[0].DrugName != "Unknown Drug" {
		t.Errorf("recent = %+v, want Unknown Drug fallback", recent)
	}
}

func TestRecordBoundedNewestFirst(t *testing.T) {
	h := NewMatchHistory()
	for i := 0; i < 15; i++ {
		h.Record(exactResult(fmt.Sprintf("Drug-%d", i)), int64(i))
	}

	recent := h.Recent()
	if len(recent) != MaxRecentMatches {
		t.Fatalf("got %d entries, want %d", len(recent), MaxRecentMatches)
	}
	if recent[0].DrugName != "Drug-14" {
		t.Errorf("newest = %q, want Drug-14", recent[0].DrugName)
	}
	if recent[MaxRecentMatches-1].DrugName != "Drug-5" {
		t.Errorf("oldest kept = %q, want Drug-5", recent[MaxRecentMatches-1].DrugName)
	}
}
