package conversation

import (
	"sync"

	"github.com/Joszi2006/pillinfo/internal/lookup"
)

// MaxRecentMatches bounds the recent-match list.
const MaxRecentMatches = 10

// RecentMatch links a resolved drug name to the bot entry that produced
// it.
type RecentMatch struct {
	DrugName  string `json:"drug_name"`
	MessageID int64  `json:"message_id"`
}

// MatchHistory is the deduplicated recent-result tracker derived from
// resolved conversation entries.
type MatchHistory struct {
	mu      sync.Mutex
	entries []RecentMatch
}

// NewMatchHistory returns an empty history.
func NewMatchHistory() *MatchHistory {
	return &MatchHistory{}
}

// Record inserts the result's drug name at the front of the history.
// Only exact matches with a resolved drug identity are recorded; a name
// already present (case-sensitive) is skipped, and the list is truncated
// to the MaxRecentMatches most recent.
func (h *MatchHistory) Record(res lookup.Result, messageID int64) {
	if !res.ExactMatch() {
		return
	}
	name := res.DrugInfo.DrugName
	if name == "" {
		name = "Unknown Drug"
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, e := range h.entries {
		if e.DrugName == name {
			return
		}
	}

	h.entries = append([]RecentMatch{{DrugName: name, MessageID: messageID}}, h.entries...)
	if len(h.entries) > MaxRecentMatches {
		h.entries = h.entries[:MaxRecentMatches]
	}
}

// Recent returns the matches, newest first.
func (h *MatchHistory) Recent() []RecentMatch {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]RecentMatch, len(h.entries))
	copy(out, h.entries)
	return out
}
