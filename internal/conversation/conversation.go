// Package conversation manages the ordered message log for one
// medication-lookup session.
//
// Each user action follows the same pass: append an optimistic user
// entry, append a pending bot placeholder, await the gateway, then
// replace the placeholder's payload in place. Message IDs are assigned at
// creation, strictly increasing, and never reused; replacement preserves
// ID and position, so a result that arrives late still lands on the right
// entry no matter how submissions interleave.
//
// Submissions are not serialized. Two overlapping submissions each get
// their own placeholder/result pair and may resolve out of order; only
// placeholder identity guarantees the correct message is updated.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Joszi2006/pillinfo/internal/imaging"
	"github.com/Joszi2006/pillinfo/internal/lookup"
	"github.com/Joszi2006/pillinfo/internal/staging"
)

// Kind classifies a conversation entry.
type Kind string

const (
	KindWelcome Kind = "welcome"
	KindUser    Kind = "user"
	KindBot     Kind = "bot"
)

const (
	welcomeText = "Hi! Ask me about a medication, or send a photo of its packaging."

	// searchingText is the sentinel payload of a pending bot entry.
	searchingText = "searching"
)

// ErrNoStagedImages is returned by SubmitImages when nothing is staged.
var ErrNoStagedImages = errors.New("no images staged")

// Message is one conversation entry. A bot message is pending while
// Result is nil and resolved once the gateway envelope replaces the
// sentinel.
type Message struct {
	ID     int64          `json:"id"`
	Kind   Kind           `json:"kind"`
	Text   string         `json:"text,omitempty"`
	Result *lookup.Result `json:"result,omitempty"`
}

// Pending reports whether this entry is still awaiting its result.
func (m Message) Pending() bool {
	return m.Kind == KindBot && m.Result == nil
}

// Gateway is the lookup operations the log depends on. Both return the
// uniform envelope and never fail with a Go error, so the log handles a
// transport outage and a "not found" identically.
type Gateway interface {
	ResolveByText(ctx context.Context, text string, opts lookup.TextOptions) lookup.Result
	ResolveByImages(ctx context.Context, images [][]byte, additionalText string) lookup.Result
}

// Log is the ordered conversation log and its orchestration state
// machine. All mutation goes through SubmitText, SubmitImages, and
// Teardown; the log is safe for concurrent submissions.
type Log struct {
	gateway Gateway
	resizer imaging.Resizer
	staged  *staging.Area
	history *MatchHistory

	mu       sync.Mutex
	nextID   int64
	messages []Message
}

// NewLog creates a log seeded with the welcome entry. The staging area is
// owned by the caller's session but cleared by the log on successful
// image sends and on Teardown.
func NewLog(gw Gateway, staged *staging.Area) *Log {
	l := &Log{
		gateway: gw,
		staged:  staged,
		history: NewMatchHistory(),
	}
	l.append(KindWelcome, welcomeText)
	return l
}

// Staging returns the session's image staging area.
func (l *Log) Staging() *staging.Area { return l.staged }

// History returns the session's recent-match history.
func (l *Log) History() *MatchHistory { return l.history }

// Messages returns a copy of the log in append order.
func (l *Log) Messages() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// SubmitText runs one text lookup pass: optimistic user entry, pending
// placeholder, gateway round trip, in-place resolution. It returns the
// bot entry's ID and the resolved envelope.
func (l *Log) SubmitText(ctx context.Context, text string) (int64, lookup.Result) {
	l.mu.Lock()
	l.append(KindUser, text)
	placeholder := l.append(KindBot, searchingText)
	l.mu.Unlock()

	res := l.gateway.ResolveByText(ctx, text, lookup.DefaultTextOptions())

	l.resolve(placeholder, res)
	l.history.Record(res, placeholder)
	return placeholder, res
}

// SubmitImages sends the staged image set. The user entry carries a
// generated caption; the staged files are resized concurrently before
// transmission. A resize failure aborts the pass before any network call
// and resolves the placeholder with an inline failure, leaving the
// staging area untouched so the user can retry. After the gateway call
// returns, success or business failure alike, the staging area is
// cleared: the send happened.
func (l *Log) SubmitImages(ctx context.Context, additionalText string) (int64, lookup.Result, error) {
	files := l.staged.Files()
	if len(files) == 0 {
		return 0, lookup.Result{}, ErrNoStagedImages
	}

	l.mu.Lock()
	l.append(KindUser, caption(len(files)))
	placeholder := l.append(KindBot, searchingText)
	l.mu.Unlock()

	raw := make([][]byte, len(files))
	for i, f := range files {
		raw[i] = f.Data
	}
	resized, err := l.resizer.ResizeBatch(ctx, raw)
	if err != nil {
		slog.Warn("image batch processing failed", "count", len(files), "error", err)
		res := lookup.Result{Success: false, Error: fmt.Sprintf("could not process images: %v", err)}
		l.resolve(placeholder, res)
		return placeholder, res, nil
	}

	res := l.gateway.ResolveByImages(ctx, resized, additionalText)

	l.resolve(placeholder, res)
	l.staged.Clear()
	l.history.Record(res, placeholder)
	return placeholder, res, nil
}

// Teardown releases session-owned resources: every staged preview handle
// is revoked. The log itself is left readable.
func (l *Log) Teardown() {
	l.staged.Clear()
}

// append adds an entry and returns its ID. Caller holds l.mu except
// during construction.
func (l *Log) append(kind Kind, text string) int64 {
	l.nextID++
	l.messages = append(l.messages, Message{ID: l.nextID, Kind: kind, Text: text})
	return l.nextID
}

// resolve replaces the placeholder's payload, keyed by ID so late
// arrivals land on the right entry regardless of interleaving.
func (l *Log) resolve(id int64, res lookup.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.messages) - 1; i >= 0; i-- {
		if l.messages[i].ID == id {
			r := res
			l.messages[i].Result = &r
			return
		}
	}
}

func caption(n int) string {
	if n == 1 {
		return "Uploaded 1 image"
	}
	return fmt.Sprintf("Uploaded %d images", n)
}
