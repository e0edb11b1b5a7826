// Package staging holds the set of images a user has selected but not yet
// sent.
//
// The Area is the exclusive owner of its staged files and their preview
// handles: every handle it creates is revoked on removal, on successful
// send (Clear), and on teardown (Clear). A handle left live after its
// image leaves the area is a defect.
package staging

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/Joszi2006/pillinfo/internal/imaging"
)

// MaxImages is the most images that may be staged at once.
const MaxImages = 5

var (
	// ErrNoValidImages means validation rejected every file in the batch.
	ErrNoValidImages = errors.New("no valid images selected")
	// ErrTooManyImages means admitting the batch would exceed MaxImages.
	ErrTooManyImages = errors.New("too many images staged")
	// ErrIndexOutOfRange means RemoveAt was called with a bad index.
	ErrIndexOutOfRange = errors.New("staged image index out of range")
)

// Handle is a revocable display reference for one staged image. Consumers
// hold the token; the bytes stop resolving once the handle is revoked.
type Handle struct {
	token string

	mu      sync.Mutex
	data    []byte
	revoked bool
}

func newHandle(data []byte) *Handle {
	return &Handle{token: uuid.NewString(), data: data}
}

// Token returns the opaque identifier used to display this preview.
func (h *Handle) Token() string { return h.token }

// Bytes returns the preview image bytes, or false if the handle has been
// revoked.
func (h *Handle) Bytes() ([]byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.revoked {
		return nil, false
	}
	return h.data, true
}

// Revoke releases the preview. Idempotent.
func (h *Handle) Revoke() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.revoked = true
	h.data = nil
}

// Revoked reports whether the handle has been released.
func (h *Handle) Revoked() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.revoked
}

// Area is the transient holding set of selected images. All mutation of
// the staged sequence and its preview handles goes through Area methods.
type Area struct {
	mu       sync.Mutex
	files    []imaging.CandidateFile
	previews []*Handle
}

// NewArea returns an empty staging area.
func NewArea() *Area {
	return &Area{}
}

// Add validates and stages a batch of files. Admission is all-or-nothing:
// if no file passes validation, ErrNoValidImages is returned and nothing
// changes; if staging every valid file would exceed MaxImages,
// ErrTooManyImages is returned and nothing changes. Returns the number of
// files staged.
func (a *Area) Add(files []imaging.CandidateFile) (int, error) {
	valid := make([]imaging.CandidateFile, 0, len(files))
	for _, f := range files {
		if imaging.Validate(f) {
			valid = append(valid, f)
		}
	}
	if len(valid) == 0 {
		return 0, ErrNoValidImages
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.files)+len(valid) > MaxImages {
		return 0, ErrTooManyImages
	}
	for _, f := range valid {
		a.files = append(a.files, f)
		a.previews = append(a.previews, newHandle(f.Data))
	}
	return len(valid), nil
}

// RemoveAt revokes the preview at index i and removes the file and handle,
// shifting later entries down. A re-added file goes to the end, not back
// to i.
func (a *Area) RemoveAt(i int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if i < 0 || i >= len(a.files) {
		return ErrIndexOutOfRange
	}
	a.previews[i].Revoke()
	a.files = append(a.files[:i], a.files[i+1:]...)
	a.previews = append(a.previews[:i], a.previews[i+1:]...)
	return nil
}

// Clear revokes every preview handle and empties both sequences. Called
// after a successful send and when the staging view is discarded.
func (a *Area) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, h := range a.previews {
		h.Revoke()
	}
	a.files = nil
	a.previews = nil
}

// Len returns the number of staged images.
func (a *Area) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.files)
}

// Files returns a copy of the staged files in insertion order.
func (a *Area) Files() []imaging.CandidateFile {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]imaging.CandidateFile, len(a.files))
	copy(out, a.files)
	return out
}

// Previews returns the preview handles in insertion order, parallel to
// Files.
func (a *Area) Previews() []*Handle {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Handle, len(a.previews))
	copy(out, a.previews)
	return out
}

// Preview resolves a preview token to its bytes. Returns false for
// unknown or revoked tokens.
func (a *Area) Preview(token string) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, h := range a.previews {
		if h.Token() == token {
			return h.Bytes()
		}
	}
	return nil, false
}
