// Package imaging validates candidate upload files and downscales them
// into a compact transport format.
package imaging

// MaxFileSize is the largest file accepted for upload (10 MiB).
const MaxFileSize = 10 << 20

// CandidateFile is a user-selected file before validation. MediaType is
// the declared type, not a sniffed one: validation classifies what the
// picker handed over, decoding is where lies get caught.
type CandidateFile struct {
	Name      string
	MediaType string
	Data      []byte
}

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// Validate reports whether the file is an acceptable image: a declared
// type on the allow-list and a size within MaxFileSize. Pure predicate,
// no side effects.
func Validate(f CandidateFile) bool {
	if !allowedTypes[f.MediaType] {
		return false
	}
	if len(f.Data) > MaxFileSize {
		return false
	}
	return true
}
