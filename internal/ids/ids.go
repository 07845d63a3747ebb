package ids

import (
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// New returns a lexicographically sortable identifier suitable for storage keys.
func New() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// NewTracking returns a signer tracking identifier. The value doubles as the
// vendor-side client user id, which is case-preserved on echo, so lowercase
// keeps comparisons trivial.
func NewTracking() string {
	return "trk-" + strings.ToLower(New())
}

// NewBatchName derives a unique bulk batch name from a human prefix.
func NewBatchName(prefix string) string {
	if prefix == "" {
		prefix = "batch"
	}
	return prefix + "-" + strings.ToLower(New())
}
