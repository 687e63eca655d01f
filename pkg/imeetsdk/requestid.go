package imeetsdk

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	requestIDOnce    sync.Once
	requestIDMu      sync.Mutex
	requestIDEntropy *ulid.MonotonicEntropy
)

// newRequestID returns a lexicographically sortable ULID used as X-Request-ID.
func newRequestID() string {
	requestIDOnce.Do(func() {
		requestIDEntropy = ulid.Monotonic(rand.Reader, 0)
	})

	requestIDMu.Lock()
	defer requestIDMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), requestIDEntropy).String()
}
