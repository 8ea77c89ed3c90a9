package assetid

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyOnce sync.Once
	entropy     *ulid.LockedMonotonicReader
)

// newEntropy returns the shared entropy source. Minting happens on concurrent
// upload workers and HTTP requests, so the monotonic reader is mutex-wrapped.
func newEntropy() *ulid.LockedMonotonicReader {
	entropyOnce.Do(func() {
		source := rand.NewSource(time.Now().UnixNano())
		entropy = &ulid.LockedMonotonicReader{
			MonotonicReader: ulid.Monotonic(rand.New(source), 0),
		}
	})
	return entropy
}

func mint(prefix string) string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), newEntropy())
	return prefix + "_" + strings.ToLower(id.String())
}

// NewRecord returns a rec_* ULID string used as a Record primary key.
func NewRecord() string {
	return mint("rec")
}

// NewAsset returns a med_* ULID string used as a deterministic remote
// content id when the caller does not supply one.
func NewAsset() string {
	return mint("med")
}

// IsRecord reports whether the string is a rec_* ULID.
func IsRecord(value string) bool {
	if !strings.HasPrefix(value, "rec_") {
		return false
	}
	_, err := Parse(value)
	return err == nil
}

// Parse strips the prefix and returns the ULID.
func Parse(value string) (ulid.ULID, error) {
	value = strings.TrimSpace(value)
	if idx := strings.IndexByte(value, '_'); idx >= 0 {
		value = value[idx+1:]
	}
	return ulid.Parse(value)
}
