package task

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	mrand "math/rand/v2"
	"strconv"
)

// entropy is swapped in tests to exercise the fallback path.
var entropy io.Reader = rand.Reader

// NewID returns 128 random bits as 32 hex characters. If the system CSPRNG is
// unavailable it degrades to a pseudorandom base-36 string; ids only need to be
// unique within one collection.
func NewID() string {
	var b [16]byte
	if _, err := io.ReadFull(entropy, b[:]); err == nil {
		return hex.EncodeToString(b[:])
	}
	return strconv.FormatUint(mrand.Uint64(), 36) + strconv.FormatUint(mrand.Uint64(), 36)
}
