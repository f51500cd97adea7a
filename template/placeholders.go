package template

import (
	"encoding/base64"
	"encoding/binary"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// placeholderPrefix starts every generated key.
const placeholderPrefix = "jsoi~"

// Placeholders generates keys that stand in for pending deferred values.
// Keys are a keyed BLAKE2b digest of a sequence number; the key is a random
// per-generator nonce, so template text cannot predict them. Keys never
// contain tag markers or whitespace. Safe for concurrent use.
type Placeholders struct {
	nonce []byte
	seq   atomic.Uint64
}

// NewPlaceholders returns a generator with a fresh random nonce.
func NewPlaceholders() *Placeholders {
	id := uuid.New()
	return &Placeholders{nonce: id[:]}
}

// Next returns a new unique key.
func (p *Placeholders) Next() string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], p.seq.Add(1))

	// blake2b.New only fails for keys over 64 bytes.
	h, err := blake2b.New(18, p.nonce)
	if err != nil {
		panic(err)
	}
	h.Write(buf[:])
	return placeholderPrefix + base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// IsPlaceholder reports whether key looks like a generated key.
func IsPlaceholder(key string) bool {
	return strings.HasPrefix(key, placeholderPrefix) &&
		len(key) == len(placeholderPrefix)+base64.RawURLEncoding.EncodedLen(18)
}
