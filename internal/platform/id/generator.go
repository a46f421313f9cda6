package id

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"
)

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

// ObjectIDGenerator produces 24-character hex ids: a 4-byte big-endian unix
// timestamp followed by 8 random bytes. The shape matches the legacy document
// ids already in circulation, so IsValid accepts both old and new ids.
type ObjectIDGenerator struct {
	now func() time.Time
}

func NewObjectIDGenerator() *ObjectIDGenerator {
	return &ObjectIDGenerator{now: time.Now}
}

func (g *ObjectIDGenerator) NewID() (string, error) {
	var buf [12]byte
	binary.BigEndian.PutUint32(buf[:4], uint32(g.now().Unix()))
	if _, err := rand.Read(buf[4:]); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return hex.EncodeToString(buf[:]), nil
}

// IsValid reports whether v has the 24-char lowercase-hex object id shape.
// Transport uses it to reject malformed ids before they reach the core.
func IsValid(v string) bool {
	if len(v) != 24 {
		return false
	}
	for i := 0; i < len(v); i++ {
		c := v[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
