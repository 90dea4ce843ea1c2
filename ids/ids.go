// Package ids implements the two identifier generators the hy-chain core
// relies on: a UUIDv7 for a block's public identifier, and a short-ish
// "long id" for its internal storage key. Both are timestamp-prefixed so
// that ids produced by a given process sort in roughly creation order, and
// both derive their non-timestamp bits from a CSPRNG so that ids from a
// fleet of concurrent producers do not collide.
package ids

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	mathrand "math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UUIDv7 returns a lowercase, hyphenated UUIDv7 string: the current
// millisecond timestamp in the first 48 bits, version nibble 7, and the
// remaining bits from a CSPRNG, per RFC 9562.
func UUIDv7() (string, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("ids: generate uuidv7: %w", err)
	}
	return u.String(), nil
}

// PublicBlockID returns a UUIDv7 with its four hyphens removed, lowercase,
// per spec.md §6 ("Public block id").
func PublicBlockID() (string, error) {
	u, err := UUIDv7()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(u, "-", ""), nil
}

// longIDTailBytes is the number of random bytes shuffled into a LongID's
// tail after the fixed 12 hex character timestamp prefix.
const longIDTailBytes = 10

// LongID concatenates a 12-hex-character, left-padded millisecond
// timestamp with a shuffled random tail, lowercase, per spec.md §4.I.
func LongID() (string, error) {
	ts := uint64(time.Now().UnixMilli())
	prefix := fmt.Sprintf("%012x", ts)

	tail := make([]byte, longIDTailBytes)
	if _, err := rand.Read(tail); err != nil {
		return "", fmt.Errorf("ids: generate long id tail: %w", err)
	}
	tailHex := []byte(hex.EncodeToString(tail))
	mathrand.Shuffle(len(tailHex), func(i, j int) {
		tailHex[i], tailHex[j] = tailHex[j], tailHex[i]
	})

	return prefix + string(tailHex), nil
}
