package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores fetched artifacts (caption tracks, transcripts) so repeat
// runs against the same source skip the network.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a stable cache key from an identifier such as
// "captions:<videoID>". Hashing keeps keys filesystem-safe regardless of
// what the identifier contains.
func Key(id string) string {
	hash := sha256.Sum256([]byte(id))
	return "podsift:v1:" + hex.EncodeToString(hash[:])
}
