package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a deterministic summary cache key. The fingerprint ties the key
// to the source dataset state so stale summaries never survive a data refresh.
func Key(approach, targetID, model, fingerprint string) string {
	raw := fmt.Sprintf("%s|%s|%s|%s", approach, targetID, model, fingerprint)
	hash := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(hash[:])
}
