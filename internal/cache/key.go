package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key returns the cache key for source analyzed as lang: the hex SHA-256 of
// the language, a NUL separator and the source bytes. The separator keeps
// ("py", "thon...") and ("python", "...") apart.
func Key(lang string, source []byte) string {
	h := sha256.New()
	h.Write([]byte(lang))
	h.Write([]byte{0})
	h.Write(source)
	return hex.EncodeToString(h.Sum(nil))
}
