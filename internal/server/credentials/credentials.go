// Package credentials derives and compares the one-way digests of worker
// login codes and recognizes the fixed administrator code.
package credentials

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/lemroudj/factory-backend/internal/server/config"
)

// Hasher turns plaintext login codes into digests. The salt is a fixed
// application-wide suffix, not per-user: equal codes always yield equal
// digests, which is what makes digest-equality login lookups possible.
type Hasher struct {
	salt      string
	adminCode string
}

func NewHasher(cfg *config.Config) *Hasher {
	return &Hasher{salt: cfg.CodeSalt, adminCode: cfg.AdminCode}
}

// Hash returns the lowercase hex SHA-256 digest of code plus the salt.
func (h *Hasher) Hash(code string) string {
	sum := sha256.Sum256([]byte(code + h.salt))
	return hex.EncodeToString(sum[:])
}

// IsAdminCode reports whether code is the fixed administrator code. The
// comparison is plaintext on purpose: the admin identity is synthesized and
// never stored, so there is no digest to match against.
func (h *Hasher) IsAdminCode(code string) bool {
	return subtle.ConstantTimeCompare([]byte(code), []byte(h.adminCode)) == 1
}
