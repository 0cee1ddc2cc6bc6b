// Package fingerprint derives stable pseudo-identities for like
// deduplication from request metadata, without cookies or accounts.
package fingerprint

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"liveask/internal/domain"
)

// Engine derives fingerprints with a keyed BLAKE2b digest. The key mixes a
// process-scoped random salt with the event ID, so the same client maps to
// the same fingerprint within an event but fingerprints are not linkable
// across events. The salt is never persisted; a restart rotates it, which
// only degrades dedup (a client could like twice), never correctness.
type Engine struct {
	salt []byte
}

// New returns an Engine with a fresh random salt.
func New() (*Engine, error) {
	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate fingerprint salt: %w", err)
	}
	return &Engine{salt: salt}, nil
}

// NewWithSalt returns an Engine with a fixed salt. Intended for tests.
func NewWithSalt(salt []byte) *Engine {
	return &Engine{salt: salt}
}

// Derive implements domain.Fingerprinter. Empty metadata still produces a
// digest; dedup then collapses all such clients of one event together, an
// accepted approximation.
func (e *Engine) Derive(eventID, clientIP, userAgent string) domain.Fingerprint {
	key := blake2b.Sum256(append(e.salt, []byte(eventID)...))
	h, err := blake2b.New256(key[:])
	if err != nil {
		// Only reachable with an invalid key size, which Sum256 rules out.
		panic(err)
	}
	h.Write([]byte(clientIP))
	h.Write([]byte{0})
	h.Write([]byte(userAgent))
	return domain.Fingerprint(hex.EncodeToString(h.Sum(nil)[:16]))
}
