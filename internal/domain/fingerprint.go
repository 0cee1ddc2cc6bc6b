package domain

// Fingerprint is a pseudo-identity derived from client metadata, used only
// for like deduplication. It is stable for one client within one event and
// not linkable across events.
type Fingerprint string

// Fingerprinter derives a fingerprint from request metadata. Derivation must
// succeed even for empty metadata; the degraded result merely raises the
// false-negative rate of dedup.
type Fingerprinter interface {
	Derive(eventID, clientIP, userAgent string) Fingerprint
}
