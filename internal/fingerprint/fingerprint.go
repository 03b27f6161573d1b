package fingerprint

import (
    "crypto/sha256"
    "encoding/hex"
)

// idPrefix keeps index ids visually distinct from bare digests.
const idPrefix = "doc_"

// Compute derives the content fingerprint of an uploaded document: the
// SHA-256 hex digest of its raw bytes. Byte-identical uploads produce
// identical fingerprints regardless of filename or upload metadata, which is
// what makes the digest usable as a dedup key.
func Compute(data []byte) string {
    sum := sha256.Sum256(data)
    return hex.EncodeToString(sum[:])
}

// DocumentID maps a fingerprint onto the stable document id. Deriving the id
// from the fingerprint lets the index enforce fingerprint uniqueness through
// its primary key, so two racing ingestions of the same bytes collapse onto
// one record.
func DocumentID(digest string) string {
    return idPrefix + digest
}
