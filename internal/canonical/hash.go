package canonical

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainSnapshot prefixes deck snapshot hashes.
const DomainSnapshot = "flipdeck/snapshot/v1"

// Hash computes SHA256(domain + 0x00 + data) as lowercase hex.
// The null separator keeps the domain/data boundary unambiguous.
func Hash(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
