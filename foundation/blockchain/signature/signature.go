// Package signature provides the identity and signature support for the
// ledger's clients: keypair generation, client fingerprints and a
// truncated digest signature scheme.
//
// Both the fingerprint and the signature deliberately use only part of the
// SHA-256 digest, which weakens collision resistance. The truncation is
// kept so signatures and fingerprints remain compatible with existing
// clients. It is not a property to rely on for security.
package signature

import (
	"math/big"

	"github.com/ardanlabs/sealedledger/foundation/blockchain/digest"
)

// ClientIDLength is the number of hex characters kept for a fingerprint.
const ClientIDLength = 20

// =============================================================================

// ClientID derives the fingerprint for the public key. The decimal text of
// e and n is hashed and only the last 20 hex characters are kept.
func ClientID(e, n *big.Int) string {
	hash := digest.HashString(e.String() + n.String())
	return hash[len(hash)-ClientIDLength:]
}

// Sign produces the signature for the message as a decimal string. Only the
// first two bytes of the message digest are signed.
func Sign(d, n *big.Int, message string) string {
	m := digestInteger(message)
	return new(big.Int).Exp(m, d, n).String()
}

// Verify reports whether the signature was produced for the message by the
// private key matching e and n. Malformed values never verify.
func Verify(e, n *big.Int, message string, signature string) bool {
	if e == nil || n == nil || e.Sign() <= 0 || n.Sign() <= 0 {
		return false
	}

	sig, ok := new(big.Int).SetString(signature, 10)
	if !ok || sig.Sign() < 0 {
		return false
	}

	candidate := new(big.Int).Exp(sig, e, n)
	return candidate.Cmp(digestInteger(message)) == 0
}

// =============================================================================

// digestInteger builds the non-negative integer from the bytes
// [0x00, digest[0], digest[1]] of the message digest.
func digestInteger(message string) *big.Int {
	sum := digest.Sum(message)
	return new(big.Int).SetBytes([]byte{0x00, sum[0], sum[1]})
}
