// Package digest wraps the SHA-256 hash function and the hex encoding used
// for block hashes, client fingerprints and signatures.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// BenchmarkInput is the fixed dummy input hashed by Benchmark.
const BenchmarkInput = "00000000"

// Sum returns the SHA-256 digest of the UTF-8 bytes of s.
func Sum(s string) []byte {
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}

// Hex encodes the bytes as uppercase hex. Every hash in the ledger and every
// fingerprint uses this alphabet.
func Hex(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

// HashString returns the uppercase hex SHA-256 digest of s.
func HashString(s string) string {
	return Hex(Sum(s))
}

// HasLeadingZeros reports whether hash begins with n '0' characters.
func HasLeadingZeros(hash string, n int) bool {
	if n <= 0 {
		return true
	}

	if len(hash) < n {
		return false
	}

	for i := range n {
		if hash[i] != '0' {
			return false
		}
	}

	return true
}

// Benchmark hashes BenchmarkInput count times and returns the observed
// number of hashes per second on this machine.
func Benchmark(count int) int {
	if count <= 0 {
		return 0
	}

	data := []byte(BenchmarkInput)

	start := time.Now()
	for range count {
		sha256.Sum256(data)
	}
	elapsed := time.Since(start)

	if elapsed <= 0 {
		elapsed = time.Nanosecond
	}

	return int(float64(count) / elapsed.Seconds())
}
