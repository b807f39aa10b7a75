package signature

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// PublicExponent is the fixed public exponent of every keypair.
const PublicExponent = 65537

// minPrimeBits keeps the modulus larger than any signed digest integer.
const minPrimeBits = 16

// ErrNotInvertible is returned when the public exponent has no inverse
// modulo phi for the provided primes.
var ErrNotInvertible = errors.New("public exponent not invertible for primes")

// =============================================================================

// Keypair holds the public exponent, the modulus and the private exponent.
// Keypairs are ephemeral and live for the duration of a process.
type Keypair struct {
	E *big.Int
	N *big.Int
	D *big.Int
}

// GenerateKeypair generates two independent probable primes of the
// specified bit length and derives the keypair from them. Primes that make
// the public exponent non-invertible are discarded and sampled again.
func GenerateKeypair(bits int) (Keypair, error) {
	return generate(rand.Reader, bits)
}

// NewKeypair derives the keypair for the specified primes.
func NewKeypair(p, q *big.Int) (Keypair, error) {
	if p.Cmp(q) == 0 {
		return Keypair{}, errors.New("primes must be distinct")
	}

	one := big.NewInt(1)
	phi := new(big.Int).Mul(
		new(big.Int).Sub(p, one),
		new(big.Int).Sub(q, one),
	)

	e := big.NewInt(PublicExponent)
	d := new(big.Int).ModInverse(e, phi)
	if d == nil {
		return Keypair{}, ErrNotInvertible
	}

	kp := Keypair{
		E: e,
		N: new(big.Int).Mul(p, q),
		D: d,
	}

	return kp, nil
}

// ClientID returns the fingerprint of the keypair's public key.
func (kp Keypair) ClientID() string {
	return ClientID(kp.E, kp.N)
}

// Sign signs the message with the keypair's private exponent.
func (kp Keypair) Sign(message string) string {
	return Sign(kp.D, kp.N, message)
}

// Verify checks the signature against the keypair's public key.
func (kp Keypair) Verify(message string, signature string) bool {
	return Verify(kp.E, kp.N, message, signature)
}

// =============================================================================

func generate(random io.Reader, bits int) (Keypair, error) {
	if bits < minPrimeBits {
		return Keypair{}, fmt.Errorf("prime size %d bits is below the minimum of %d", bits, minPrimeBits)
	}

	for {
		p, err := rand.Prime(random, bits)
		if err != nil {
			return Keypair{}, fmt.Errorf("generating prime p: %w", err)
		}

		q, err := rand.Prime(random, bits)
		if err != nil {
			return Keypair{}, fmt.Errorf("generating prime q: %w", err)
		}

		kp, err := NewKeypair(p, q)
		if err != nil {
			continue
		}

		return kp, nil
	}
}
