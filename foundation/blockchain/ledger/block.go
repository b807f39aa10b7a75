package ledger

import (
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ardanlabs/sealedledger/foundation/blockchain/digest"
)

// TimeFormat is the canonical textual form of a block timestamp. The same
// form is used for hashing and for the full chain view.
const TimeFormat = "2006-01-02 15:04:05.000"

// reportEvery controls how often mining progress is reported.
const reportEvery = 1_000_000

// =============================================================================

// Block represents a single entry in the ledger. The hash is never stored,
// it is recomputed from the current field values.
type Block struct {
	Index        int       `json:"index"`        // Position of the block in the chain.
	Timestamp    time.Time `json:"timestamp"`    // Time the block was created.
	Data         string    `json:"data"`         // Transaction text.
	PreviousHash string    `json:"previousHash"` // Hash of the predecessor at append time.
	Nonce        *big.Int  `json:"nonce"`        // Value identified to solve the hash solution.
	Difficulty   int       `json:"difficulty"`   // Number of leading '0' hex digits required.
}

// Hash returns the uppercase hex SHA-256 of the block's canonical text.
func (b Block) Hash() string {
	return digest.HashString(b.canonical())
}

// Mine resets the nonce to zero and increments it until the block's hash has
// the required number of leading zeros. The solving hash is returned. There
// is no upper bound on the number of attempts and the search can't be
// cancelled.
func (b *Block) Mine() string {
	return b.mine(nil)
}

// Solved reports whether the block's current hash meets its own difficulty.
func (b Block) Solved() bool {
	return digest.HasLeadingZeros(b.Hash(), b.Difficulty)
}

// Target returns the string of zeros the block's hash must begin with.
func (b Block) Target() string {
	if b.Difficulty <= 0 {
		return ""
	}
	return strings.Repeat("0", b.Difficulty)
}

// =============================================================================

// mine performs the proof of work, reporting progress to ev when provided.
func (b *Block) mine(ev EventHandler) string {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	ev("ledger: mine: MINING: started: blk[%d]: difficulty[%d]", b.Index, b.Difficulty)

	one := big.NewInt(1)
	b.Nonce = new(big.Int)

	var attempts uint64
	for {
		attempts++

		hash := b.Hash()
		if digest.HasLeadingZeros(hash, b.Difficulty) {
			ev("ledger: mine: MINING: SOLVED: blk[%d]: hash[%s]: nonce[%d]: attempts[%d]", b.Index, hash, b.Nonce, attempts)
			return hash
		}

		if attempts%reportEvery == 0 {
			ev("ledger: mine: MINING: blk[%d]: attempts[%d]", b.Index, attempts)
		}

		b.Nonce.Add(b.Nonce, one)
	}
}

// canonical builds the ordered concatenation of the hashed fields.
func (b Block) canonical() string {
	nonce := "0"
	if b.Nonce != nil {
		nonce = b.Nonce.String()
	}

	var sb strings.Builder
	sb.WriteString(strconv.Itoa(b.Index))
	sb.WriteString(b.Timestamp.UTC().Format(TimeFormat))
	sb.WriteString(b.Data)
	sb.WriteString(b.PreviousHash)
	sb.WriteString(nonce)
	sb.WriteString(strconv.Itoa(b.Difficulty))

	return sb.String()
}

// clone returns a deep copy of the block so callers never share the nonce.
func (b *Block) clone() Block {
	cpy := *b
	if b.Nonce != nil {
		cpy.Nonce = new(big.Int).Set(b.Nonce)
	}
	return cpy
}
