package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
)

// hexBase is the search space per difficulty digit.
const hexBase = 16

// TotalDifficulty returns the sum of the difficulty of every block.
func (l *Ledger) TotalDifficulty() int {
	var total int
	for _, blk := range l.blocks {
		total += blk.Difficulty
	}
	return total
}

// TotalExpectedHashes returns the expected number of hash attempts needed
// to mine the whole chain, the sum of 16^difficulty over every block.
func (l *Ledger) TotalExpectedHashes() *big.Int {
	total := new(big.Int)
	for _, blk := range l.blocks {
		total.Add(total, math.BigPow(hexBase, int64(blk.Difficulty)))
	}
	return total
}
