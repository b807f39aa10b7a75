package ledger

import (
	"encoding/json"
	"math/big"
)

// blockView is the serialized form of a block in the full chain view.
type blockView struct {
	Index        int      `json:"index"`
	Timestamp    string   `json:"timestamp"`
	Data         string   `json:"data"`
	PreviousHash string   `json:"previousHash"`
	Nonce        *big.Int `json:"nonce"`
	Difficulty   int      `json:"difficulty"`
}

// chainView is the serialized form of the full chain.
type chainView struct {
	Chain     []blockView `json:"ds_chain"`
	ChainHash string      `json:"chainHash"`
}

// View returns the full chain as indented JSON.
func (l *Ledger) View() ([]byte, error) {
	cv := chainView{
		Chain:     make([]blockView, len(l.blocks)),
		ChainHash: l.chainHash,
	}

	for i, blk := range l.blocks {
		cv.Chain[i] = blockView{
			Index:        blk.Index,
			Timestamp:    blk.Timestamp.UTC().Format(TimeFormat),
			Data:         blk.Data,
			PreviousHash: blk.PreviousHash,
			Nonce:        newNonce(blk.Nonce),
			Difficulty:   blk.Difficulty,
		}
	}

	return json.MarshalIndent(cv, "", "  ")
}

// newNonce keeps a block that was never mined printable.
func newNonce(n *big.Int) *big.Int {
	if n == nil {
		return new(big.Int)
	}
	return n
}
