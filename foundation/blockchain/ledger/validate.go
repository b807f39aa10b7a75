package ledger

import "fmt"

// Reason names which integrity check a chain failed.
type Reason int

// Set of integrity checks reported by Validate.
const (
	ReasonNone Reason = iota
	ReasonGenesisCorrupted
	ReasonBrokenLink
	ReasonBrokenSeal
	ReasonChainHashMismatch
)

// String implements the fmt.Stringer interface.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonGenesisCorrupted:
		return "genesis corrupted"
	case ReasonBrokenLink:
		return "broken link"
	case ReasonBrokenSeal:
		return "broken seal"
	case ReasonChainHashMismatch:
		return "chain hash mismatch"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// Outcome is the result of validating the chain. A broken chain is a normal
// result, not an error.
type Outcome struct {
	Valid     bool
	Index     int
	Reason    Reason
	Target    string
	ChainHash string
}

// String returns the human readable verification report.
func (o Outcome) String() string {
	const (
		ok  = "Chain verification: TRUE"
		bad = "Chain verification: FALSE\n"
	)

	switch o.Reason {
	case ReasonNone:
		return ok
	case ReasonGenesisCorrupted:
		return bad + fmt.Sprintf("Genesis Node corrupted, Improper hash on node 0 Does not begin with %s", o.Target)
	case ReasonBrokenLink:
		return bad + fmt.Sprintf("Improper previousHash on node %d Does not match with previous node hash", o.Index)
	case ReasonBrokenSeal:
		return bad + fmt.Sprintf("Node corrupted, Improper hash on node %d Does not begin with: %s", o.Index, o.Target)
	case ReasonChainHashMismatch:
		return bad + fmt.Sprintf("Improper chainHash stored in BlockChain: %s", o.ChainHash)
	}

	return bad + o.Reason.String()
}

// =============================================================================

// Validate checks the integrity of the chain and reports the first failure.
// With only the genesis block, the block must be solved and match the chain
// hash. Otherwise every block after genesis must link to its predecessor's
// current hash and be solved, and the chain hash must match the tail.
func (l *Ledger) Validate() Outcome {
	l.evHandler("ledger: Validate: started: size[%d]", len(l.blocks))

	if len(l.blocks) == 1 {
		genesis := l.blocks[0]
		hash := genesis.Hash()

		if !genesis.Solved() || hash != l.chainHash {
			l.evHandler("ledger: Validate: FAILED: genesis")
			return Outcome{Index: 0, Reason: ReasonGenesisCorrupted, Target: genesis.Target(), ChainHash: l.chainHash}
		}

		l.evHandler("ledger: Validate: completed: valid")
		return Outcome{Valid: true}
	}

	for i := 1; i < len(l.blocks); i++ {
		prev := l.blocks[i-1]
		curr := l.blocks[i]

		if prev.Hash() != curr.PreviousHash {
			l.evHandler("ledger: Validate: FAILED: blk[%d]: link", i)
			return Outcome{Index: i, Reason: ReasonBrokenLink, Target: curr.Target(), ChainHash: l.chainHash}
		}

		if !curr.Solved() {
			l.evHandler("ledger: Validate: FAILED: blk[%d]: seal", i)
			return Outcome{Index: i, Reason: ReasonBrokenSeal, Target: curr.Target(), ChainHash: l.chainHash}
		}
	}

	last := len(l.blocks) - 1
	if l.chainHash != l.blocks[last].Hash() {
		l.evHandler("ledger: Validate: FAILED: chain hash")
		return Outcome{Index: last, Reason: ReasonChainHashMismatch, Target: l.blocks[last].Target(), ChainHash: l.chainHash}
	}

	l.evHandler("ledger: Validate: completed: valid")
	return Outcome{Valid: true}
}
