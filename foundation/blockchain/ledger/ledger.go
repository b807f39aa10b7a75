// Package ledger implements the append-only chain of proof of work sealed
// blocks along with validation, tamper simulation and repair.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/sealedledger/foundation/blockchain/digest"
)

// ErrOutOfRange is returned when a block index does not name a block.
var ErrOutOfRange = errors.New("block index out of range")

// Defaults for the genesis block.
const (
	DefaultGenesisData       = "Genesis"
	DefaultGenesisDifficulty = 2
)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of the ledger.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start a ledger.
type Config struct {
	GenesisDifficulty int
	GenesisData       string
	BenchmarkHashes   int
	Clock             func() time.Time
	EvHandler         EventHandler
}

// Ledger manages the ordered sequence of blocks. A Ledger is not safe for
// concurrent use, the owner provides the synchronization.
type Ledger struct {
	blocks          []*Block
	chainHash       string
	hashesPerSecond int
	clock           func() time.Time
	evHandler       EventHandler
}

// New constructs a ledger, mines and appends the genesis block and runs
// the one time hash rate benchmark.
func New(cfg Config) *Ledger {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	data := cfg.GenesisData
	if data == "" {
		data = DefaultGenesisData
	}

	l := Ledger{
		clock:     clock,
		evHandler: ev,
	}

	ev("ledger: New: genesis: difficulty[%d]", cfg.GenesisDifficulty)

	l.Append(Block{
		Index:      0,
		Timestamp:  l.now(),
		Data:       data,
		Difficulty: cfg.GenesisDifficulty,
	})

	l.hashesPerSecond = digest.Benchmark(cfg.BenchmarkHashes)
	ev("ledger: New: benchmark: hashes[%d]: hashesPerSecond[%d]", cfg.BenchmarkHashes, l.hashesPerSecond)

	return &l
}

// NewBlock constructs the next block to be appended to the chain.
func (l *Ledger) NewBlock(difficulty int, data string) Block {
	return Block{
		Index:      l.tail().Index + 1,
		Timestamp:  l.now(),
		Data:       data,
		Difficulty: difficulty,
	}
}

// Append links the block to the current tail, mines it and adds it to the
// chain. The mined block is returned.
func (l *Ledger) Append(block Block) Block {
	b := block.clone()

	if b.Index != 0 {
		b.PreviousHash = l.tail().Hash()
	}

	l.chainHash = b.mine(l.evHandler)
	l.blocks = append(l.blocks, &b)

	l.evHandler("ledger: Append: blk[%d]: chainHash[%s]", b.Index, l.chainHash)

	return b.clone()
}

// Corrupt overwrites the data of the specified block without recomputing
// its hash or nonce. This produces an invalid chain on purpose so tamper
// detection and repair can be exercised.
func (l *Ledger) Corrupt(index int, data string) error {
	if index < 0 || index >= len(l.blocks) {
		return fmt.Errorf("corrupt block %d, chain size %d: %w", index, len(l.blocks), ErrOutOfRange)
	}

	l.blocks[index].Data = data
	l.evHandler("ledger: Corrupt: blk[%d]: data overwritten", index)

	return nil
}

// =============================================================================

// Size returns the number of blocks in the chain.
func (l *Ledger) Size() int {
	return len(l.blocks)
}

// ChainHash returns the cached hash of the tail block.
func (l *Ledger) ChainHash() string {
	return l.chainHash
}

// Latest returns a copy of the tail block.
func (l *Ledger) Latest() Block {
	return l.tail().clone()
}

// Block returns a copy of the block at the specified index.
func (l *Ledger) Block(index int) (Block, error) {
	if index < 0 || index >= len(l.blocks) {
		return Block{}, fmt.Errorf("block %d, chain size %d: %w", index, len(l.blocks), ErrOutOfRange)
	}
	return l.blocks[index].clone(), nil
}

// Blocks returns a copy of every block in the chain.
func (l *Ledger) Blocks() []Block {
	blocks := make([]Block, len(l.blocks))
	for i, b := range l.blocks {
		blocks[i] = b.clone()
	}
	return blocks
}

// HashesPerSecond returns the result of the startup benchmark.
func (l *Ledger) HashesPerSecond() int {
	return l.hashesPerSecond
}

// =============================================================================

// tail returns the last block. The genesis block guarantees one exists.
func (l *Ledger) tail() *Block {
	return l.blocks[len(l.blocks)-1]
}

// now returns the clock time in the precision used by the timestamp format.
func (l *Ledger) now() time.Time {
	return l.clock().UTC().Truncate(time.Millisecond)
}
