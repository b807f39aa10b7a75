package chain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ardanlabs/sealedledger/business/core/exchange"
	"github.com/ardanlabs/sealedledger/business/sys/metrics"
)

// dispatch applies an authenticated request against the ledger.
func (c *Core) dispatch(req exchange.Request) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch req.RequestType {
	case exchange.GetBasicView:
		return c.basicView(), nil

	case exchange.AddBlock:
		return c.addBlock(req.Var1, req.Var2)

	case exchange.VerifyChain:
		return c.ledger.Validate().String(), nil

	case exchange.GetFullView:
		view, err := c.ledger.View()
		if err != nil {
			return "", fmt.Errorf("view chain: %w", err)
		}
		return string(view), nil

	case exchange.CorruptChain:
		return c.corruptChain(req.Var1, req.Var2)

	case exchange.RepairChain:
		return c.repairChain(), nil

	case exchange.ClientExit:
		return "Ack. Server awaiting new Client :)", nil
	}

	return "", fmt.Errorf("%w: request type %s", ErrMalformed, req.RequestType)
}

// =============================================================================

func (c *Core) basicView() string {
	latest := c.ledger.Latest()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Current size of chain: %d\n", c.ledger.Size())
	fmt.Fprintf(&sb, "Difficulty of most recent block: %d\n", latest.Difficulty)
	fmt.Fprintf(&sb, "Total difficulty for all blocks: %d\n", c.ledger.TotalDifficulty())
	fmt.Fprintf(&sb, "Experimented with %d hashes.\n", c.benchHashes)
	fmt.Fprintf(&sb, "Approximate hashes per second on this machine: %d\n", c.ledger.HashesPerSecond())
	fmt.Fprintf(&sb, "Expected total hashes required for the whole chain: %d\n", c.ledger.TotalExpectedHashes())
	fmt.Fprintf(&sb, "Nonce for most recent block: %d\n", latest.Nonce)
	fmt.Fprintf(&sb, "Chain hash: %s", c.ledger.ChainHash())

	return sb.String()
}

func (c *Core) addBlock(difficultyStr string, tx string) (string, error) {
	difficulty, err := strconv.Atoi(difficultyStr)
	if err != nil || difficulty < 0 {
		return "", fmt.Errorf("%w: difficulty %q is not a non-negative whole number", ErrMalformed, difficultyStr)
	}

	if c.maxDifficulty > 0 && difficulty > c.maxDifficulty {
		return "", fmt.Errorf("%w: difficulty %d, limit %d", ErrDifficultyLimit, difficulty, c.maxDifficulty)
	}

	c.ledger.Append(c.ledger.NewBlock(difficulty, tx))
	metrics.AddBlocksMined(1)

	return "Successfully added block", nil
}

func (c *Core) corruptChain(indexStr string, data string) (string, error) {
	index, err := strconv.Atoi(indexStr)
	if err != nil {
		return "", fmt.Errorf("%w: block id %q is not a whole number", ErrMalformed, indexStr)
	}

	if err := c.ledger.Corrupt(index, data); err != nil {
		return "", err
	}

	return fmt.Sprintf("Block %d now holds %s", index, data), nil
}

func (c *Core) repairChain() string {
	report := c.ledger.Repair()

	metrics.AddRepairs()
	metrics.AddBlocksMined(report.Remined)

	return "Repaired Successfully"
}
