// Package chain is the core API for the ledger service. It owns the ledger
// and the service keypair and applies authenticated requests against the
// ledger one at a time.
package chain

import (
	"context"
	"fmt"
	"sync"

	"github.com/ardanlabs/sealedledger/business/core/exchange"
	"github.com/ardanlabs/sealedledger/business/sys/metrics"
	"github.com/ardanlabs/sealedledger/foundation/blockchain/ledger"
	"github.com/ardanlabs/sealedledger/foundation/blockchain/signature"
)

// Config represents the configuration required to start the service core.
type Config struct {
	Ledger        ledger.Config
	KeyBits       int
	MaxSessions   int
	MaxDifficulty int
	EvHandler     ledger.EventHandler
}

// Core manages the ledger. Every ledger operation, read or write, runs
// under the same mutex.
type Core struct {
	mu            sync.Mutex
	ledger        *ledger.Ledger
	keypair       signature.Keypair
	slots         chan struct{}
	maxDifficulty int
	benchHashes   int
	evHandler     ledger.EventHandler
}

// New generates the service keypair and constructs the ledger with its
// genesis block.
func New(cfg Config) (*Core, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if cfg.MaxSessions <= 0 {
		return nil, fmt.Errorf("max sessions must be positive, got %d", cfg.MaxSessions)
	}

	ev("chain: New: generating keypair: bits[%d]", cfg.KeyBits)

	kp, err := signature.GenerateKeypair(cfg.KeyBits)
	if err != nil {
		return nil, fmt.Errorf("generating keypair: %w", err)
	}

	ev("chain: New: keypair: clientID[%s]", kp.ClientID())

	ledgerCfg := cfg.Ledger
	if ledgerCfg.EvHandler == nil {
		ledgerCfg.EvHandler = ev
	}

	c := Core{
		ledger:        ledger.New(ledgerCfg),
		keypair:       kp,
		slots:         make(chan struct{}, cfg.MaxSessions),
		maxDifficulty: cfg.MaxDifficulty,
		benchHashes:   ledgerCfg.BenchmarkHashes,
		evHandler:     ev,
	}

	return &c, nil
}

// =============================================================================

// Identity describes the public identity of the service.
type Identity struct {
	ClientID string `json:"clientID"`
	E        string `json:"e"`
	N        string `json:"n"`
}

// Identity returns the fingerprint and public key of the service.
func (c *Core) Identity() Identity {
	return Identity{
		ClientID: c.keypair.ClientID(),
		E:        c.keypair.E.String(),
		N:        c.keypair.N.String(),
	}
}

// Summary describes the current shape of the ledger.
type Summary struct {
	Size      int    `json:"size"`
	ChainHash string `json:"chainHash"`
}

// Summary returns the size and chain hash of the ledger.
func (c *Core) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Summary{
		Size:      c.ledger.Size(),
		ChainHash: c.ledger.ChainHash(),
	}
}

// =============================================================================

// AcquireSession waits for a free connection slot. The returned function
// releases the slot and is safe to call more than once.
func (c *Core) AcquireSession(ctx context.Context) (release func(), err error) {
	select {
	case c.slots <- struct{}{}:
		metrics.AddSessions(1)

		var once sync.Once
		release = func() {
			once.Do(func() {
				<-c.slots
				metrics.AddSessions(-1)
			})
		}

		return release, nil

	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Handle authenticates the request and applies it against the ledger.
// Failures are reported in the response, they never end the session.
func (c *Core) Handle(req exchange.Request) exchange.Response {
	metrics.AddExchanges()

	if err := req.Validate(); err != nil {
		c.evHandler("chain: Handle: MALFORMED: %s", err)
		return exchange.NewErrorResponse(fmt.Sprintf("Error in request, %s", err))
	}

	if err := exchange.Authenticate(req); err != nil {
		metrics.AddAuthFailures()
		c.evHandler("chain: Handle: client[%s]: op[%s]: verification failed", req.ClientID, req.RequestType)
		return exchange.NewErrorResponse("Error in request, Verification Failed")
	}

	c.evHandler("chain: Handle: client[%s]: op[%s]: signature verified", req.ClientID, req.RequestType)

	text, err := c.dispatch(req)
	if err != nil {
		c.evHandler("chain: Handle: client[%s]: op[%s]: ERROR: %s", req.ClientID, req.RequestType, err)
		return exchange.NewErrorResponse(err.Error())
	}

	return exchange.NewResponse(req.RequestType, text)
}
