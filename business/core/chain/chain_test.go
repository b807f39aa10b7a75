package chain_test

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/sealedledger/business/core/chain"
	"github.com/ardanlabs/sealedledger/business/core/exchange"
	"github.com/ardanlabs/sealedledger/foundation/blockchain/ledger"
	"github.com/ardanlabs/sealedledger/foundation/blockchain/signature"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func fixedClock() time.Time {
	return time.Date(2024, time.March, 17, 10, 0, 0, 0, time.UTC)
}

func newCore(t *testing.T, maxSessions int) *chain.Core {
	ev := func(v string, args ...any) {
		t.Logf("\t\t"+v, args...)
	}

	core, err := chain.New(chain.Config{
		Ledger: ledger.Config{
			GenesisDifficulty: 2,
			GenesisData:       "Genesis",
			BenchmarkHashes:   1000,
			Clock:             fixedClock,
		},
		KeyBits:       32,
		MaxSessions:   maxSessions,
		MaxDifficulty: 4,
		EvHandler:     ev,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the core: %v", failed, err)
	}

	return core
}

func clientKeypair(t *testing.T) signature.Keypair {
	kp, err := signature.NewKeypair(big.NewInt(1000003), big.NewInt(1000033))
	if err != nil {
		t.Fatalf("\t%s\tShould be able to build the client keypair: %v", failed, err)
	}
	return kp
}

// =============================================================================

func Test_Session(t *testing.T) {
	type step struct {
		rt    exchange.RequestType
		var1  string
		var2  string
		resp  string
		exact bool
	}

	steps := []step{
		{exchange.GetBasicView, "", "", "Current size of chain: 1\n", false},
		{exchange.AddBlock, "3", "A pays B 10", "Successfully added block", true},
		{exchange.VerifyChain, "", "", "Chain verification: TRUE", true},
		{exchange.CorruptChain, "1", "tampered", "Block 1 now holds tampered", true},
		{exchange.VerifyChain, "", "", "Chain verification: FALSE\nNode corrupted, Improper hash on node 1 Does not begin with: 000", true},
		{exchange.RepairChain, "", "", "Repaired Successfully", true},
		{exchange.VerifyChain, "", "", "Chain verification: TRUE", true},
		{exchange.GetFullView, "", "", `"data": "tampered"`, false},
		{exchange.GetBasicView, "", "", "Total difficulty for all blocks: 5\n", false},
		{exchange.ClientExit, "", "", "Ack. Server awaiting new Client :)", true},
	}

	t.Log("Given the need to run a client session against the ledger.")
	{
		core := newCore(t, 1)
		kp := clientKeypair(t)

		for i, s := range steps {
			t.Logf("\tTest %d:\tWhen sending %s.", i, s.rt)
			{
				resp := core.Handle(exchange.NewRequest(kp, s.rt, s.var1, s.var2))

				if resp.IsError() || resp.ResponseType != s.rt.String() {
					t.Fatalf("\t%s\tTest %d:\tShould get a %s response: %+v", failed, i, s.rt, resp)
				}
				t.Logf("\t%s\tTest %d:\tShould get a %s response.", success, i, s.rt)

				var ok bool
				switch s.exact {
				case true:
					ok = resp.Response == s.resp
				default:
					ok = strings.Contains(resp.Response, s.resp)
				}

				if !ok {
					t.Logf("\t%s\tTest %d:\tgot: %q", failed, i, resp.Response)
					t.Logf("\t%s\tTest %d:\texp: %q", failed, i, s.resp)
					t.Fatalf("\t%s\tTest %d:\tShould get the expected text.", failed, i)
				}
				t.Logf("\t%s\tTest %d:\tShould get the expected text.", success, i)
			}
		}
	}
}

func Test_BadInput(t *testing.T) {
	type table struct {
		name string
		rt   exchange.RequestType
		var1 string
		var2 string
	}

	tt := []table{
		{"difficulty not a number", exchange.AddBlock, "three", "tx"},
		{"negative difficulty", exchange.AddBlock, "-1", "tx"},
		{"difficulty above limit", exchange.AddBlock, "5", "tx"},
		{"index not a number", exchange.CorruptChain, "one", "tampered"},
		{"negative index", exchange.CorruptChain, "-1", "tampered"},
		{"index past tail", exchange.CorruptChain, "1", "tampered"},
	}

	t.Log("Given the need to reject bad request arguments without changing the ledger.")
	{
		core := newCore(t, 1)
		kp := clientKeypair(t)
		before := core.Summary()

		for i, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a request with %s.", i, tst.name)
			{
				resp := core.Handle(exchange.NewRequest(kp, tst.rt, tst.var1, tst.var2))
				if !resp.IsError() {
					t.Fatalf("\t%s\tTest %d:\tShould get an error response: %+v", failed, i, resp)
				}
				t.Logf("\t%s\tTest %d:\tShould get an error response: %s", success, i, resp.Response)

				if after := core.Summary(); after != before {
					t.Fatalf("\t%s\tTest %d:\tShould leave the ledger unchanged: %+v", failed, i, after)
				}
				t.Logf("\t%s\tTest %d:\tShould leave the ledger unchanged.", success, i)
			}
		}
	}
}

func Test_Unauthenticated(t *testing.T) {
	t.Log("Given the need to reject requests that fail authentication.")
	{
		core := newCore(t, 1)
		kp := clientKeypair(t)
		before := core.Summary()

		t.Logf("\tTest 0:\tWhen the transaction is altered after signing.")
		{
			req := exchange.NewRequest(kp, exchange.AddBlock, "2", "A pays B 10")
			req.Var2 = "A pays B 11"

			resp := core.Handle(req)
			if !resp.IsError() || resp.Response != "Error in request, Verification Failed" {
				t.Fatalf("\t%s\tTest 0:\tShould fail verification: %+v", failed, resp)
			}
			t.Logf("\t%s\tTest 0:\tShould fail verification.", success)

			if after := core.Summary(); after != before {
				t.Fatalf("\t%s\tTest 0:\tShould not append a block: %+v", failed, after)
			}
			t.Logf("\t%s\tTest 0:\tShould not append a block.", success)
		}

		t.Logf("\tTest 1:\tWhen the request has no signature.")
		{
			req := exchange.NewRequest(kp, exchange.GetBasicView, "", "")
			req.Signature = ""

			resp := core.Handle(req)
			if !resp.IsError() || !strings.HasPrefix(resp.Response, "Error in request") {
				t.Fatalf("\t%s\tTest 1:\tShould be rejected as malformed: %+v", failed, resp)
			}
			t.Logf("\t%s\tTest 1:\tShould be rejected as malformed.", success)
		}
	}
}

func Test_AcquireSession(t *testing.T) {
	t.Log("Given the need to serve one client at a time.")
	{
		core := newCore(t, 1)

		t.Logf("\tTest 0:\tWhen a second client waits on a busy service.")
		{
			release, err := core.AcquireSession(context.Background())
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould acquire the free slot: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould acquire the free slot.", success)

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			if _, err := core.AcquireSession(ctx); !errors.Is(err, context.DeadlineExceeded) {
				t.Fatalf("\t%s\tTest 0:\tShould block until the deadline: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould block until the deadline.", success)

			release()
			release()

			release2, err := core.AcquireSession(context.Background())
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould acquire the slot once released: %v", failed, err)
			}
			release2()
			t.Logf("\t%s\tTest 0:\tShould acquire the slot once released.", success)
		}

		t.Logf("\tTest 1:\tWhen constructing a core with no session slots.")
		{
			if _, err := chain.New(chain.Config{KeyBits: 32}); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould fail to construct.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould fail to construct.", success)
		}
	}
}

func Test_Identity(t *testing.T) {
	t.Log("Given the need to publish the service identity.")
	{
		core := newCore(t, 1)

		t.Logf("\tTest 0:\tWhen asking for the identity.")
		{
			id := core.Identity()

			e, _ := new(big.Int).SetString(id.E, 10)
			n, _ := new(big.Int).SetString(id.N, 10)
			if e == nil || n == nil || signature.ClientID(e, n) != id.ClientID {
				t.Fatalf("\t%s\tTest 0:\tShould publish a fingerprint of the public key: %+v", failed, id)
			}
			t.Logf("\t%s\tTest 0:\tShould publish a fingerprint of the public key.", success)
		}
	}
}
