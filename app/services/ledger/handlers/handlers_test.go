package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/sealedledger/app/services/ledger/handlers"
	"github.com/ardanlabs/sealedledger/business/core/chain"
	"github.com/ardanlabs/sealedledger/business/core/exchange"
	"github.com/ardanlabs/sealedledger/foundation/blockchain/ledger"
	"github.com/ardanlabs/sealedledger/foundation/blockchain/signature"
	"github.com/ardanlabs/sealedledger/foundation/events"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type service struct {
	core   *chain.Core
	server *httptest.Server
	wsURL  string
}

func newService(t *testing.T) service {
	core, mux := newMux(t)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return service{
		core:   core,
		server: srv,
		wsURL:  "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/exchange",
	}
}

func newMux(t *testing.T) (*chain.Core, http.Handler) {
	core, err := chain.New(chain.Config{
		Ledger: ledger.Config{
			GenesisDifficulty: 2,
			BenchmarkHashes:   1000,
			Clock: func() time.Time {
				return time.Date(2024, time.March, 17, 10, 0, 0, 0, time.UTC)
			},
		},
		KeyBits:       32,
		MaxSessions:   1,
		MaxDifficulty: 4,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the core: %v", failed, err)
	}

	mux := handlers.APIMux(handlers.MuxConfig{
		Shutdown:    make(chan os.Signal, 1),
		Log:         zap.NewNop().Sugar(),
		Core:        core,
		Evts:        events.New(),
		IdleTimeout: time.Minute,
	})

	return core, mux
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
	t.Log("Given the need to run a session over a websocket.")
	{
		svc := newService(t)
		kp := clientKeypair(t)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		client, err := exchange.Dial(ctx, svc.wsURL, kp)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to dial the service: %v", failed, err)
		}

		t.Logf("\tTest 0:\tWhen adding a block and verifying the chain.")
		{
			resp, err := client.Do(exchange.AddBlock, "1", "A pays B 10")
			if err != nil || resp.Response != "Successfully added block" {
				t.Fatalf("\t%s\tTest 0:\tShould add the block: %+v %v", failed, resp, err)
			}
			t.Logf("\t%s\tTest 0:\tShould add the block.", success)

			resp, err = client.Do(exchange.VerifyChain, "", "")
			if err != nil || resp.Response != "Chain verification: TRUE" {
				t.Fatalf("\t%s\tTest 0:\tShould verify the chain: %+v %v", failed, resp, err)
			}
			t.Logf("\t%s\tTest 0:\tShould verify the chain.", success)
		}

		t.Logf("\tTest 1:\tWhen sending an altered request and garbage.")
		{
			req := exchange.NewRequest(kp, exchange.AddBlock, "2", "A pays B 10")
			req.Var2 = "A pays B 11"

			resp, err := client.Send(req)
			if err != nil || !resp.IsError() || resp.Response != "Error in request, Verification Failed" {
				t.Fatalf("\t%s\tTest 1:\tShould fail verification: %+v %v", failed, resp, err)
			}
			t.Logf("\t%s\tTest 1:\tShould fail verification.", success)

			if sum := svc.core.Summary(); sum.Size != 2 {
				t.Fatalf("\t%s\tTest 1:\tShould leave the ledger at two blocks: %d", failed, sum.Size)
			}
			t.Logf("\t%s\tTest 1:\tShould leave the ledger at two blocks.", success)

			resp, err = client.Do(exchange.GetBasicView, "", "")
			if err != nil || !strings.HasPrefix(resp.Response, "Current size of chain: 2") {
				t.Fatalf("\t%s\tTest 1:\tShould keep the session open: %+v %v", failed, resp, err)
			}
			t.Logf("\t%s\tTest 1:\tShould keep the session open.", success)
		}

		t.Logf("\tTest 2:\tWhen the client exits.")
		{
			resp, err := client.Close()
			if err != nil || resp.Response != "Ack. Server awaiting new Client :)" {
				t.Fatalf("\t%s\tTest 2:\tShould acknowledge the exit: %+v %v", failed, resp, err)
			}
			t.Logf("\t%s\tTest 2:\tShould acknowledge the exit.", success)
		}
	}
}

func Test_OneClientAtATime(t *testing.T) {
	t.Log("Given the need to serve one client at a time.")
	{
		svc := newService(t)
		kp := clientKeypair(t)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		t.Logf("\tTest 0:\tWhen a second client connects during a session.")
		{
			first, err := exchange.Dial(ctx, svc.wsURL, kp)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould dial the first client: %v", failed, err)
			}

			if _, err := first.Do(exchange.GetBasicView, "", ""); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould serve the first client: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould serve the first client.", success)

			second, err := exchange.Dial(ctx, svc.wsURL, kp)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould dial the second client: %v", failed, err)
			}
			defer second.Close()

			type result struct {
				resp exchange.Response
				err  error
			}
			done := make(chan result, 1)
			go func() {
				resp, err := second.Do(exchange.GetBasicView, "", "")
				done <- result{resp, err}
			}()

			select {
			case <-done:
				t.Fatalf("\t%s\tTest 0:\tShould hold the second client while the first is active.", failed)
			case <-time.After(200 * time.Millisecond):
			}
			t.Logf("\t%s\tTest 0:\tShould hold the second client while the first is active.", success)

			if _, err := first.Close(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould close the first client: %v", failed, err)
			}

			select {
			case res := <-done:
				if res.err != nil || res.resp.IsError() {
					t.Fatalf("\t%s\tTest 0:\tShould serve the second client: %+v %v", failed, res.resp, res.err)
				}
			case <-time.After(5 * time.Second):
				t.Fatalf("\t%s\tTest 0:\tShould serve the second client once the first exits.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould serve the second client once the first exits.", success)
		}
	}
}

func Test_SingleExchange(t *testing.T) {
	t.Log("Given the need to send a single exchange over HTTP.")
	{
		svc := newService(t)
		kp := clientKeypair(t)

		t.Logf("\tTest 0:\tWhen posting a signed request.")
		{
			body, err := json.Marshal(exchange.NewRequest(kp, exchange.VerifyChain, "", ""))
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould marshal the request: %v", failed, err)
			}

			r, err := http.Post(svc.server.URL+"/v1/exchange", "application/json", bytes.NewReader(body))
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould post the request: %v", failed, err)
			}
			defer r.Body.Close()

			var resp exchange.Response
			if err := json.NewDecoder(r.Body).Decode(&resp); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould decode the response: %v", failed, err)
			}

			if r.StatusCode != http.StatusOK || resp.ResponseType != "verifyChain" || resp.Response != "Chain verification: TRUE" {
				t.Fatalf("\t%s\tTest 0:\tShould verify the chain: %d %+v", failed, r.StatusCode, resp)
			}
			t.Logf("\t%s\tTest 0:\tShould verify the chain.", success)
		}

		t.Logf("\tTest 1:\tWhen posting a request with an unknown type.")
		{
			const body = `{"clientID":"X","e":"1","n":"1","requestType":"dropTables","signature":"1"}`

			r, err := http.Post(svc.server.URL+"/v1/exchange", "application/json", strings.NewReader(body))
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould post the request: %v", failed, err)
			}
			defer r.Body.Close()

			if r.StatusCode != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest 1:\tShould be a bad request: %d", failed, r.StatusCode)
			}
			t.Logf("\t%s\tTest 1:\tShould be a bad request.", success)
		}
	}
}

func Test_SingleExchangeWriteTimeout(t *testing.T) {
	t.Log("Given the need to answer a mining exchange that outlives the write timeout.")
	{
		core, mux := newMux(t)

		srv := httptest.NewUnstartedServer(mux)
		srv.Config.WriteTimeout = time.Nanosecond
		srv.Start()
		defer srv.Close()

		kp := clientKeypair(t)

		t.Logf("\tTest 0:\tWhen posting an addBlock request.")
		{
			body, err := json.Marshal(exchange.NewRequest(kp, exchange.AddBlock, "3", "A pays B 10"))
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould marshal the request: %v", failed, err)
			}

			r, err := http.Post(srv.URL+"/v1/exchange", "application/json", bytes.NewReader(body))
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould get a response: %v", failed, err)
			}
			defer r.Body.Close()

			var resp exchange.Response
			if err := json.NewDecoder(r.Body).Decode(&resp); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould decode the response: %v", failed, err)
			}

			if resp.Response != "Successfully added block" {
				t.Fatalf("\t%s\tTest 0:\tShould report the added block: %+v", failed, resp)
			}
			t.Logf("\t%s\tTest 0:\tShould report the added block.", success)

			if sum := core.Summary(); sum.Size != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould have two blocks: %d", failed, sum.Size)
			}
			t.Logf("\t%s\tTest 0:\tShould have two blocks.", success)
		}
	}
}

func Test_UpgradeFailure(t *testing.T) {
	t.Log("Given the need to reject a plain request on a websocket route.")
	{
		svc := newService(t)

		for i, path := range []string{"/v1/exchange", "/v1/events"} {
			t.Logf("\tTest %d:\tWhen calling %s without an upgrade.", i, path)
			{
				r, err := http.Get(svc.server.URL + path)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould get a response: %v", failed, i, err)
				}
				defer r.Body.Close()

				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould read the body: %v", failed, i, err)
				}

				if r.StatusCode != http.StatusBadRequest || strings.Contains(string(body), `"error"`) {
					t.Fatalf("\t%s\tTest %d:\tShould get a single bad request answer: %d %q", failed, i, r.StatusCode, body)
				}
				t.Logf("\t%s\tTest %d:\tShould get a single bad request answer.", success, i)
			}
		}
	}
}

func Test_Identity(t *testing.T) {
	t.Log("Given the need to look up the service identity.")
	{
		svc := newService(t)

		t.Logf("\tTest 0:\tWhen asking for the identity.")
		{
			r, err := http.Get(svc.server.URL + "/v1/node/identity")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould get the identity: %v", failed, err)
			}
			defer r.Body.Close()

			var id chain.Identity
			if err := json.NewDecoder(r.Body).Decode(&id); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould decode the identity: %v", failed, err)
			}

			if id != svc.core.Identity() {
				t.Fatalf("\t%s\tTest 0:\tShould match the core identity: %+v", failed, id)
			}
			t.Logf("\t%s\tTest 0:\tShould match the core identity.", success)
		}
	}
}

func Test_Readiness(t *testing.T) {
	t.Log("Given the need to check the service health.")
	{
		svc := newService(t)
		mux := handlers.DebugMux("test", zap.NewNop().Sugar(), svc.core)

		for i, path := range []string{"/debug/readiness", "/debug/liveness"} {
			t.Logf("\tTest %d:\tWhen calling %s.", i, path)
			{
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

				if w.Code != http.StatusOK {
					t.Fatalf("\t%s\tTest %d:\tShould get a 200: %d", failed, i, w.Code)
				}
				t.Logf("\t%s\tTest %d:\tShould get a 200.", success, i)
			}
		}
	}
}
