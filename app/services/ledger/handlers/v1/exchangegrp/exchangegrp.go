// Package exchangegrp maintains the group of handlers for signed ledger
// exchanges.
package exchangegrp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/sealedledger/business/core/chain"
	"github.com/ardanlabs/sealedledger/business/core/exchange"
	"github.com/ardanlabs/sealedledger/business/web/errs"
	"github.com/ardanlabs/sealedledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of exchange endpoints.
type Handlers struct {
	Log         *zap.SugaredLogger
	Core        *chain.Core
	WS          websocket.Upgrader
	IdleTimeout time.Duration
}

// Session upgrades the connection to a websocket and serves one client
// session. The session waits for a free connection slot before the first
// request is read and holds it until the client exits or goes away.
func (h Handlers) Session(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Infow("exchange", "traceid", v.TraceID, "status", "upgrade failed", "ERROR", err)
		return nil
	}
	defer c.Close()

	web.SetStatusCode(ctx, http.StatusSwitchingProtocols)

	h.Log.Infow("exchange", "traceid", v.TraceID, "status", "waiting for session slot", "remoteaddr", r.RemoteAddr)

	release, err := h.awaitSlot(ctx, c)
	if err != nil {
		h.Log.Infow("exchange", "traceid", v.TraceID, "status", "gave up waiting", "ERROR", err)
		return nil
	}
	defer release()

	h.Log.Infow("exchange", "traceid", v.TraceID, "status", "session started")
	defer h.Log.Infow("exchange", "traceid", v.TraceID, "status", "session ended")

	for {
		if h.IdleTimeout > 0 {
			c.SetReadDeadline(time.Now().Add(h.IdleTimeout))
		}

		_, msg, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.Log.Infow("exchange", "traceid", v.TraceID, "status", "transport failure", "ERROR", err)
			}
			return nil
		}

		var req exchange.Request
		var resp exchange.Response
		switch err := json.Unmarshal(msg, &req); {
		case err != nil:
			resp = exchange.NewErrorResponse(fmt.Sprintf("Error in request, %s", err))
		default:
			resp = h.Core.Handle(req)
		}

		if err := c.WriteJSON(resp); err != nil {
			h.Log.Infow("exchange", "traceid", v.TraceID, "status", "transport failure", "ERROR", err)
			return nil
		}

		if req.RequestType == exchange.ClientExit && !resp.IsError() {
			release()

			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			c.WriteMessage(websocket.CloseMessage, msg)
			return nil
		}
	}
}

// waitPing is how often a waiting client is pinged.
const waitPing = time.Second

// awaitSlot waits for a session slot. The client is pinged while it waits
// and the wait ends if the client has gone away.
func (h Handlers) awaitSlot(ctx context.Context, c *websocket.Conn) (release func(), err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(waitPing)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return

			case <-ticker.C:
				if err := c.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(waitPing)); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	return h.Core.AcquireSession(ctx)
}

// Exchange serves a single signed request outside of a session. The
// request still waits for a free connection slot.
func (h Handlers) Exchange(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req exchange.Request
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	release, err := h.Core.AcquireSession(ctx)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("waiting for session slot: %w", err), http.StatusServiceUnavailable)
	}
	defer release()

	// Mining has no upper bound so the server's write timeout can't apply.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		return fmt.Errorf("clearing write deadline: %w", err)
	}

	h.Log.Infow("exchange", "traceid", v.TraceID, "clientID", req.ClientID, "requestType", req.RequestType)

	resp := h.Core.Handle(req)

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Identity returns the fingerprint and public key of the service.
func (h Handlers) Identity(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Core.Identity(), http.StatusOK)
}
