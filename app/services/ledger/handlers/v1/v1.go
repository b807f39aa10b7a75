// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"
	"time"

	"github.com/ardanlabs/sealedledger/app/services/ledger/handlers/v1/eventgrp"
	"github.com/ardanlabs/sealedledger/app/services/ledger/handlers/v1/exchangegrp"
	"github.com/ardanlabs/sealedledger/business/core/chain"
	"github.com/ardanlabs/sealedledger/foundation/events"
	"github.com/ardanlabs/sealedledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log         *zap.SugaredLogger
	Core        *chain.Core
	Evts        *events.Events
	IdleTimeout time.Duration
}

// Routes binds all the version 1 routes.
func Routes(app *web.App, cfg Config) {
	exg := exchangegrp.Handlers{
		Log:         cfg.Log,
		Core:        cfg.Core,
		WS:          websocket.Upgrader{},
		IdleTimeout: cfg.IdleTimeout,
	}

	app.Handle(http.MethodGet, version, "/exchange", exg.Session)
	app.Handle(http.MethodPost, version, "/exchange", exg.Exchange)
	app.Handle(http.MethodGet, version, "/node/identity", exg.Identity)

	evg := eventgrp.Handlers{
		Log:  cfg.Log,
		WS:   websocket.Upgrader{},
		Evts: cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", evg.Events)
}
