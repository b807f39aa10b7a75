// Package metrics constructs the metrics the application will track.
package metrics

import (
	"expvar"
	"runtime"
)

// This holds the single instance of the metrics value needed for
// collecting metrics. The expvar package is already based on a singleton
// for the different metrics that are registered with the package so there
// isn't much choice here.
var m *metrics

// =============================================================================

// metrics represents the set of metrics we gather. These fields are
// safe to be accessed concurrently thanks to expvar. No extra abstraction is
// required.
type metrics struct {
	goroutines   *expvar.Int
	requests     *expvar.Int
	errors       *expvar.Int
	panics       *expvar.Int
	exchanges    *expvar.Int
	authFailures *expvar.Int
	blocksMined  *expvar.Int
	repairs      *expvar.Int
	sessions     *expvar.Int
}

// init constructs the metrics value that will be used to capture metrics.
// The metrics value is stored in a package level variable since everything
// inside of expvar is registered as a singleton. The use of once will make
// sure this initialization only happens once.
func init() {
	m = &metrics{
		goroutines:   expvar.NewInt("goroutines"),
		requests:     expvar.NewInt("requests"),
		errors:       expvar.NewInt("errors"),
		panics:       expvar.NewInt("panics"),
		exchanges:    expvar.NewInt("exchanges"),
		authFailures: expvar.NewInt("auth_failures"),
		blocksMined:  expvar.NewInt("blocks_mined"),
		repairs:      expvar.NewInt("repairs"),
		sessions:     expvar.NewInt("active_sessions"),
	}
}

// =============================================================================

// AddGoroutines refreshes the goroutine metric every 100 requests.
func AddGoroutines() {
	if m.requests.Value()%100 == 0 {
		m.goroutines.Set(int64(runtime.NumGoroutine()))
	}
}

// AddRequests increments the request metric by 1.
func AddRequests() int64 {
	m.requests.Add(1)
	return m.requests.Value()
}

// AddErrors increments the errors metric by 1.
func AddErrors() {
	m.errors.Add(1)
}

// AddPanics increments the panics metric by 1.
func AddPanics() {
	m.panics.Add(1)
}

// AddExchanges increments the number of handled ledger exchanges by 1.
func AddExchanges() {
	m.exchanges.Add(1)
}

// AddAuthFailures increments the authentication failure metric by 1.
func AddAuthFailures() {
	m.authFailures.Add(1)
}

// AddBlocksMined adds the number of blocks mined by an operation.
func AddBlocksMined(n int) {
	m.blocksMined.Add(int64(n))
}

// AddRepairs increments the repair metric by 1.
func AddRepairs() {
	m.repairs.Add(1)
}

// AddSessions adjusts the active session gauge.
func AddSessions(delta int) {
	m.sessions.Add(int64(delta))
}
