package testcommon

import (
	"net/url"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/explorer/api"
	"go.vocdoni.io/explorer/httprouter"
	"go.vocdoni.io/explorer/queries"
	"go.vocdoni.io/explorer/query"
)

// AdminToken is the bearer token accepted by the admin handlers of APIserver.
const AdminToken = "test-admin-token"

// APIserver contains all the required pieces for running a mock API server.
// It is used for testing purposes only. The server answers from the
// Snapshot data through a counting DataAccess.
type APIserver struct {
	ListenAddr *url.URL
	Data       *CountingDataAccess
	Static     *queries.Static
	Queries    *queries.Queries
	Router     *httprouter.HTTProuter
}

// Start starts a basic URL API server for testing, serving the given handler
// groups (api.AllHandlers if none).
func (d *APIserver) Start(t testing.TB, handlers ...string) {
	if len(handlers) == 0 {
		handlers = api.AllHandlers
	}
	d.Static = queries.NewStatic(Snapshot())
	d.Data = NewCountingDataAccess(d.Static)
	client := query.NewClient(query.Config{Retries: 1, RetryDelay: time.Millisecond})
	t.Cleanup(client.Close)
	d.Queries = queries.New(client, d.Data)

	// create the API router
	d.Router = &httprouter.HTTProuter{}
	qt.Assert(t, d.Router.Init("127.0.0.1", 0), qt.IsNil)
	t.Cleanup(func() { _ = d.Router.Close() })
	addr, err := url.Parse("http://" + d.Router.Address().String() + "/")
	qt.Assert(t, err, qt.IsNil)
	d.ListenAddr = addr
	t.Logf("address: %s", addr.String())

	a, err := api.NewAPI(d.Router, "/")
	qt.Assert(t, err, qt.IsNil)
	a.Endpoint.SetAdminToken(AdminToken)
	a.Attach(d.Queries, "en")
	qt.Assert(t, a.EnableHandlers(handlers...), qt.IsNil)
}
