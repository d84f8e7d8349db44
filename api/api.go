// Package api is the REST API of the explorer. It serves the election list,
// results and ballot searches through the cached query layer, and the results
// charts resolved for the reader's language.
package api

import (
	"fmt"
	"strings"

	"go.vocdoni.io/explorer/httprouter"
	"go.vocdoni.io/explorer/httprouter/apirest"
	"go.vocdoni.io/explorer/queries"
)

const (
	// ElectionHandler serves the elections, their results and charts.
	ElectionHandler = "elections"
	// BallotHandler serves the ballot tracker search.
	BallotHandler = "ballots"
	// CacheHandler serves the admin endpoints invalidating the query cache.
	CacheHandler = "cache"
)

// AllHandlers lists every handler group, for EnableHandlers.
var AllHandlers = []string{ElectionHandler, BallotHandler, CacheHandler}

var (
	ErrMissingModulesForHandler = fmt.Errorf("missing modules attached for enabling handler")
	ErrHandlerUnknown           = fmt.Errorf("handler unknown")
	ErrHTTPRouterIsNil          = fmt.Errorf("httprouter is nil")
	ErrBaseRouteInvalid         = fmt.Errorf("base route must start with /")
)

// API is the URL based REST API of the explorer.
type API struct {
	Endpoint *apirest.API

	queries   *queries.Queries
	languages []string
}

// NewAPI creates a new instance of the API. Attach must be called next.
func NewAPI(router *httprouter.HTTProuter, baseRoute string) (*API, error) {
	if router == nil {
		return nil, ErrHTTPRouterIsNil
	}
	if len(baseRoute) == 0 || baseRoute[0] != '/' {
		return nil, fmt.Errorf("%w (invalid given: %s)", ErrBaseRouteInvalid, baseRoute)
	}
	if len(baseRoute) > 1 {
		baseRoute = strings.TrimSuffix(baseRoute, "/")
	}
	api := API{}
	var err error
	api.Endpoint, err = apirest.NewAPI(router, baseRoute)
	if err != nil {
		return nil, err
	}
	return &api, nil
}

// Attach sets the query layer used by the handlers and the languages used
// when a request carries no Accept-Language header.
// Attach must be called before EnableHandlers.
func (a *API) Attach(q *queries.Queries, defaultLanguages ...string) {
	a.queries = q
	a.languages = defaultLanguages
}

// EnableHandlers enables the list of handlers. Attach must be called before.
func (a *API) EnableHandlers(handlers ...string) error {
	for _, h := range handlers {
		if a.queries == nil {
			return fmt.Errorf("%w %s", ErrMissingModulesForHandler, h)
		}
		switch h {
		case ElectionHandler:
			if err := a.enableElectionHandlers(); err != nil {
				return err
			}
		case BallotHandler:
			if err := a.enableBallotHandlers(); err != nil {
				return err
			}
		case CacheHandler:
			if err := a.enableCacheHandlers(); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %s", ErrHandlerUnknown, h)
		}
	}
	return nil
}
