package api

import (
	"go.vocdoni.io/explorer/httprouter"
	"go.vocdoni.io/explorer/httprouter/apirest"
	"go.vocdoni.io/explorer/log"
	"go.vocdoni.io/explorer/queries"
)

func (a *API) enableCacheHandlers() error {
	if err := a.Endpoint.RegisterMethod(
		"/cache",
		"DELETE",
		apirest.MethodAccessTypeAdmin,
		a.cacheClearHandler,
	); err != nil {
		return err
	}
	return a.Endpoint.RegisterMethod(
		"/cache/elections/{electionID}",
		"DELETE",
		apirest.MethodAccessTypeAdmin,
		a.cacheInvalidateElectionHandler,
	)
}

// cacheClearHandler
//
//	DELETE /cache
//
// Drops every cached query. Requires the admin bearer token.
func (a *API) cacheClearHandler(_ *apirest.APIdata, ctx *httprouter.HTTPContext) error {
	a.queries.Client().Clear()
	log.Infow("query cache cleared")
	return ctx.Send(nil, apirest.HTTPstatusNoContent)
}

// cacheInvalidateElectionHandler
//
//	DELETE /cache/elections/{electionID}
//
// Marks the elections list, the results of the election and its tracker
// searches stale, so the next read refetches them. Requires the admin bearer token.
func (a *API) cacheInvalidateElectionHandler(_ *apirest.APIdata, ctx *httprouter.HTTPContext) error {
	id, err := electionID(ctx)
	if err != nil {
		return err
	}
	c := a.queries.Client()
	c.Invalidate(queries.ElectionsKey())
	c.Invalidate(queries.ElectionResultsKey(id))
	c.InvalidatePrefix(queries.ElectionSearchesKey(id))
	log.Infow("election cache invalidated", "electionID", id)
	return ctx.Send(nil, apirest.HTTPstatusNoContent)
}
