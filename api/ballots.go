package api

import (
	"strings"

	"go.vocdoni.io/explorer/httprouter"
	"go.vocdoni.io/explorer/httprouter/apirest"
	"go.vocdoni.io/explorer/queries"
)

func (a *API) enableBallotHandlers() error {
	return a.Endpoint.RegisterMethod(
		"/elections/{electionID}/ballots",
		"GET",
		apirest.MethodAccessTypePublic,
		a.ballotSearchHandler,
	)
}

// ballotSearchHandler
//
//	GET /elections/{electionID}/ballots?tracker={query}
//
// Returns the ballots whose tracker code matches the query.
func (a *API) ballotSearchHandler(_ *apirest.APIdata, ctx *httprouter.HTTPContext) error {
	id, err := electionID(ctx)
	if err != nil {
		return err
	}
	tracker := strings.TrimSpace(ctx.QueryParam("tracker"))
	if tracker == "" {
		return ErrParamTrackerMissing
	}
	r := a.queries.FetchSearchBallots(ctx.Request.Context(), id, tracker, queries.Always)
	ballots, err := resultData(r, ErrElectionNotFound.With(id), ErrCantFetchBallots)
	if err != nil {
		return err
	}
	return sendJSON(ctx, ballots)
}
