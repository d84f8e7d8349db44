package api

import (
	"context"
	"errors"

	"go.vocdoni.io/explorer/httprouter"
	"go.vocdoni.io/explorer/httprouter/apirest"
	"go.vocdoni.io/explorer/queries"
	"go.vocdoni.io/explorer/results"
	"go.vocdoni.io/explorer/types"
)

func (a *API) enableElectionHandlers() error {
	if err := a.Endpoint.RegisterMethod(
		"/elections",
		"GET",
		apirest.MethodAccessTypePublic,
		a.electionListHandler,
	); err != nil {
		return err
	}
	if err := a.Endpoint.RegisterMethod(
		"/elections/{electionID}/results",
		"GET",
		apirest.MethodAccessTypePublic,
		a.electionResultsHandler,
	); err != nil {
		return err
	}
	if err := a.Endpoint.RegisterMethod(
		"/elections/{electionID}/charts",
		"GET",
		apirest.MethodAccessTypePublic,
		a.electionChartsHandler,
	); err != nil {
		return err
	}
	return a.Endpoint.RegisterMethod(
		"/elections/{electionID}/contests/{contestID}/chart",
		"GET",
		apirest.MethodAccessTypePublic,
		a.contestChartHandler,
	)
}

// electionListHandler
//
//	GET /elections
//
// Returns the list of elections.
func (a *API) electionListHandler(_ *apirest.APIdata, ctx *httprouter.HTTPContext) error {
	r := a.queries.FetchElections(ctx.Request.Context(), queries.Always)
	elections, err := resultData(r, ErrElectionNotFound, ErrCantFetchElectionList)
	if err != nil {
		return err
	}
	return sendJSON(ctx, elections)
}

// electionResultsHandler
//
//	GET /elections/{electionID}/results
//
// Returns the raw results summary of an election.
func (a *API) electionResultsHandler(_ *apirest.APIdata, ctx *httprouter.HTTPContext) error {
	summary, err := a.electionResults(ctx)
	if err != nil {
		return err
	}
	return sendJSON(ctx, summary)
}

// electionChartsHandler
//
//	GET /elections/{electionID}/charts
//
// Returns the chart of every contest with results, in ballot order, with
// titles translated to the Accept-Language of the request.
func (a *API) electionChartsHandler(_ *apirest.APIdata, ctx *httprouter.HTTPContext) error {
	election, err := a.election(ctx)
	if err != nil {
		return err
	}
	summary, err := a.electionResults(ctx)
	if err != nil {
		return err
	}
	return sendJSON(ctx, results.ElectionCharts(summary, &election.ElectionDescription, a.translator(ctx)))
}

// contestChartHandler
//
//	GET /elections/{electionID}/contests/{contestID}/chart
//
// Returns the chart of a single contest.
func (a *API) contestChartHandler(_ *apirest.APIdata, ctx *httprouter.HTTPContext) error {
	election, err := a.election(ctx)
	if err != nil {
		return err
	}
	contestID := ctx.URLParam("contestID")
	contest, ok := election.ElectionDescription.Contest(contestID)
	if !ok {
		return ErrContestNotFound.With(contestID)
	}
	summary, err := a.electionResults(ctx)
	if err != nil {
		return err
	}
	tally, ok := summary.ElectionResults[contestID]
	if !ok {
		return ErrContestHasNoResults.With(contestID)
	}
	chart := results.ContestChart(tally, contest, election.ElectionDescription.Candidates, a.translator(ctx))
	return sendJSON(ctx, chart)
}

func electionID(ctx *httprouter.HTTPContext) (string, error) {
	id := ctx.URLParam("electionID")
	if id == "" {
		return "", ErrCantParseElectionID
	}
	return id, nil
}

// election looks up the election of the request in the cached elections list.
func (a *API) election(ctx *httprouter.HTTPContext) (*types.Election, error) {
	id, err := electionID(ctx)
	if err != nil {
		return nil, err
	}
	election, err := a.queries.FetchElection(ctx.Request.Context(), id)
	if err != nil {
		return nil, electionLookupError(id, err)
	}
	return election, nil
}

// electionLookupError maps a FetchElection error to its APIerror, the same
// way resultData does for query results.
func electionLookupError(electionID string, err error) error {
	switch {
	case errors.Is(err, queries.ErrNotFound):
		return ErrElectionNotFound.With(electionID)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrQueryTimeout.WithErr(err)
	}
	return ErrCantFetchElectionList.WithErr(err)
}

// electionResults fetches the results summary of the election of the request.
func (a *API) electionResults(ctx *httprouter.HTTPContext) (*types.ElectionResultsSummary, error) {
	id, err := electionID(ctx)
	if err != nil {
		return nil, err
	}
	r := a.queries.FetchElectionResults(ctx.Request.Context(), id, queries.Always)
	return resultData(r, ErrElectionResultsNotFound.With(id), ErrCantFetchElectionResults)
}
