package api

import (
	"context"
	"encoding/json"
	"errors"

	"go.vocdoni.io/explorer/httprouter"
	"go.vocdoni.io/explorer/httprouter/apirest"
	"go.vocdoni.io/explorer/localization"
	"go.vocdoni.io/explorer/queries"
	"go.vocdoni.io/explorer/query"
)

// sendJSON marshals v and replies it with status 200.
func sendJSON(ctx *httprouter.HTTPContext, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return ErrMarshalingServerJSONFailed.WithErr(err)
	}
	return ctx.Send(data, apirest.HTTPstatusOK)
}

// translator returns the Localizer for the request Accept-Language header.
func (a *API) translator(ctx *httprouter.HTTPContext) localization.Translator {
	return localization.FromAcceptLanguage(ctx.Header("Accept-Language"), a.languages...)
}

// resultData unwraps a query result. Cached data is served even when its
// last refetch failed.
func resultData[T any](r query.Result[T], notFound, fetchFailed apirest.APIerror) (T, error) {
	if r.HasData {
		return r.Data, nil
	}
	var zero T
	switch {
	case r.IsIdle():
		return zero, notFound
	case errors.Is(r.Err, queries.ErrNotFound):
		return zero, notFound
	case errors.Is(r.Err, context.DeadlineExceeded), errors.Is(r.Err, context.Canceled):
		return zero, ErrQueryTimeout.WithErr(r.Err)
	case r.Err != nil:
		return zero, fetchFailed.WithErr(r.Err)
	}
	return zero, fetchFailed
}
