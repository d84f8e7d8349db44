package commands

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.vocdoni.io/explorer/apiclient"
	"go.vocdoni.io/explorer/localization"
	"go.vocdoni.io/explorer/log"
	"go.vocdoni.io/explorer/queries"
	"go.vocdoni.io/explorer/query"
	"go.vocdoni.io/explorer/results"
	"go.vocdoni.io/explorer/types"
)

// dataAccess returns the snapshot file reader if one is configured, the
// backend client otherwise.
func (c *cli) dataAccess() (queries.DataAccess, error) {
	if c.cfg.Backend.DataFile != "" {
		log.Infof("reading elections from %s", c.cfg.Backend.DataFile)
		return queries.LoadStatic(c.cfg.Backend.DataFile)
	}
	addr, err := url.Parse(c.cfg.Backend.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	var token *uuid.UUID
	if c.cfg.Backend.Token != "" {
		t, err := uuid.Parse(c.cfg.Backend.Token)
		if err != nil {
			return nil, fmt.Errorf("invalid backend token: %w", err)
		}
		token = &t
	}
	log.Infof("using backend %s", addr)
	return apiclient.NewHTTPclient(addr, token)
}

// newQueries returns the query layer over the configured data access. The
// caller must close the returned client.
func (c *cli) newQueries() (*queries.Queries, *query.Client, error) {
	data, err := c.dataAccess()
	if err != nil {
		return nil, nil, err
	}
	client := query.NewClient(query.Config{
		CacheSize:  c.cfg.Query.CacheSize,
		StaleTime:  c.cfg.Query.StaleTime,
		Retries:    c.cfg.Query.Retries,
		RetryDelay: c.cfg.Query.RetryDelay,
	})
	return queries.New(client, data), client, nil
}

func (c *cli) translator() localization.Translator {
	return localization.New(c.cfg.Languages...)
}

func (c *cli) renderer() results.Renderer {
	if c.cfg.JSON {
		return results.JSONRenderer{Indent: "  "}
	}
	return results.TableRenderer{}
}

// electionAndResults fetches an election and its results summary.
func electionAndResults(ctx context.Context, q *queries.Queries,
	electionID string,
) (*types.Election, *types.ElectionResultsSummary, error) {
	election, err := q.FetchElection(ctx, electionID)
	if err != nil {
		return nil, nil, err
	}
	r := q.FetchElectionResults(ctx, electionID, queries.Always)
	if !r.HasData {
		return nil, nil, fmt.Errorf("cannot fetch results of election %s: %w", electionID, r.Err)
	}
	return election, r.Data, nil
}

func exactArgs(n int, names string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("expected arguments: %s", names)
		}
		return nil
	}
}
