// Package queries defines the named queries of the explorer: the elections
// list, the results of an election and the ballot tracker search. Each one is
// keyed in the shared query cache and gated by a condition.
package queries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.vocdoni.io/explorer/query"
	"go.vocdoni.io/explorer/types"
)

// Query names, used as the first part of every cache key.
const (
	QueryElections       = "ELECTIONS"
	QueryElectionResults = "ELECTION_RESULTS"
	QuerySearchBallots   = "SEARCH_BALLOTS"
)

// SearchBallotsStaleTime is how long the results of a tracker search are
// served from the cache.
const SearchBallotsStaleTime = 60 * time.Second

// Always is the condition of a query that is only gated by its parameters.
const Always = true

var (
	// ErrNotFound is returned by a DataAccess when the backend has no such
	// object. Such failures are not retried.
	ErrNotFound = errors.New("not found")
	// ErrElectionNotFound is returned when an election id is not listed.
	ErrElectionNotFound = fmt.Errorf("election %w", ErrNotFound)
)

// DataAccess retrieves elections, results and tracked ballots from the
// election backend.
type DataAccess interface {
	Elections(ctx context.Context) ([]types.Election, error)
	ElectionResults(ctx context.Context, electionID string) (*types.ElectionResultsSummary, error)
	SearchBallots(ctx context.Context, electionID, trackerQuery string) ([]types.TrackedBallot, error)
}

// Queries binds the named queries to a cache and a data source.
type Queries struct {
	client *query.Client
	data   DataAccess
}

// New returns the named queries over client and data.
func New(client *query.Client, data DataAccess) *Queries {
	return &Queries{client: client, data: data}
}

// Client returns the query cache in use.
func (q *Queries) Client() *query.Client {
	return q.client
}

// ElectionsKey is the cache key of the elections list.
func ElectionsKey() query.Key {
	return query.NewKey(QueryElections)
}

// ElectionResultsKey is the cache key of the results of an election.
func ElectionResultsKey(electionID string) query.Key {
	return query.NewKey(QueryElectionResults, electionID)
}

// ElectionSearchesKey is the key prefix shared by every tracker search of
// an election.
func ElectionSearchesKey(electionID string) query.Key {
	return query.NewKey(QuerySearchBallots, electionID)
}

// SearchBallotsKey is the cache key of a tracker search within an election.
func SearchBallotsKey(electionID, trackerQuery string) query.Key {
	return query.NewKey(QuerySearchBallots, electionID, trackerQuery)
}

func electionsOptions(condition bool) query.Options {
	return query.Options{Enabled: condition}
}

func electionResultsOptions(electionID string, condition bool) query.Options {
	return query.Options{Enabled: condition && electionID != ""}
}

func searchBallotsOptions(electionID string, condition bool) query.Options {
	// The search stays idle until there is an election to search in.
	return query.Options{
		Enabled:   condition && electionID != "",
		StaleTime: SearchBallotsStaleTime,
	}
}

// notRetried stops the query cache from retrying not found errors.
func notRetried[T any](fetch query.FetchFunc[T]) query.FetchFunc[T] {
	return func(ctx context.Context) (T, error) {
		v, err := fetch(ctx)
		if errors.Is(err, ErrNotFound) {
			return v, query.Permanent(err)
		}
		return v, err
	}
}

func (q *Queries) fetchElections(ctx context.Context) ([]types.Election, error) {
	return q.data.Elections(ctx)
}

func (q *Queries) fetchElectionResults(electionID string) query.FetchFunc[*types.ElectionResultsSummary] {
	return notRetried(func(ctx context.Context) (*types.ElectionResultsSummary, error) {
		return q.data.ElectionResults(ctx, electionID)
	})
}

func (q *Queries) fetchSearchBallots(electionID, trackerQuery string) query.FetchFunc[[]types.TrackedBallot] {
	return notRetried(func(ctx context.Context) ([]types.TrackedBallot, error) {
		return q.data.SearchBallots(ctx, electionID, trackerQuery)
	})
}

// Elections reads the elections list. It is idle unless condition holds.
func (q *Queries) Elections(condition bool) query.Result[[]types.Election] {
	return query.Use(q.client, ElectionsKey(), q.fetchElections, electionsOptions(condition))
}

// FetchElections is the blocking form of Elections.
func (q *Queries) FetchElections(ctx context.Context, condition bool) query.Result[[]types.Election] {
	return query.Fetch(ctx, q.client, ElectionsKey(), q.fetchElections, electionsOptions(condition))
}

// ElectionResults reads the results summary of an election. It is idle
// unless condition holds and electionID is not empty.
func (q *Queries) ElectionResults(electionID string, condition bool) query.Result[*types.ElectionResultsSummary] {
	return query.Use(q.client, ElectionResultsKey(electionID),
		q.fetchElectionResults(electionID), electionResultsOptions(electionID, condition))
}

// FetchElectionResults is the blocking form of ElectionResults.
func (q *Queries) FetchElectionResults(ctx context.Context, electionID string,
	condition bool,
) query.Result[*types.ElectionResultsSummary] {
	return query.Fetch(ctx, q.client, ElectionResultsKey(electionID),
		q.fetchElectionResults(electionID), electionResultsOptions(electionID, condition))
}

// SearchBallots reads the ballots of an election whose tracker matches
// trackerQuery. It is idle unless condition holds and electionID is not
// empty. Results are fresh for SearchBallotsStaleTime.
func (q *Queries) SearchBallots(electionID, trackerQuery string,
	condition bool,
) query.Result[[]types.TrackedBallot] {
	return query.Use(q.client, SearchBallotsKey(electionID, trackerQuery),
		q.fetchSearchBallots(electionID, trackerQuery), searchBallotsOptions(electionID, condition))
}

// FetchSearchBallots is the blocking form of SearchBallots.
func (q *Queries) FetchSearchBallots(ctx context.Context, electionID, trackerQuery string,
	condition bool,
) query.Result[[]types.TrackedBallot] {
	return query.Fetch(ctx, q.client, SearchBallotsKey(electionID, trackerQuery),
		q.fetchSearchBallots(electionID, trackerQuery), searchBallotsOptions(electionID, condition))
}

// FetchElection looks an election up in the elections list.
func (q *Queries) FetchElection(ctx context.Context, electionID string) (*types.Election, error) {
	r := q.FetchElections(ctx, electionID != "")
	switch {
	case r.IsIdle():
		return nil, ErrElectionNotFound
	case !r.HasData:
		return nil, r.Err
	}
	for i := range r.Data {
		if r.Data[i].ID == electionID {
			return &r.Data[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrElectionNotFound, electionID)
}
