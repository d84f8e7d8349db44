package apiclient

import (
	"context"
	"net/url"

	"go.vocdoni.io/explorer/types"
)

// Elections lists the elections known to the backend.
func (c *HTTPclient) Elections(ctx context.Context) ([]types.Election, error) {
	elections := []types.Election{}
	if err := c.get(ctx, &elections, nil, "elections"); err != nil {
		return nil, err
	}
	return elections, nil
}

// ElectionResults returns the results summary of an election.
func (c *HTTPclient) ElectionResults(ctx context.Context, electionID string) (*types.ElectionResultsSummary, error) {
	id, err := pathSegment(electionID)
	if err != nil {
		return nil, err
	}
	summary := &types.ElectionResultsSummary{}
	if err := c.get(ctx, summary, nil, "elections", id, "results"); err != nil {
		return nil, err
	}
	return summary, nil
}

// SearchBallots returns the ballots of an election whose tracker contains
// trackerQuery.
func (c *HTTPclient) SearchBallots(ctx context.Context, electionID, trackerQuery string) ([]types.TrackedBallot, error) {
	id, err := pathSegment(electionID)
	if err != nil {
		return nil, err
	}
	ballots := []types.TrackedBallot{}
	params := url.Values{"tracker": []string{trackerQuery}}
	if err := c.get(ctx, &ballots, params, "elections", id, "ballots"); err != nil {
		return nil, err
	}
	return ballots, nil
}
