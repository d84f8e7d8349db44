// Package testcommon holds fixtures shared by the explorer tests: a sample
// election with results and tracked ballots, and a DataAccess that counts
// the calls it receives.
package testcommon

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.vocdoni.io/explorer/queries"
	"go.vocdoni.io/explorer/types"
)

// ElectionID is the id of the sample election.
const ElectionID = "city-2024"

// Snapshot returns a sample backend dump: one published election with a
// mayor contest and a referendum, its results and some cast ballots.
func Snapshot() queries.Snapshot {
	start := time.Date(2024, 11, 5, 7, 0, 0, 0, time.UTC)
	election := types.Election{
		ID:    ElectionID,
		State: types.ElectionStatePublished,
		ElectionDescription: types.ElectionDescription{
			ElectionScopeID: ElectionID,
			Type:            "general",
			StartDate:       start,
			EndDate:         start.Add(13 * time.Hour),
			Name:            types.NewText("en", "City General Election", "es", "Elección general municipal"),
			Candidates: []types.Candidate{
				{ObjectID: "alice", BallotName: types.NewText("en", "Alice Adams")},
				{ObjectID: "bob", BallotName: types.NewText("en", "Bob Brown")},
				{ObjectID: "yes", BallotName: types.NewText("en", "Yes", "es", "Sí")},
				{ObjectID: "no", BallotName: types.NewText("en", "No", "es", "No")},
			},
			Contests: []types.ContestDescription{
				{
					ObjectID:      "referendum",
					SequenceOrder: 1,
					Name:          "Referendum",
					NumberElected: 1,
					BallotTitle:   types.NewText("en", "Build the new library?", "es", "¿Construir la nueva biblioteca?"),
					BallotSelections: []types.SelectionDescription{
						{ObjectID: "referendum-yes", CandidateID: "yes", SequenceOrder: 0},
						{ObjectID: "referendum-no", CandidateID: "no", SequenceOrder: 1},
					},
				},
				{
					ObjectID:      "mayor",
					SequenceOrder: 0,
					Name:          "Mayor",
					NumberElected: 1,
					BallotTitle:   types.NewText("en", "Mayor", "es", "Alcaldía"),
					BallotSelections: []types.SelectionDescription{
						{ObjectID: "mayor-alice", CandidateID: "alice", SequenceOrder: 0},
						{ObjectID: "mayor-bob", CandidateID: "bob", SequenceOrder: 1},
						{ObjectID: "mayor-carol", CandidateID: "carol", SequenceOrder: 2},
					},
				},
			},
		},
	}
	return queries.Snapshot{
		Elections: []types.Election{
			election,
			{ID: "school-board", State: types.ElectionStateOpen},
		},
		Results: map[string]*types.ElectionResultsSummary{
			ElectionID: {
				ElectionID: ElectionID,
				DataReady:  true,
				ElectionResults: map[string]types.ContestResults{
					"mayor":      {"mayor-alice": 120, "mayor-bob": 80, "mayor-carol": 3},
					"referendum": {"referendum-yes": 150, "referendum-no": 53},
				},
				CastBallots:    203,
				SpoiledBallots: 2,
				TotalBallots:   205,
			},
		},
		Ballots: map[string][]types.TrackedBallot{
			ElectionID: {
				{
					ElectionID:         ElectionID,
					TrackerID:          "t-0001",
					TrackerWords:       []string{"apple", "river", "stone"},
					TrackerWordsString: "apple river stone",
					State:              types.BallotStateCast,
					Timestamp:          start.Add(time.Hour),
					ObjectID:           "ballot-1",
				},
				{
					ElectionID:         ElectionID,
					TrackerID:          "t-0002",
					TrackerWords:       []string{"river", "cloud", "maple"},
					TrackerWordsString: "river cloud maple",
					State:              types.BallotStateSpoiled,
					Timestamp:          start.Add(2 * time.Hour),
					ObjectID:           "ballot-2",
				},
			},
		},
	}
}

// CountingDataAccess wraps a DataAccess and counts the calls per method.
// Calls can be held with Block until Release is called.
type CountingDataAccess struct {
	queries.DataAccess

	ElectionsCalls       atomic.Int32
	ElectionResultsCalls atomic.Int32
	SearchBallotsCalls   atomic.Int32

	mu    sync.Mutex
	gate  chan struct{}
	fails error
}

// NewCountingDataAccess wraps data.
func NewCountingDataAccess(data queries.DataAccess) *CountingDataAccess {
	return &CountingDataAccess{DataAccess: data}
}

// Block makes every call wait until Release.
func (c *CountingDataAccess) Block() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gate = make(chan struct{})
}

// Release lets the blocked calls go on.
func (c *CountingDataAccess) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gate != nil {
		close(c.gate)
		c.gate = nil
	}
}

// FailWith makes every call return err. A nil err restores normal replies.
func (c *CountingDataAccess) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fails = err
}

func (c *CountingDataAccess) wait(ctx context.Context) error {
	c.mu.Lock()
	gate, fails := c.gate, c.fails
	c.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fails
}

// Elections implements queries.DataAccess.
func (c *CountingDataAccess) Elections(ctx context.Context) ([]types.Election, error) {
	c.ElectionsCalls.Add(1)
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.DataAccess.Elections(ctx)
}

// ElectionResults implements queries.DataAccess.
func (c *CountingDataAccess) ElectionResults(ctx context.Context, electionID string) (*types.ElectionResultsSummary, error) {
	c.ElectionResultsCalls.Add(1)
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.DataAccess.ElectionResults(ctx, electionID)
}

// SearchBallots implements queries.DataAccess.
func (c *CountingDataAccess) SearchBallots(ctx context.Context, electionID, trackerQuery string) ([]types.TrackedBallot, error) {
	c.SearchBallotsCalls.Add(1)
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.DataAccess.SearchBallots(ctx, electionID, trackerQuery)
}
