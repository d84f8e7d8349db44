package queries_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/explorer/queries"
	"go.vocdoni.io/explorer/query"
	"go.vocdoni.io/explorer/test/testcommon"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newQueries(t *testing.T) (*queries.Queries, *testcommon.CountingDataAccess, *clock) {
	clk := &clock{now: time.Unix(1700000000, 0)}
	qc := query.NewClient(query.Config{
		Retries:    1,
		RetryDelay: time.Millisecond,
		Now:        clk.Now,
	})
	t.Cleanup(qc.Close)
	data := testcommon.NewCountingDataAccess(queries.NewStatic(testcommon.Snapshot()))
	return queries.New(qc, data), data, clk
}

func TestElections(t *testing.T) {
	c := qt.New(t)
	q, data, _ := newQueries(t)

	r := q.Elections(false)
	c.Assert(r.IsIdle(), qt.IsTrue)
	c.Assert(r.HasData, qt.IsFalse)
	c.Assert(data.ElectionsCalls.Load(), qt.Equals, int32(0))

	r = q.Elections(queries.Always)
	c.Assert(r.IsLoading(), qt.IsTrue)
	c.Assert(q.Client().Wait(context.Background(), queries.ElectionsKey()), qt.IsNil)

	r = q.Elections(queries.Always)
	c.Assert(r.IsLoading(), qt.IsFalse)
	c.Assert(r.IsIdle(), qt.IsFalse)
	c.Assert(r.IsError(), qt.IsFalse)
	c.Assert(r.HasData, qt.IsTrue)
	c.Assert(r.Data, qt.HasLen, 2)
	c.Assert(r.Data[0].ID, qt.Equals, testcommon.ElectionID)
}

func TestElectionResultsNeedsElectionID(t *testing.T) {
	c := qt.New(t)
	q, data, _ := newQueries(t)

	for _, condition := range []bool{true, false} {
		r := q.ElectionResults("", condition)
		c.Assert(r.IsIdle(), qt.IsTrue)
		r = q.FetchElectionResults(context.Background(), "", condition)
		c.Assert(r.IsIdle(), qt.IsTrue)
	}
	r := q.FetchElectionResults(context.Background(), testcommon.ElectionID, false)
	c.Assert(r.IsIdle(), qt.IsTrue)
	c.Assert(data.ElectionResultsCalls.Load(), qt.Equals, int32(0))

	r = q.FetchElectionResults(context.Background(), testcommon.ElectionID, true)
	c.Assert(r.IsSuccess(), qt.IsTrue)
	c.Assert(r.Data.ElectionResults["mayor"]["mayor-alice"], qt.Equals, uint64(120))
	c.Assert(data.ElectionResultsCalls.Load(), qt.Equals, int32(1))
}

func TestElectionResultsNotFoundIsNotRetried(t *testing.T) {
	c := qt.New(t)
	q, data, _ := newQueries(t)

	r := q.FetchElectionResults(context.Background(), "school-board", true)
	c.Assert(r.IsError(), qt.IsTrue)
	c.Assert(errors.Is(r.Err, queries.ErrNotFound), qt.IsTrue)
	c.Assert(data.ElectionResultsCalls.Load(), qt.Equals, int32(1))
}

func TestFetchErrorIsRetried(t *testing.T) {
	c := qt.New(t)
	q, data, _ := newQueries(t)
	errDown := errors.New("connection refused")
	data.FailWith(errDown)

	r := q.FetchElections(context.Background(), true)
	c.Assert(r.IsError(), qt.IsTrue)
	c.Assert(errors.Is(r.Err, errDown), qt.IsTrue)
	// one retry configured
	c.Assert(data.ElectionsCalls.Load(), qt.Equals, int32(2))
}

func TestSearchBallotsIsCachedForAMinute(t *testing.T) {
	c := qt.New(t)
	q, data, clk := newQueries(t)
	ctx := context.Background()

	r := q.SearchBallots("", "river", true)
	c.Assert(r.IsIdle(), qt.IsTrue)
	r = q.SearchBallots(testcommon.ElectionID, "river", false)
	c.Assert(r.IsIdle(), qt.IsTrue)
	c.Assert(data.SearchBallotsCalls.Load(), qt.Equals, int32(0))

	r = q.FetchSearchBallots(ctx, testcommon.ElectionID, "river", true)
	c.Assert(r.IsSuccess(), qt.IsTrue)
	c.Assert(r.Data, qt.HasLen, 2)
	c.Assert(data.SearchBallotsCalls.Load(), qt.Equals, int32(1))

	clk.Advance(30 * time.Second)
	r = q.SearchBallots(testcommon.ElectionID, "river", true)
	c.Assert(r.IsSuccess(), qt.IsTrue)
	c.Assert(r.Fetching, qt.IsFalse)
	r = q.FetchSearchBallots(ctx, testcommon.ElectionID, "river", true)
	c.Assert(r.Data, qt.HasLen, 2)
	c.Assert(data.SearchBallotsCalls.Load(), qt.Equals, int32(1))

	// a different query is a different key
	r = q.FetchSearchBallots(ctx, testcommon.ElectionID, "apple", true)
	c.Assert(r.Data, qt.HasLen, 1)
	c.Assert(r.Data[0].TrackerID, qt.Equals, "t-0001")
	c.Assert(data.SearchBallotsCalls.Load(), qt.Equals, int32(2))

	clk.Advance(31 * time.Second)
	r = q.FetchSearchBallots(ctx, testcommon.ElectionID, "river", true)
	c.Assert(r.Data, qt.HasLen, 2)
	c.Assert(data.SearchBallotsCalls.Load(), qt.Equals, int32(3))
}

func TestSearchBallotsErrorIsNotKeptForAMinute(t *testing.T) {
	c := qt.New(t)
	q, data, clk := newQueries(t)
	ctx := context.Background()
	errBlip := errors.New("backend blip")

	data.FailWith(errBlip)
	r := q.FetchSearchBallots(ctx, testcommon.ElectionID, "river", true)
	c.Assert(r.IsError(), qt.IsTrue)
	c.Assert(errors.Is(r.Err, errBlip), qt.IsTrue)
	failedCalls := data.SearchBallotsCalls.Load()

	data.FailWith(nil)
	clk.Advance(30 * time.Second)
	r = q.FetchSearchBallots(ctx, testcommon.ElectionID, "river", true)
	c.Assert(r.IsError(), qt.IsFalse)
	c.Assert(r.IsSuccess(), qt.IsTrue)
	c.Assert(r.Data, qt.HasLen, 2)
	c.Assert(data.SearchBallotsCalls.Load(), qt.Equals, failedCalls+1)

	// the successful retrieval starts the one minute window
	clk.Advance(30 * time.Second)
	r = q.FetchSearchBallots(ctx, testcommon.ElectionID, "river", true)
	c.Assert(r.IsSuccess(), qt.IsTrue)
	c.Assert(data.SearchBallotsCalls.Load(), qt.Equals, failedCalls+1)
}

func TestSearchBallotsInFlightIsShared(t *testing.T) {
	c := qt.New(t)
	q, data, _ := newQueries(t)
	data.Block()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := q.FetchSearchBallots(context.Background(), testcommon.ElectionID, "cloud", true)
			c.Check(r.IsSuccess(), qt.IsTrue)
			c.Check(r.Data, qt.HasLen, 1)
		}()
	}
	for data.SearchBallotsCalls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	c.Assert(q.SearchBallots(testcommon.ElectionID, "cloud", true).IsLoading(), qt.IsTrue)
	data.Release()
	wg.Wait()
	c.Assert(data.SearchBallotsCalls.Load(), qt.Equals, int32(1))
}

func TestFetchElection(t *testing.T) {
	c := qt.New(t)
	q, _, _ := newQueries(t)
	ctx := context.Background()

	e, err := q.FetchElection(ctx, testcommon.ElectionID)
	c.Assert(err, qt.IsNil)
	c.Assert(e.ElectionDescription.Contests, qt.HasLen, 2)

	_, err = q.FetchElection(ctx, "missing")
	c.Assert(errors.Is(err, queries.ErrElectionNotFound), qt.IsTrue)
	c.Assert(errors.Is(err, queries.ErrNotFound), qt.IsTrue)

	_, err = q.FetchElection(ctx, "")
	c.Assert(errors.Is(err, queries.ErrElectionNotFound), qt.IsTrue)
}

func TestLoadStatic(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "snapshot.json")
	data, err := json.Marshal(testcommon.Snapshot())
	c.Assert(err, qt.IsNil)
	c.Assert(os.WriteFile(path, data, 0o644), qt.IsNil)

	s, err := queries.LoadStatic(path)
	c.Assert(err, qt.IsNil)
	elections, err := s.Elections(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(elections, qt.HasLen, 2)
	ballots, err := s.SearchBallots(context.Background(), testcommon.ElectionID, "T-0002")
	c.Assert(err, qt.IsNil)
	c.Assert(ballots, qt.HasLen, 1)
	ballots, err = s.SearchBallots(context.Background(), testcommon.ElectionID, "  ")
	c.Assert(err, qt.IsNil)
	c.Assert(ballots, qt.HasLen, 0)

	c.Assert(os.WriteFile(path, []byte("{"), 0o644), qt.IsNil)
	_, err = queries.LoadStatic(path)
	c.Assert(err, qt.ErrorMatches, "cannot decode snapshot .*")
}
