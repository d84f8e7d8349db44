package queries

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.vocdoni.io/explorer/types"
)

// Snapshot is a dump of the backend data, as loaded by Static.
type Snapshot struct {
	Elections []types.Election                         `json:"elections"`
	Results   map[string]*types.ElectionResultsSummary `json:"results"`
	Ballots   map[string][]types.TrackedBallot         `json:"ballots"`
}

// Static is a DataAccess serving a Snapshot from memory. It is meant for
// offline browsing of exported data and for tests.
type Static struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

var _ DataAccess = (*Static)(nil)

// NewStatic returns a Static serving snapshot.
func NewStatic(snapshot Snapshot) *Static {
	return &Static{snapshot: snapshot}
}

// LoadStatic reads a JSON Snapshot from path.
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("cannot decode snapshot %s: %w", path, err)
	}
	return NewStatic(s), nil
}

// Elections implements DataAccess.
func (s *Static) Elections(ctx context.Context) ([]types.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	elections := make([]types.Election, len(s.snapshot.Elections))
	copy(elections, s.snapshot.Elections)
	return elections, nil
}

// ElectionResults implements DataAccess.
func (s *Static) ElectionResults(ctx context.Context, electionID string) (*types.ElectionResultsSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.snapshot.Results[electionID]
	if !ok {
		return nil, fmt.Errorf("results of election %s: %w", electionID, ErrNotFound)
	}
	return r, nil
}

// SearchBallots implements DataAccess. A ballot matches when its tracker
// words or tracker id contain trackerQuery, ignoring case.
func (s *Static) SearchBallots(ctx context.Context, electionID, trackerQuery string) ([]types.TrackedBallot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(trackerQuery))
	found := []types.TrackedBallot{}
	if q == "" {
		return found, nil
	}
	for _, b := range s.snapshot.Ballots[electionID] {
		if strings.Contains(strings.ToLower(b.TrackerWordsString), q) ||
			strings.Contains(strings.ToLower(b.TrackerID), q) {
			found = append(found, b)
		}
	}
	return found, nil
}

// SetResults replaces the results of an election.
func (s *Static) SetResults(electionID string, results *types.ElectionResultsSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot.Results == nil {
		s.snapshot.Results = make(map[string]*types.ElectionResultsSummary)
	}
	s.snapshot.Results[electionID] = results
}
