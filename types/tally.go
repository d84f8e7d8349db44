package types

import "sort"

// ContestResults maps a selection id to the number of votes it received.
type ContestResults map[string]uint64

// SelectionIDs returns the tally keys in ascending order.
func (r ContestResults) SelectionIDs() []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Total returns the sum of all the tallies.
func (r ContestResults) Total() uint64 {
	var total uint64
	for _, v := range r {
		total += v
	}
	return total
}

// ElectionResultsSummary is the published tally of an election.
type ElectionResultsSummary struct {
	ElectionID      string                    `json:"election_id"`
	DataReady       bool                      `json:"data_ready"`
	ElectionResults map[string]ContestResults `json:"election_results"`
	SpoiledBallots  uint64                    `json:"spoiled_ballots"`
	CastBallots     uint64                    `json:"cast_ballots"`
	TotalBallots    uint64                    `json:"total_ballots"`
}
