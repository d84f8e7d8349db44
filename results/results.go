// Package results turns the tallies of a contest into chart data and hands
// it to a chart renderer.
package results

import (
	"io"
	"sort"

	"go.vocdoni.io/explorer/localization"
	"go.vocdoni.io/explorer/types"
)

// UnknownCandidate is the candidate id used for tallies whose selection is not
// part of the contest.
const UnknownCandidate = "UNKNOWN"

// ChartEntry is one bar of a contest chart.
type ChartEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Tally uint64 `json:"tally"`
}

// Chart is what a Renderer draws: a title and one entry per tally.
type Chart struct {
	Title      string       `json:"title"`
	Candidates []ChartEntry `json:"candidates"`
}

// Total returns the sum of all the entries' tallies.
func (c *Chart) Total() uint64 {
	var total uint64
	for _, e := range c.Candidates {
		total += e.Tally
	}
	return total
}

// Renderer draws a chart.
type Renderer interface {
	Render(w io.Writer, chart *Chart) error
}

// ContestChart builds the chart of a contest out of its tally. There is one
// entry per tally key, in ascending selection id order.
//
// A selection missing from the contest resolves to UnknownCandidate, and a
// candidate missing from the list is shown by its raw id, untranslated.
func ContestChart(results types.ContestResults, contest *types.ContestDescription,
	candidates []types.Candidate, tr localization.Translator,
) *Chart {
	selections := make(map[string]string, len(contest.BallotSelections))
	for _, s := range contest.BallotSelections {
		if _, ok := selections[s.ObjectID]; !ok {
			selections[s.ObjectID] = s.CandidateID
		}
	}
	byID := make(map[string]*types.Candidate, len(candidates))
	for i := range candidates {
		if _, ok := byID[candidates[i].ObjectID]; !ok {
			byID[candidates[i].ObjectID] = &candidates[i]
		}
	}

	candidateName := func(selectionID string) string {
		candidateID := selections[selectionID]
		if candidateID == "" {
			candidateID = UnknownCandidate
		}
		if c, ok := byID[candidateID]; ok {
			return tr.Translate(c.BallotName)
		}
		return candidateID
	}

	chart := &Chart{
		Title:      tr.Translate(contest.BallotTitle),
		Candidates: make([]ChartEntry, 0, len(results)),
	}
	for _, selectionID := range results.SelectionIDs() {
		chart.Candidates = append(chart.Candidates, ChartEntry{
			ID:    selectionID,
			Title: candidateName(selectionID),
			Tally: results[selectionID],
		})
	}
	return chart
}

// ContestEntry is the chart of one contest of an election.
type ContestEntry struct {
	ContestID     string `json:"contest_id"`
	SequenceOrder int    `json:"sequence_order"`
	Chart
}

// ElectionCharts returns the chart of every contest of the election that has
// results in the summary, in ballot sequence order. Contests without results
// are skipped.
func ElectionCharts(summary *types.ElectionResultsSummary, election *types.ElectionDescription,
	tr localization.Translator,
) []ContestEntry {
	contests := make([]types.ContestDescription, len(election.Contests))
	copy(contests, election.Contests)
	sort.SliceStable(contests, func(i, j int) bool {
		return contests[i].SequenceOrder < contests[j].SequenceOrder
	})

	entries := []ContestEntry{}
	for i := range contests {
		tally, ok := summary.ElectionResults[contests[i].ObjectID]
		if !ok {
			continue
		}
		entries = append(entries, ContestEntry{
			ContestID:     contests[i].ObjectID,
			SequenceOrder: contests[i].SequenceOrder,
			Chart:         *ContestChart(tally, &contests[i], election.Candidates, tr),
		})
	}
	return entries
}

// View renders contest results through a Translator and a Renderer.
type View struct {
	Translator localization.Translator
	Renderer   Renderer
}

// NewView returns a View for the given collaborators.
func NewView(tr localization.Translator, r Renderer) *View {
	return &View{Translator: tr, Renderer: r}
}

// Render builds the contest chart and passes it to the renderer.
func (v *View) Render(w io.Writer, results types.ContestResults,
	contest *types.ContestDescription, candidates []types.Candidate,
) error {
	return v.Renderer.Render(w, ContestChart(results, contest, candidates, v.Translator))
}
