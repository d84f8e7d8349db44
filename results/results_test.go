package results

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/explorer/localization"
	"go.vocdoni.io/explorer/types"
)

// markTranslator makes translated strings distinguishable from raw ids.
var markTranslator = localization.TranslatorFunc(func(t types.InternationalizedText) string {
	if len(t.Text) == 0 {
		return "t()"
	}
	return "t(" + t.Text[0].Value + ")"
})

func testContest() *types.ContestDescription {
	return &types.ContestDescription{
		ObjectID:    "mayor",
		BallotTitle: types.NewText("en", "Mayor"),
		BallotSelections: []types.SelectionDescription{
			{ObjectID: "sel-alice", CandidateID: "alice", SequenceOrder: 0},
			{ObjectID: "sel-bob", CandidateID: "bob", SequenceOrder: 1},
			{ObjectID: "sel-ghost", CandidateID: "ghost", SequenceOrder: 2},
			{ObjectID: "sel-blank", SequenceOrder: 3},
		},
	}
}

func testCandidates() []types.Candidate {
	return []types.Candidate{
		{ObjectID: "alice", BallotName: types.NewText("en", "Alice Adams", "es", "Alicia Adams")},
		{ObjectID: "bob", BallotName: types.NewText("en", "Bob Brown")},
	}
}

func TestContestChart(t *testing.T) {
	c := qt.New(t)
	tally := types.ContestResults{
		"sel-bob":     12,
		"sel-alice":   30,
		"sel-ghost":   2,
		"sel-missing": 1,
		"sel-blank":   4,
	}
	chart := ContestChart(tally, testContest(), testCandidates(), markTranslator)

	c.Assert(chart.Title, qt.Equals, "t(Mayor)")
	c.Assert(chart.Candidates, qt.DeepEquals, []ChartEntry{
		{ID: "sel-alice", Title: "t(Alice Adams)", Tally: 30},
		{ID: "sel-blank", Title: UnknownCandidate, Tally: 4},
		{ID: "sel-bob", Title: "t(Bob Brown)", Tally: 12},
		{ID: "sel-ghost", Title: "ghost", Tally: 2},
		{ID: "sel-missing", Title: UnknownCandidate, Tally: 1},
	})
	c.Assert(chart.Total(), qt.Equals, uint64(49))
}

func TestContestChartOneEntryPerTally(t *testing.T) {
	c := qt.New(t)
	tally := types.ContestResults{}
	for i := 0; i < 50; i++ {
		tally["s"+strings.Repeat("x", i)] = uint64(i)
	}
	chart := ContestChart(tally, testContest(), testCandidates(), markTranslator)
	c.Assert(chart.Candidates, qt.HasLen, len(tally))
	for _, e := range chart.Candidates {
		v, ok := tally[e.ID]
		c.Assert(ok, qt.IsTrue)
		c.Assert(e.Tally, qt.Equals, v)
		c.Assert(e.Title, qt.Equals, UnknownCandidate)
	}

	empty := ContestChart(types.ContestResults{}, testContest(), nil, markTranslator)
	c.Assert(empty.Candidates, qt.HasLen, 0)
}

func TestContestChartLocalized(t *testing.T) {
	c := qt.New(t)
	tally := types.ContestResults{"sel-alice": 1, "sel-ghost": 1}
	chart := ContestChart(tally, testContest(), testCandidates(), localization.New("es"))
	c.Assert(chart.Candidates[0].Title, qt.Equals, "Alicia Adams")
	c.Assert(chart.Candidates[1].Title, qt.Equals, "ghost")
}

func TestElectionCharts(t *testing.T) {
	c := qt.New(t)
	council := types.ContestDescription{
		ObjectID:      "council",
		SequenceOrder: 0,
		BallotTitle:   types.NewText("en", "Council"),
		BallotSelections: []types.SelectionDescription{
			{ObjectID: "sel-yes", CandidateID: "bob"},
		},
	}
	mayor := *testContest()
	mayor.SequenceOrder = 1
	referendum := types.ContestDescription{ObjectID: "referendum", SequenceOrder: 2}

	election := &types.ElectionDescription{
		Contests:   []types.ContestDescription{mayor, referendum, council},
		Candidates: testCandidates(),
	}
	summary := &types.ElectionResultsSummary{
		ElectionResults: map[string]types.ContestResults{
			"mayor":   {"sel-alice": 3},
			"council": {"sel-yes": 7},
			"other":   {"x": 1},
		},
	}
	entries := ElectionCharts(summary, election, markTranslator)
	c.Assert(entries, qt.HasLen, 2)
	c.Assert(entries[0].ContestID, qt.Equals, "council")
	c.Assert(entries[0].Title, qt.Equals, "t(Council)")
	c.Assert(entries[0].Candidates, qt.DeepEquals, []ChartEntry{{ID: "sel-yes", Title: "t(Bob Brown)", Tally: 7}})
	c.Assert(entries[1].ContestID, qt.Equals, "mayor")
	// the election contests are not reordered in place
	c.Assert(election.Contests[0].ObjectID, qt.Equals, "mayor")
}

func TestViewJSON(t *testing.T) {
	c := qt.New(t)
	var buf bytes.Buffer
	v := NewView(markTranslator, JSONRenderer{})
	err := v.Render(&buf, types.ContestResults{"sel-bob": 5}, testContest(), testCandidates())
	c.Assert(err, qt.IsNil)

	var got Chart
	c.Assert(json.Unmarshal(buf.Bytes(), &got), qt.IsNil)
	c.Assert(got, qt.DeepEquals, Chart{
		Title:      "t(Mayor)",
		Candidates: []ChartEntry{{ID: "sel-bob", Title: "t(Bob Brown)", Tally: 5}},
	})
}

func TestTableRenderer(t *testing.T) {
	c := qt.New(t)
	noColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = noColor }()

	var buf bytes.Buffer
	chart := &Chart{
		Title: "Mayor",
		Candidates: []ChartEntry{
			{ID: "sel-alice", Title: "Alice Adams", Tally: 3},
			{ID: "sel-bob", Title: "Bob Brown", Tally: 1},
		},
	}
	c.Assert(TableRenderer{}.Render(&buf, chart), qt.IsNil)
	out := buf.String()
	c.Assert(out, qt.Contains, "Mayor")
	c.Assert(out, qt.Contains, "Alice Adams")
	c.Assert(out, qt.Contains, "75.00%")
	c.Assert(out, qt.Contains, "25.00%")
	c.Assert(strings.ToUpper(out), qt.Contains, "TOTAL")

	buf.Reset()
	c.Assert(TableRenderer{}.Render(&buf, &Chart{Title: "Empty"}), qt.IsNil)
	c.Assert(buf.String(), qt.Contains, "Empty")
}
