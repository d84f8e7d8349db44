package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/explorer/results"
	"go.vocdoni.io/explorer/test/testcommon"
)

// snapshotFile writes the test snapshot in a temporary directory.
func snapshotFile(t *testing.T) string {
	data, err := json.Marshal(testcommon.Snapshot())
	qt.Assert(t, err, qt.IsNil)
	path := filepath.Join(t.TempDir(), "snapshot.json")
	qt.Assert(t, os.WriteFile(path, data, 0o600), qt.IsNil)
	return path
}

// run executes the command tree with args, reading from the snapshot file.
func run(t *testing.T, args ...string) (string, error) {
	root := NewRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(append([]string{
		"--dataDir", t.TempDir(),
		"--dataFile", snapshotFile(t),
		"--color=false",
		"--logLevel", "error",
	}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestElectionsCmd(t *testing.T) {
	out, err := run(t, "elections")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, out, qt.Contains, testcommon.ElectionID)
	qt.Assert(t, out, qt.Contains, "school-board")
	qt.Assert(t, out, qt.Contains, "City General Election")
}

func TestResultsCmd(t *testing.T) {
	out, err := run(t, "--lang", "es", "results", testcommon.ElectionID)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, out, qt.Contains, "Alcaldía")
	qt.Assert(t, out, qt.Contains, "Alice Adams")
	qt.Assert(t, out, qt.Contains, "Sí")
	qt.Assert(t, out, qt.Contains, "cast 203, spoiled 2, total 205")
}

func TestChartCmdJSON(t *testing.T) {
	out, err := run(t, "--json", "chart", testcommon.ElectionID, "mayor")
	qt.Assert(t, err, qt.IsNil)
	chart := results.Chart{}
	qt.Assert(t, json.Unmarshal([]byte(out), &chart), qt.IsNil)
	qt.Assert(t, chart.Title, qt.Equals, "Mayor")
	qt.Assert(t, chart.Candidates, qt.DeepEquals, []results.ChartEntry{
		{ID: "mayor-alice", Title: "Alice Adams", Tally: 120},
		{ID: "mayor-bob", Title: "Bob Brown", Tally: 80},
		{ID: "mayor-carol", Title: "carol", Tally: 3},
	})
}

func TestChartCmdErrors(t *testing.T) {
	_, err := run(t, "chart", testcommon.ElectionID, "council")
	qt.Assert(t, err, qt.ErrorMatches, "contest council not found.*")

	_, err = run(t, "chart", "school-board", "mayor")
	qt.Assert(t, err, qt.ErrorMatches, "cannot fetch results of election school-board.*")

	_, err = run(t, "chart", testcommon.ElectionID)
	qt.Assert(t, err, qt.ErrorMatches, "expected arguments: <electionID> <contestID>")
}

func TestTrackCmd(t *testing.T) {
	out, err := run(t, "track", testcommon.ElectionID, "river")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, out, qt.Contains, "t-0001")
	qt.Assert(t, out, qt.Contains, "t-0002")
	qt.Assert(t, out, qt.Contains, "Spoiled")

	out, err = run(t, "track", testcommon.ElectionID, "apple", "river")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, out, qt.Contains, "t-0001")
	qt.Assert(t, out, qt.Not(qt.Contains), "t-0002")

	out, err = run(t, "track", testcommon.ElectionID, "nothing")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, out, qt.Contains, `no ballot matches "nothing"`)
}

func TestConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yml := "json: true\ndataFile: " + snapshotFile(t) + "\n"
	qt.Assert(t, os.WriteFile(filepath.Join(dir, "explorer.yml"), []byte(yml), 0o600), qt.IsNil)
	t.Setenv("EXPLORER_LANG", "es")

	root := NewRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetArgs([]string{"--dataDir", dir, "--logLevel", "error", "chart", testcommon.ElectionID, "referendum"})
	qt.Assert(t, root.Execute(), qt.IsNil)

	chart := results.Chart{}
	qt.Assert(t, json.Unmarshal(out.Bytes(), &chart), qt.IsNil)
	qt.Assert(t, chart.Title, qt.Equals, "¿Construir la nueva biblioteca?")
}
