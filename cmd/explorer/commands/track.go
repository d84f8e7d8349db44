package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.vocdoni.io/explorer/queries"
	"go.vocdoni.io/explorer/types"
)

func (c *cli) trackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "track <electionID> <tracker words or code>",
		Short: "search the ballots of an election by their tracker",
		Args:  cobra.MinimumNArgs(2),
		RunE:  c.track,
	}
}

func (c *cli) track(cmd *cobra.Command, args []string) error {
	q, client, err := c.newQueries()
	if err != nil {
		return err
	}
	defer client.Close()

	electionID, tracker := args[0], strings.Join(args[1:], " ")
	r := q.FetchSearchBallots(cmd.Context(), electionID, tracker, queries.Always)
	if !r.HasData {
		return fmt.Errorf("cannot search ballots: %w", r.Err)
	}
	out := cmd.OutOrStdout()
	if c.cfg.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r.Data)
	}
	if len(r.Data) == 0 {
		fmt.Fprintf(out, "no ballot matches %q\n", tracker)
		return nil
	}
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Tracker", "Words", "State", "Time"})
	table.SetAutoWrapText(false)
	for _, b := range r.Data {
		table.Append([]string{b.TrackerID, b.TrackerWordsString, c.ballotState(b.State), formatDate(b.Timestamp)})
	}
	table.Render()
	return nil
}

func (c *cli) ballotState(s types.BallotState) string {
	switch s {
	case types.BallotStateCast:
		return c.au.Green(string(s)).String()
	case types.BallotStateSpoiled:
		return c.au.Red(string(s)).String()
	default:
		return string(s)
	}
}
