package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.vocdoni.io/explorer/results"
)

func (c *cli) resultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "results <electionID>",
		Short: "show the results chart of every contest of an election",
		Args:  exactArgs(1, "<electionID>"),
		RunE:  c.results,
	}
}

func (c *cli) chartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chart <electionID> <contestID>",
		Short: "show the results chart of a contest",
		Args:  exactArgs(2, "<electionID> <contestID>"),
		RunE:  c.chart,
	}
}

func (c *cli) results(cmd *cobra.Command, args []string) error {
	q, client, err := c.newQueries()
	if err != nil {
		return err
	}
	defer client.Close()

	election, summary, err := electionAndResults(cmd.Context(), q, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	r := c.renderer()
	for _, entry := range results.ElectionCharts(summary, &election.ElectionDescription, c.translator()) {
		chart := entry.Chart
		if err := r.Render(out, &chart); err != nil {
			return err
		}
	}
	if !c.cfg.JSON {
		fmt.Fprintf(out, "cast %d, spoiled %d, total %d\n",
			summary.CastBallots, summary.SpoiledBallots, summary.TotalBallots)
		if !summary.DataReady {
			fmt.Fprintln(out, c.au.Yellow("results are not final yet"))
		}
	}
	return nil
}

func (c *cli) chart(cmd *cobra.Command, args []string) error {
	q, client, err := c.newQueries()
	if err != nil {
		return err
	}
	defer client.Close()

	election, summary, err := electionAndResults(cmd.Context(), q, args[0])
	if err != nil {
		return err
	}
	contest, ok := election.ElectionDescription.Contest(args[1])
	if !ok {
		return fmt.Errorf("contest %s not found in election %s", args[1], args[0])
	}
	tally, ok := summary.ElectionResults[contest.ObjectID]
	if !ok {
		return fmt.Errorf("contest %s has no results", contest.ObjectID)
	}
	view := results.NewView(c.translator(), c.renderer())
	return view.Render(cmd.OutOrStdout(), tally, contest, election.ElectionDescription.Candidates)
}
