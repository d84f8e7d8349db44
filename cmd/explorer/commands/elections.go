package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.vocdoni.io/explorer/queries"
	"go.vocdoni.io/explorer/types"
)

func (c *cli) electionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "elections",
		Short: "list the elections",
		Args:  cobra.NoArgs,
		RunE:  c.elections,
	}
}

func (c *cli) elections(cmd *cobra.Command, args []string) error {
	q, client, err := c.newQueries()
	if err != nil {
		return err
	}
	defer client.Close()

	r := q.FetchElections(cmd.Context(), queries.Always)
	if !r.HasData {
		return fmt.Errorf("cannot fetch elections: %w", r.Err)
	}
	out := cmd.OutOrStdout()
	if c.cfg.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r.Data)
	}

	tr := c.translator()
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "Name", "State", "Start", "End"})
	table.SetAutoWrapText(false)
	for _, e := range r.Data {
		table.Append([]string{
			e.ID,
			tr.Translate(e.ElectionDescription.Name),
			c.state(e.State),
			formatDate(e.ElectionDescription.StartDate),
			formatDate(e.ElectionDescription.EndDate),
		})
	}
	table.Render()
	return nil
}

func (c *cli) state(s types.ElectionState) string {
	switch s {
	case types.ElectionStateOpen:
		return c.au.Green(string(s)).String()
	case types.ElectionStatePublished:
		return c.au.Cyan(string(s)).String()
	default:
		return c.au.Yellow(string(s)).String()
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
