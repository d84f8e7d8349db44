package results

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// JSONRenderer writes the chart as a JSON document.
type JSONRenderer struct {
	Indent string
}

// Render implements Renderer.
func (r JSONRenderer) Render(w io.Writer, chart *Chart) error {
	enc := json.NewEncoder(w)
	if r.Indent != "" {
		enc.SetIndent("", r.Indent)
	}
	return enc.Encode(chart)
}

// TableRenderer draws the chart as a text table, one row per entry, with the
// share of the total and the leading entries highlighted.
type TableRenderer struct{}

var leaderColor = color.New(color.FgGreen, color.Bold)

// Render implements Renderer.
func (TableRenderer) Render(w io.Writer, chart *Chart) error {
	if _, err := fmt.Fprintln(w, color.New(color.Bold).Sprint(chart.Title)); err != nil {
		return err
	}
	total := chart.Total()
	var top uint64
	for _, e := range chart.Candidates {
		if e.Tally > top {
			top = e.Tally
		}
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Selection", "Candidate", "Votes", "Share"})
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
	})
	for _, e := range chart.Candidates {
		row := []string{e.ID, e.Title, strconv.FormatUint(e.Tally, 10), share(e.Tally, total)}
		if top > 0 && e.Tally == top {
			for i := range row {
				row[i] = leaderColor.Sprint(row[i])
			}
		}
		table.Append(row)
	}
	table.SetFooter([]string{"", "Total", strconv.FormatUint(total, 10), ""})
	table.Render()
	return nil
}

func share(n, total uint64) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", float64(n)*100/float64(total))
}
