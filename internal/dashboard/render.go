package dashboard

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/weiihann/ecoquest-analytics/pkg/analytics"
)

// RenderText writes the view as plain-text tables for terminal use.
func RenderText(w io.Writer, v View) error {
	switch v.State {
	case StateLoading:
		_, err := fmt.Fprintln(w, "Loading analytics...")
		return err
	case StateError:
		_, err := fmt.Fprintf(w, "Error: %s\n", v.Error)
		return err
	}

	if v.LastUpdatedLabel != "" {
		if _, err := fmt.Fprintf(w, "Last updated %s\n\n", v.LastUpdatedLabel); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, "Overall Participation Metrics"); err != nil {
		return err
	}
	cards := newTable(w, []string{"Metric", "Value"})
	for _, c := range v.Cards {
		cards.Append([]string{c.Label, c.Display})
	}
	cards.Render()

	if _, err := fmt.Fprintf(w, "\nRecycling Stats\nTotal collected: %s\nProgress to pilot goal: %s\n\n",
		v.CollectedDisplay, v.Progress.Display); err != nil {
		return err
	}

	materials := newTable(w, []string{"Material", "Collected (pcs)", "Target"})
	for _, m := range v.Materials {
		materials.Append([]string{m.Name, analytics.FormatNumber(m.Collected), analytics.FormatNumber(m.Target)})
	}
	materials.Render()

	if _, err := fmt.Fprintln(w, "\nHighlight / Environmental Impact"); err != nil {
		return err
	}
	if len(v.Highlights) == 0 {
		if _, err := fmt.Fprintln(w, "No collected materials yet."); err != nil {
			return err
		}
	} else {
		top := newTable(w, []string{"#", "Material", "Collected", "Impact", "Target (pilot)"})
		for _, h := range v.Highlights {
			impact := "-"
			if h.Impact != nil {
				impact = fmt.Sprintf("%s: %s", h.Impact.Label, h.Impact.Display)
			}
			top.Append([]string{strconv.Itoa(h.Rank), h.Name, h.CollectedDisplay, impact, h.PilotTargetDisplay})
		}
		top.Render()
	}

	_, err := fmt.Fprintf(w, "\n%s.\n", v.Summary)
	return err
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}
