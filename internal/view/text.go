package view

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteText renders the display as aligned plain text.
func WriteText(w io.Writer, d Display) error {
	if !d.Loaded {
		_, err := fmt.Fprintln(w, Placeholder)
		return err
	}

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, Title)
	for _, unit := range d.Units {
		fmt.Fprintln(tw, "")
		fmt.Fprintln(tw, unit.Name)
		for _, row := range unit.Rows {
			fmt.Fprintf(tw, "  %s\t%s\n", row.Label, row.Value)
		}
	}
	return tw.Flush()
}

// Table flattens the display into rows of unit, attribute, value.
func Table(d Display) [][]string {
	rows := [][]string{{"UNIT", "ATTRIBUTE", "VALUE"}}
	for _, unit := range d.Units {
		for _, row := range unit.Rows {
			rows = append(rows, []string{unit.Name, row.Label, row.Value})
		}
	}
	return rows
}
