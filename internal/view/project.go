package view

import "github.com/joshp123/acwatch/internal/units"

const (
	Title       = "AC Units"
	Placeholder = "Awaiting initial data.."
)

// Display is the render-ready form of a unit collection.
type Display struct {
	Loaded bool
	Units  []Unit
}

type Unit struct {
	Name string
	Rows []Row
}

// Row is one label/value pair in attribute order.
type Row struct {
	Label string
	Value string
}

// Project maps a collection to a Display. It has no state of its own.
func Project(c units.Collection) Display {
	if !c.IsLoaded() {
		return Display{}
	}

	snapshots := c.Units()
	out := Display{Loaded: true, Units: make([]Unit, 0, len(snapshots))}
	for _, snap := range snapshots {
		unit := Unit{Name: snap.Name, Rows: make([]Row, 0, snap.Attributes.Len())}
		for key, value := range snap.Attributes.All() {
			unit.Rows = append(unit.Rows, Row{Label: key, Value: value.String()})
		}
		out.Units = append(out.Units, unit)
	}
	return out
}
