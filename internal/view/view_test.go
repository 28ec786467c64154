package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joshp123/acwatch/internal/units"
)

func sampleCollection() units.Collection {
	return units.Loaded([]units.Snapshot{
		{
			Name: "Living Room",
			Attributes: units.NewAttributes(
				units.Attribute{Key: "power_status", Value: units.String("ON")},
				units.Attribute{Key: "mode", Value: units.String("COOL")},
				units.Attribute{Key: "target_temperature", Value: units.Number(22)},
			),
		},
		{
			Name:       "Living Room",
			Attributes: units.NewAttributes(units.Attribute{Key: "indoor_temp", Value: units.Number(21.5)}),
		},
	})
}

func TestProjectNotLoaded(t *testing.T) {
	d := Project(units.NotLoaded())
	if d.Loaded || len(d.Units) != 0 {
		t.Fatalf("unexpected display: %+v", d)
	}
}

func TestProjectEmpty(t *testing.T) {
	d := Project(units.Loaded(nil))
	if !d.Loaded {
		t.Fatalf("loaded empty collection must project as loaded")
	}
	if len(d.Units) != 0 {
		t.Fatalf("expected no units, got %d", len(d.Units))
	}
}

func TestProjectKeepsOrderAndDuplicates(t *testing.T) {
	want := Display{
		Loaded: true,
		Units: []Unit{
			{Name: "Living Room", Rows: []Row{
				{Label: "power_status", Value: "ON"},
				{Label: "mode", Value: "COOL"},
				{Label: "target_temperature", Value: "22"},
			}},
			{Name: "Living Room", Rows: []Row{{Label: "indoor_temp", Value: "21.5"}}},
		},
	}
	if diff := cmp.Diff(want, Project(sampleCollection())); diff != "" {
		t.Fatalf("projection mismatch (-want +got):\n%s", diff)
	}
}

func renderText(t *testing.T, d Display) string {
	t.Helper()
	var b bytes.Buffer
	if err := WriteText(&b, d); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	return b.String()
}

func TestTextPlaceholder(t *testing.T) {
	if got := strings.TrimSpace(renderText(t, Project(units.NotLoaded()))); got != Placeholder {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestTextListsRowsInOrder(t *testing.T) {
	out := renderText(t, Project(sampleCollection()))
	if !strings.HasPrefix(out, Title+"\n") {
		t.Fatalf("expected title first, got %q", out)
	}
	power := strings.Index(out, "power_status")
	mode := strings.Index(out, "mode")
	temp := strings.Index(out, "target_temperature")
	if power < 0 || !(power < mode && mode < temp) {
		t.Fatalf("rows out of order:\n%s", out)
	}
}

func TestTable(t *testing.T) {
	rows := Table(Project(sampleCollection()))
	if len(rows) != 5 {
		t.Fatalf("expected header + 4 rows, got %d", len(rows))
	}
	if diff := cmp.Diff([]string{"Living Room", "power_status", "ON"}, rows[1]); diff != "" {
		t.Fatalf("unexpected first row (-want +got):\n%s", diff)
	}
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, Project(units.NotLoaded()), 1); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	if !strings.Contains(buf.String(), Placeholder) {
		t.Fatalf("expected placeholder in page")
	}
	if !strings.Contains(buf.String(), `content="1"`) {
		t.Fatalf("expected refresh meta tag")
	}

	buf.Reset()
	snaps := []units.Snapshot{{
		Name:       "<Kids>",
		Attributes: units.NewAttributes(units.Attribute{Key: "mode", Value: units.String("HEAT")}),
	}}
	if err := WriteHTML(&buf, Project(units.Loaded(snaps)), 0); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	page := buf.String()
	if !strings.Contains(page, "&lt;Kids&gt;") {
		t.Fatalf("expected escaped unit name, got:\n%s", page)
	}
	if !strings.Contains(page, "<dt>mode</dt><dd>HEAT</dd>") {
		t.Fatalf("expected attribute row, got:\n%s", page)
	}
	if strings.Contains(page, "http-equiv") {
		t.Fatalf("did not expect refresh meta tag")
	}
}
