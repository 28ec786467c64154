package dash

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/joshp123/acwatch/internal/store"
	"github.com/joshp123/acwatch/internal/view"
)

const (
	borderColor = tcell.ColorGray
	titleColor  = tcell.ColorHotPink

	// statusTick refreshes the "updated … ago" line between store changes.
	statusTick = 5 * time.Second
)

// Dashboard is the terminal rendering of the unit store.
type Dashboard struct {
	app    *tview.Application
	body   *tview.TextView
	status *tview.TextView

	store  *store.Store
	source string

	// lastUpdate is only touched on the tview event goroutine.
	lastUpdate time.Time
}

func New(st *store.Store, source string) *Dashboard {
	d := &Dashboard{
		app:    tview.NewApplication(),
		store:  st,
		source: source,
	}

	d.body = tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	d.body.SetBorder(true)
	d.body.SetTitle(accentText(view.Title)).SetTitleAlign(tview.AlignLeft)
	d.body.SetBorderColor(borderColor)
	d.body.SetTitleColor(titleColor)

	d.status = tview.NewTextView().SetDynamicColors(true).SetWrap(false)

	footer := tview.NewTextView().SetDynamicColors(true).SetText(accentText("Q") + "Quit  " + accentText("↑↓") + "Scroll")

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(d.status, 1, 0, false).
		AddItem(d.body, 0, 1, true).
		AddItem(footer, 1, 0, false)
	d.app.SetRoot(root, true)

	d.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEsc || event.Rune() == 'q' || event.Rune() == 'Q' {
			d.app.Stop()
			return nil
		}
		return event
	})

	d.render()
	return d
}

// Run blocks until the user quits or ctx is cancelled.
func (d *Dashboard) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}

	updates, unsubscribe := d.store.Subscribe()
	defer unsubscribe()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		ticker := time.NewTicker(statusTick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				// Stop is a no-op until Run has a screen; queued updates only
				// run inside the event loop, after the screen exists.
				d.app.QueueUpdate(d.app.Stop)
				return
			case _, ok := <-updates:
				if !ok {
					return
				}
				d.app.QueueUpdateDraw(func() {
					d.lastUpdate = time.Now()
					d.render()
				})
			case <-ticker.C:
				d.app.QueueUpdateDraw(d.renderStatus)
			}
		}
	}()

	if err := d.app.Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}

func (d *Dashboard) render() {
	d.body.SetText(formatDisplay(view.Project(d.store.Get())))
	d.renderStatus()
}

func (d *Dashboard) renderStatus() {
	d.status.SetText(formatStatus(d.source, d.lastUpdate))
}

func formatDisplay(display view.Display) string {
	if !display.Loaded {
		return "[gray]" + view.Placeholder + "[-]"
	}
	if len(display.Units) == 0 {
		return "[gray]no units[-]"
	}

	var b strings.Builder
	for i, unit := range display.Units {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(accentText(tview.Escape(unit.Name)))
		b.WriteString("\n")

		width := 0
		for _, row := range unit.Rows {
			if len(row.Label) > width {
				width = len(row.Label)
			}
		}
		for _, row := range unit.Rows {
			fmt.Fprintf(&b, "  [gray]%-*s[-]  %s\n", width, tview.Escape(row.Label), tview.Escape(row.Value))
		}
	}
	return b.String()
}

func formatStatus(source string, lastUpdate time.Time) string {
	updated := "never"
	if !lastUpdate.IsZero() {
		updated = humanize.Time(lastUpdate)
	}
	return fmt.Sprintf(" %s  [gray]updated %s[-]", tview.Escape(source), updated)
}

func accentText(s string) string {
	return "[hotpink::b]" + s + "[-:-:-]"
}
