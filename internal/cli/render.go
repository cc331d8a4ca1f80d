package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/flipdeck/internal/deck"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	committedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7FD17F")).
			Padding(0, 1)
	hiddenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)
	observedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Padding(0, 1)
	tableStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

// TableView is what a spectator sees after a turn.
type TableView struct {
	Turn  int
	Seat  int
	Slots []deck.Slot
	// Observed is the index of the card observed this turn, -1 if none.
	Observed      int
	ObservedValue int
}

// tableView captures the engine state after the turn that just ended.
// The engine never reveals a hidden value, so the observed value comes from
// the event stream.
func tableView(e *deck.Engine, seat, observedValue int) TableView {
	view := TableView{
		Turn:     e.Turn(),
		Seat:     seat,
		Slots:    e.Slots(),
		Observed: -1,
	}
	if rec := e.TurnRecord(); rec.Observed {
		view.Observed = rec.ObservedIndex
		view.ObservedValue = observedValue
	}
	return view
}

// RenderTable draws the sequence: committed cards show their value, hidden
// cards an X, and the card observed this turn its value in brackets.
func RenderTable(view TableView) string {
	cells := make([]string, len(view.Slots))
	for i, s := range view.Slots {
		switch {
		case s.Committed:
			cells[i] = committedStyle.Render(strconv.Itoa(s.Value))
		case i == view.Observed:
			cells[i] = observedStyle.Render(fmt.Sprintf("[%d]", view.ObservedValue))
		default:
			cells[i] = hiddenStyle.Render("X")
		}
	}

	header := headerStyle.Render(fmt.Sprintf("turn %d, seat %d", view.Turn, view.Seat))
	row := lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	return tableStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, row))
}
