package ui

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/arthur-debert/dotlink/pkg/types"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// statusDocument is the JSON shape of `dotlink status --format json`
type statusDocument struct {
	Links   []types.LinkStatus  `json:"links"`
	Summary map[types.State]int `json:"summary"`
}

// RenderStatus writes the state of every planned link in the given format
func RenderStatus(out io.Writer, statuses []types.LinkStatus, format Format) error {
	switch Resolve(format, out) {
	case FormatJSON:
		return renderStatusJSON(out, statuses)
	case FormatTerminal:
		return renderStatusTable(out, statuses)
	default:
		return renderStatusText(out, statuses)
	}
}

func summarize(statuses []types.LinkStatus) map[types.State]int {
	summary := map[types.State]int{
		types.StateLinked:      0,
		types.StateMissing:     0,
		types.StateWrongTarget: 0,
		types.StateConflict:    0,
	}
	for _, s := range statuses {
		summary[s.State]++
	}
	return summary
}

func renderStatusJSON(out io.Writer, statuses []types.LinkStatus) error {
	if statuses == nil {
		statuses = []types.LinkStatus{}
	}
	return WriteJSON(out, statusDocument{Links: statuses, Summary: summarize(statuses)})
}

// WriteJSON writes v as indented JSON
func WriteJSON(out io.Writer, v interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func renderStatusText(out io.Writer, statuses []types.LinkStatus) error {
	for _, s := range statuses {
		if _, err := fmt.Fprintf(out, "%-12s %s -> %s%s\n", s.State, s.Link.Target, s.Link.Source, current(s)); err != nil {
			return err
		}
	}
	return writeSummary(out, statuses)
}

func renderStatusTable(out io.Writer, statuses []types.LinkStatus) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("STATE", "TARGET", "SOURCE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return GetStyle("TableHeader")
			}
			return lipgloss.NewStyle().PaddingRight(1)
		})

	for _, s := range statuses {
		t.Row(GetStyle(stateStyle(s.State)).Render(string(s.State)), s.Link.Target, s.Link.Source+current(s))
	}

	if _, err := fmt.Fprintln(out, t.Render()); err != nil {
		return err
	}
	return writeSummary(out, statuses)
}

func writeSummary(out io.Writer, statuses []types.LinkStatus) error {
	summary := summarize(statuses)
	_, err := fmt.Fprintf(out, "%d linked, %d missing, %d wrong target, %d conflicts\n",
		summary[types.StateLinked], summary[types.StateMissing],
		summary[types.StateWrongTarget], summary[types.StateConflict])
	return err
}

func current(s types.LinkStatus) string {
	if s.State == types.StateWrongTarget && s.Current != "" {
		return fmt.Sprintf(" (now -> %s)", s.Current)
	}
	return ""
}

func stateStyle(state types.State) string {
	switch state {
	case types.StateLinked:
		return "Success"
	case types.StateConflict:
		return "Error"
	default:
		return "Warning"
	}
}
