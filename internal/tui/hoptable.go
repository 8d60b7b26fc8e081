package tui

import (
	"fmt"
	"strconv"

	table "github.com/charmbracelet/bubbles/table"
	"github.com/dustin/go-humanize"

	"goglobe/internal/feed"
)

// refreshHopTable rebuilds the table rows from the current hops.
func (m *Model) refreshHopTable() {
	if len(m.hops) == 0 {
		m.showHops = false
		m.status = "no hops to show"
		return
	}
	cols := []table.Column{
		{Title: "#", Width: 3},
		{Title: "IP", Width: 16},
		{Title: "Host", Width: 24},
		{Title: "RTT ms", Width: 8},
		{Title: "Location", Width: 20},
		{Title: "Coordinates", Width: 20},
		{Title: "Leg", Width: 10},
	}
	legs := feed.Legs(m.hops)
	rows := make([]table.Row, 0, len(m.hops))
	for i, h := range m.hops {
		leg := ""
		if legs[i].OK {
			leg = formatKm(legs[i].Km)
		}
		rows = append(rows, table.Row{
			strconv.Itoa(h.Number),
			truncate(orNA(h.IP), cols[1].Width),
			truncate(orNA(h.Host), cols[2].Width),
			orNA(h.RTT),
			truncate(orNA(h.Location), cols[4].Width),
			truncate(orNA(h.Position()), cols[5].Width),
			leg,
		})
	}
	// clear rows first so the table never sees rows wider than its columns
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(cols)
	m.tbl.SetRows(rows)
}

func formatKm(km float64) string {
	if km < 10 {
		return fmt.Sprintf("%.1f km", km)
	}
	return humanize.Comma(int64(km+0.5)) + " km"
}
