package main

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/minitcraft/minit/internal/ops"
)

// writeListTable prints a list result as a table.
func writeListTable(w io.Writer, out *ops.ListOutput) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Siri", "Jenis", "Tarikh", "Tajuk", "Berbangkit", "Sumber", "Dikemas kini"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Tajuk", WidthMax: 40},
		{Name: "Berbangkit", Align: text.AlignRight},
	})

	for _, item := range out.Items {
		siri := item.Siri
		if item.DeletedAt != nil {
			siri += " (dipadam)"
		}
		t.AppendRow(table.Row{
			item.ID,
			siri,
			item.Jenis,
			item.Tarikh,
			item.Title,
			item.MattersArising,
			item.Source,
			time.Unix(item.UpdatedAt, 0).UTC().Format("2006-01-02 15:04"),
		})
	}

	p := out.Pagination
	footer := fmt.Sprintf("%d of %d", len(out.Items), p.Total)
	if p.HasMore {
		footer += fmt.Sprintf(" (next: --offset %d)", p.Offset+len(out.Items))
	}
	t.AppendFooter(table.Row{footer})
	t.Render()
}
