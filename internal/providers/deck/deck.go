package deck

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	reportdomain "github.com/healthdeck/healthdeck/internal/report/domain"
	"github.com/healthdeck/healthdeck/internal/threshold"
)

// PDFProvider renders the report one page per section: tables as laid-out
// rows, charts as data tables, the classification as a colored status chip.
type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) Render(ctx context.Context, doc *reportdomain.Document) (io.Reader, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil report document")
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)
	m.AddPages(
		titlePage(doc.Title),
		availabilityPage(doc.Availability),
		licensesPage(doc.Licenses),
		storagePage(doc.Storage),
		ticketsPage(doc.Tickets),
	)

	rendered, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(rendered.GetBytes()), nil
}

func titlePage(title reportdomain.TitleSection) core.Page {
	return page.New().Add(
		row.New(60).Add(col.New(12)),
		text.NewRow(20, title.CustomerName, props.Text{
			Size:  28,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
		text.NewRow(12, title.Month, props.Text{Size: 14, Align: align.Center}),
		text.NewRow(12, "CSM: "+title.CSMName, props.Text{Size: 12, Align: align.Center}),
	)
}

func availabilityPage(section reportdomain.AvailabilitySection) core.Page {
	rows := []core.Row{
		headerRow("Production Availability", section.Classification, section.CircleColor),
		row.New(12).Add(
			text.NewCol(6, "Target: "+section.TargetValue, props.Text{Size: 12}),
			text.NewCol(6, "Actual: "+section.ActualValue, props.Text{Size: 12, Style: fontstyle.Bold}),
		),
	}
	rows = append(rows, chartRows(section.Chart)...)
	rows = append(rows, noteRows(section.Notes)...)
	return page.New().Add(rows...)
}

func licensesPage(section reportdomain.LicensesSection) core.Page {
	rows := []core.Row{
		headerRow("User License Utilization", section.Classification, section.CircleColor),
	}
	rows = append(rows, tableRows(section.Table)...)
	rows = append(rows, chartRows(section.Chart)...)
	rows = append(rows, noteRows(section.Notes)...)
	return page.New().Add(rows...)
}

func storagePage(section reportdomain.StorageSection) core.Page {
	rows := []core.Row{
		headerRow("Storage Utilization", section.Classification, section.CircleColor),
	}
	rows = append(rows, tableRows(section.Table)...)
	rows = append(rows, chartRows(section.Chart)...)
	rows = append(rows, noteRows(section.Notes)...)
	return page.New().Add(rows...)
}

func ticketsPage(section reportdomain.TicketsSection) core.Page {
	rows := []core.Row{
		text.NewRow(14, "Support Cases", props.Text{Size: 16, Style: fontstyle.Bold}),
	}
	rows = append(rows, tableRows(section.Table)...)
	rows = append(rows, chartRows(section.Chart)...)
	rows = append(rows,
		text.NewRow(10, "Open cases: "+strconv.Itoa(section.OpenCases), props.Text{
			Size:  11,
			Style: fontstyle.Bold,
		}),
	)
	return page.New().Add(rows...)
}

func headerRow(name string, tier threshold.Classification, color threshold.RGB) core.Row {
	return row.New(14).Add(
		text.NewCol(9, name, props.Text{Size: 16, Style: fontstyle.Bold}),
		text.NewCol(3, string(tier), props.Text{
			Size:  11,
			Style: fontstyle.Bold,
			Align: align.Right,
			Color: &props.Color{Red: int(color[0]), Green: int(color[1]), Blue: int(color[2])},
		}),
	)
}

func tableRows(table reportdomain.Table) []core.Row {
	if len(table.Headers) == 0 {
		return nil
	}
	width := colWidth(len(table.Headers))

	headerCols := make([]core.Col, 0, len(table.Headers))
	for _, header := range table.Headers {
		headerCols = append(headerCols, text.NewCol(width, header, props.Text{
			Size:  9,
			Style: fontstyle.Bold,
			Align: align.Center,
		}))
	}
	rows := []core.Row{row.New(8).Add(headerCols...)}

	for _, data := range table.Rows {
		cols := make([]core.Col, 0, len(data))
		for _, cell := range data {
			cols = append(cols, text.NewCol(width, cell, props.Text{
				Size:  9,
				Align: align.Right,
			}))
		}
		rows = append(rows, row.New(7).Add(cols...))
	}
	return rows
}

// chartRows lays a chart out as its data table: one row per month, one
// column per series.
func chartRows(chart reportdomain.Chart) []core.Row {
	if len(chart.Months) == 0 || len(chart.Series) == 0 {
		return nil
	}
	width := colWidth(len(chart.Series) + 1)

	headerCols := []core.Col{
		text.NewCol(width, "Month", props.Text{Size: 8, Style: fontstyle.Bold}),
	}
	for _, series := range chart.Series {
		headerCols = append(headerCols, text.NewCol(width, series.Name, props.Text{
			Size:  8,
			Style: fontstyle.Bold,
			Align: align.Right,
		}))
	}
	rows := []core.Row{row.New(7).Add(headerCols...)}

	for i, label := range chart.Months {
		cols := []core.Col{
			text.NewCol(width, label, props.Text{Size: 8}),
		}
		for _, series := range chart.Series {
			value := ""
			if i < len(series.Values) {
				value = strconv.FormatFloat(series.Values[i], 'f', -1, 64)
			}
			cols = append(cols, text.NewCol(width, value, props.Text{Size: 8, Align: align.Right}))
		}
		rows = append(rows, row.New(6).Add(cols...))
	}
	return rows
}

func noteRows(notes []string) []core.Row {
	if len(notes) == 0 {
		return nil
	}
	rows := []core.Row{
		text.NewRow(8, "Notes", props.Text{Size: 10, Style: fontstyle.Bold}),
	}
	for _, line := range notes {
		rows = append(rows, text.NewRow(6, line, props.Text{Size: 9}))
	}
	return rows
}

func colWidth(columns int) int {
	width := 12 / columns
	if width == 0 {
		width = 1
	}
	return width
}
