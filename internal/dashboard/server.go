package dashboard

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/qepting91/corpus-pipeline/internal/domain"
)

// Render writes the ingestion dashboard as HTML: a pie of stored rows per
// task and a bar chart of rows against reported errors.
func Render(w io.Writer, stats []domain.TaskStat) error {
	// 1. Task Share
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Rows per Task"}),
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
	)

	var pieItems []opts.PieData
	for _, s := range stats {
		if s.Rows > 0 {
			pieItems = append(pieItems, opts.PieData{Name: s.TaskID, Value: s.Rows})
		}
	}
	pie.AddSeries("Rows", pieItems)

	// 2. Task Health
	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Rows vs Errors"}))

	var barX []string
	var rows, errs []opts.BarData
	for _, s := range stats {
		barX = append(barX, s.TaskID)
		rows = append(rows, opts.BarData{Value: s.Rows})
		errs = append(errs, opts.BarData{Value: s.Errors})
	}
	bar.SetXAxis(barX).
		AddSeries("Rows", rows).
		AddSeries("Errors", errs)

	if err := pie.Render(w); err != nil {
		return err
	}
	return bar.Render(w)
}
