package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"
)

// RenderHTML writes an interactive line chart of the series to w.
func RenderHTML(w io.Writer, title, subtitle string, series ...Series) error {
	if err := validateAll(series); err != nil {
		return err
	}

	lo, hi := 1.0, 1.0
	tmin, tmax := series[0].Times[0], series[0].Times[0]
	for _, s := range series {
		lo = min(lo, floats.Min(s.Flux))
		hi = max(hi, floats.Max(s.Flux))
		tmin = min(tmin, floats.Min(s.Times))
		tmax = max(tmax, floats.Max(s.Times))
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1e-3
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(len(series) > 1)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Min: tmin, Max: tmax, Name: "Time (days)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: lo - pad, Max: hi + pad, Name: "Relative flux", NameLocation: "middle", NameGap: 50}),
	)

	for _, s := range series {
		data := make([]opts.LineData, len(s.Times))
		for i := range s.Times {
			data[i] = opts.LineData{Value: []interface{}{s.Times[i], s.Flux[i]}}
		}
		line.AddSeries(s.Name, data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	}

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteHTML renders the chart to a file at path.
func WriteHTML(path, title, subtitle string, series ...Series) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := RenderHTML(f, title, subtitle, series...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
