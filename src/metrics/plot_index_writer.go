package metrics

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"socialdex/src/datamodels"
	"socialdex/src/utils/errors"
)

const PlotFileName = "indices.png"

// PlotIndexWriter draws every index series as one line chart PNG.
type PlotIndexWriter struct {
	baseDir  string
	title    string
	widthIn  int
	heightIn int
}

func NewPlotIndexWriter(baseDir string, title string) *PlotIndexWriter {
	return &PlotIndexWriter{
		baseDir:  baseDir,
		title:    title,
		widthIn:  12,
		heightIn: 6,
	}
}

func (pw *PlotIndexWriter) WithSize(widthIn int, heightIn int) *PlotIndexWriter {
	if widthIn > 0 {
		pw.widthIn = widthIn
	}
	if heightIn > 0 {
		pw.heightIn = heightIn
	}
	return pw
}

func (pw *PlotIndexWriter) Build() (*PlotIndexWriter, error) {
	if pw.baseDir == "" {
		return nil, errors.New("plot output directory is not set")
	}
	if err := os.MkdirAll(pw.baseDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory %s", pw.baseDir)
	}
	return pw, nil
}

func (pw *PlotIndexWriter) Filename() string {
	return filepath.Join(pw.baseDir, PlotFileName)
}

func (pw *PlotIndexWriter) Write(ctx context.Context, result *datamodels.IndexResult) error {
	if len(result.QueryTimes) == 0 {
		slog.Warn("No query times to plot, skipping chart", "run_id", result.RunId)
		return nil
	}
	p, err := plotIndices(pw.title, result)
	if err != nil {
		return err
	}
	filename := pw.Filename()
	if err := p.Save(vg.Length(pw.widthIn)*vg.Inch, vg.Length(pw.heightIn)*vg.Inch, filename); err != nil {
		return errors.Wrapf(err, "failed to save plot to %s", filename)
	}
	slog.Info("Plotted indices", "filename", filename, "indices", len(result.Indices))
	return nil
}

func (pw *PlotIndexWriter) Close() error {
	return nil
}

func plotIndices(title string, result *datamodels.IndexResult) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Followers (10k)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02\n15:04"}
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = true

	for i, name := range result.Names() {
		series := result.Indices[name]
		if len(series.Points) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(series.Points))
		for j, point := range series.Points {
			pts[j].X = float64(point.Time.Unix())
			pts[j].Y = point.Value
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create line for %s", name)
		}
		line.Color = plotutil.Color(i % len(plotutil.DefaultColors))
		line.Dashes = plotutil.Dashes(i / len(plotutil.DefaultColors))
		p.Add(line)
		p.Legend.Add(name, line)
	}
	return p, nil
}
