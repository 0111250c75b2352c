// Package diagnostics renders optional visualizations of a construction
// run, for users who want to see how the Bounding variant's search effort
// evolves as the tree is built.
package diagnostics

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	plotLineColor  = color.RGBA{R: 37, G: 150, B: 190, A: 255}
	plotMarkerShap = draw.SquareGlyph{}
)

const (
	plotH = 4 * vg.Inch
	plotW = 6 * vg.Inch

	maxTicks = 10
)

// WriteEntriesPlot renders the Bounding variant's per-iteration
// entries-visited series (joiner.Stats.EntriesPerIteration) to prefix+".png":
// one point per join, showing how many sorted-row entries the pruning
// search had to look at before finding that join's minimum Q-value.
func WriteEntriesPlot(entriesPerIteration []int, prefix string) error {
	p := plot.New()
	p.X.Label.Text = "Join Number"
	p.Y.Label.Text = "Sorted Entries Visited"
	p.X.Min = 0
	p.X.Max = float64(len(entriesPerIteration))
	p.X.Tick.Marker = plot.TickerFunc(func(_, max float64) []plot.Tick {
		step := 1
		if int(max) > maxTicks {
			step = (int(max) + maxTicks - 1) / maxTicks
		}
		ticks := make([]plot.Tick, 0, int(max)/step+2)
		for i := 0; i <= int(max); i++ {
			if i%step == 0 {
				ticks = append(ticks, plot.Tick{Value: float64(i), Label: fmt.Sprintf("%d", i)})
			} else {
				ticks = append(ticks, plot.Tick{Value: float64(i)})
			}
		}
		return ticks
	})
	pts := make(plotter.XYs, len(entriesPerIteration))
	maxY := 0
	for i, v := range entriesPerIteration {
		pts[i].X = float64(i + 1)
		pts[i].Y = float64(v)
		if v > maxY {
			maxY = v
		}
	}
	p.Y.Min = 0
	p.Y.Max = float64(maxY)
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	line.Color = plotLineColor
	line.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
	points.Color = plotLineColor
	points.Shape = plotMarkerShap
	points.Radius = vg.Points(4)
	p.Add(line, points)
	return p.Save(plotW, plotH, fmt.Sprintf("%s.png", prefix))
}
