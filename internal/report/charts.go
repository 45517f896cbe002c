package report

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const noDataSuffix = " (no data)"

// panel is one set of axes. Empty panels keep their title and axes and say so.
type panel struct {
	*plot.Plot
	empty bool
}

func newPanel(title, xlabel, ylabel string) *panel {
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = vg.Points(6)
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	return &panel{Plot: p}
}

func (p *panel) markEmpty() *panel {
	p.empty = true
	p.Title.Text += noDataSuffix
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	return p
}

// addGrid draws grid lines perpendicular to the enabled axes.
func (p *panel) addGrid(vertical, horizontal bool) {
	g := plotter.NewGrid()
	g.Vertical.Color = colorGridLine
	g.Horizontal.Color = colorGridLine
	if !vertical {
		g.Vertical.Color = nil
	}
	if !horizontal {
		g.Horizontal.Color = nil
	}
	p.Add(g)
}

func (p *panel) rotateXTicks() {
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}

func edgeStyle(c color.Color) draw.LineStyle {
	return draw.LineStyle{Color: c, Width: vg.Points(0.8)}
}

// histogramPanel bins values into equal-width bins spanning their range.
func histogramPanel(title, xlabel string, values []float64, bins int, fill, edge color.Color) (*panel, error) {
	p := newPanel(title, xlabel, "Frequency")
	p.addGrid(true, true)
	if len(values) == 0 {
		return p.markEmpty(), nil
	}

	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return nil, err
	}
	h.FillColor = fill
	h.LineStyle = edgeStyle(edge)
	p.Add(h)
	return p, nil
}

// barPanel draws one bar per label. Horizontal bars grow along X with the
// labels on the Y axis.
func barPanel(title, xlabel, ylabel string, labels []string, values []float64, fill color.Color, horizontal bool, axis vg.Length) (*panel, error) {
	p := newPanel(title, xlabel, ylabel)
	if len(values) == 0 {
		p.addGrid(true, true)
		return p.markEmpty(), nil
	}

	bars, err := plotter.NewBarChart(plotter.Values(values), barWidth(len(values), axis))
	if err != nil {
		return nil, err
	}
	bars.Color = fill
	bars.LineStyle = edgeStyle(colorBlack)
	bars.Horizontal = horizontal

	if horizontal {
		p.addGrid(true, false)
		p.NominalY(labels...)
	} else {
		p.addGrid(true, true)
		p.NominalX(labels...)
	}
	p.Add(bars)
	return p, nil
}

// barWidth spreads n bars over most of an axis of the given length.
func barWidth(n int, axis vg.Length) vg.Length {
	if n < 1 {
		n = 1
	}
	w := axis * 0.6 / vg.Length(n)
	switch {
	case w < vg.Points(2):
		return vg.Points(2)
	case w > vg.Points(60):
		return vg.Points(60)
	}
	return w
}

// linePanel connects the points in X order, optionally marking each one.
func linePanel(title, xlabel, ylabel string, xys plotter.XYs, stroke color.Color, markers bool) (*panel, error) {
	p := newPanel(title, xlabel, ylabel)
	p.addGrid(true, true)
	if len(xys) == 0 {
		return p.markEmpty(), nil
	}

	if markers {
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, err
		}
		line.LineStyle = draw.LineStyle{Color: stroke, Width: vg.Points(1.5)}
		points.GlyphStyle = draw.GlyphStyle{Color: stroke, Radius: vg.Points(3), Shape: draw.CircleGlyph{}}
		p.Add(line, points)
		return p, nil
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	line.LineStyle = draw.LineStyle{Color: stroke, Width: vg.Points(1.2)}
	p.Add(line)
	return p, nil
}

// scatterPanel plots translucent points so dense regions read darker.
func scatterPanel(title, xlabel, ylabel string, xys plotter.XYs, fill color.Color) (*panel, error) {
	p := newPanel(title, xlabel, ylabel)
	p.addGrid(true, true)
	if len(xys) == 0 {
		return p.markEmpty(), nil
	}

	s, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle = draw.GlyphStyle{Color: fill, Radius: vg.Points(2.5), Shape: draw.CircleGlyph{}}
	p.Add(s)
	return p, nil
}

// boxenPanel and violinPanel show a single horizontal distribution, so the
// Y axis carries no information.
func boxenPanel(title, xlabel string, values []float64, fill color.Color) (*panel, error) {
	p := newPanel(title, xlabel, "")
	p.addGrid(true, true)
	p.HideY()
	if len(values) == 0 {
		return p.markEmpty(), nil
	}

	b, err := NewBoxen(values, fill)
	if err != nil {
		return nil, err
	}
	p.Add(b)
	return p, nil
}

func violinPanel(title, xlabel string, values []float64, fill color.Color) (*panel, error) {
	p := newPanel(title, xlabel, "")
	p.addGrid(true, true)
	p.HideY()
	if len(values) == 0 {
		return p.markEmpty(), nil
	}

	v, err := NewViolin(values, fill)
	if err != nil {
		return nil, err
	}
	p.Add(v)
	return p, nil
}
