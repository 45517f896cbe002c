package report

import (
	"image/color"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"retaileda/internal/dataprocessing"
)

// letterValue is one nested box of a boxen plot.
type letterValue struct {
	Lower, Upper float64
}

// Boxen is a letter-value plot of one sample drawn along the X axis.
// Box i spans the quantiles 2^-(i+2) and 1-2^-(i+2); the widest box is the
// interquartile range and each further level halves the tail mass.
type Boxen struct {
	Levels   []letterValue
	Median   float64
	Outliers []float64

	// Location is the Y centre and Height the data height of the widest box.
	Location float64
	Height   float64

	Color       color.Color
	LineStyle   draw.LineStyle
	MedianStyle draw.LineStyle
	GlyphStyle  draw.GlyphStyle

	min, max float64
}

// NewBoxen computes the letter values of values. The number of levels
// follows Tukey's rule, floor(log2 n) - 3, and is at least one.
func NewBoxen(values []float64, fill color.Color) (*Boxen, error) {
	if err := plotter.CheckFloats(values...); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, plotter.ErrNoData
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	n := len(sorted)

	depth := int(math.Floor(math.Log2(float64(n)))) - 3
	if depth < 1 {
		depth = 1
	}

	b := &Boxen{
		Median:      dataprocessing.LinearQuantile(sorted, 0.5),
		Height:      0.8,
		Color:       fill,
		LineStyle:   edgeStyle(colorBlack),
		MedianStyle: draw.LineStyle{Color: colorBlack, Width: vg.Points(1.5)},
		GlyphStyle:  draw.GlyphStyle{Color: colorBlack, Radius: vg.Points(2), Shape: draw.CrossGlyph{}},
		min:         sorted[0],
		max:         sorted[n-1],
	}
	for i := 0; i < depth; i++ {
		tail := math.Pow(0.5, float64(i+2))
		b.Levels = append(b.Levels, letterValue{
			Lower: dataprocessing.LinearQuantile(sorted, tail),
			Upper: dataprocessing.LinearQuantile(sorted, 1-tail),
		})
	}

	outer := b.Levels[len(b.Levels)-1]
	for _, v := range sorted {
		if v < outer.Lower || v > outer.Upper {
			b.Outliers = append(b.Outliers, v)
		}
	}
	return b, nil
}

// levelHeight shrinks linearly from Height at the interquartile box.
func (b *Boxen) levelHeight(i int) float64 {
	k := float64(len(b.Levels))
	return b.Height * (k - float64(i)) / k
}

// Plot implements plot.Plotter.
func (b *Boxen) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)

	// Outermost first so inner boxes paint over them.
	k := len(b.Levels)
	for i := k - 1; i >= 0; i-- {
		lv := b.Levels[i]
		half := b.levelHeight(i) / 2
		x0, x1 := trX(lv.Lower), trX(lv.Upper)
		y0, y1 := trY(b.Location-half), trY(b.Location+half)
		box := []vg.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}

		c.FillPolygon(lighten(b.Color, 0.75*float64(i)/float64(k)), c.ClipPolygonXY(box))
		c.StrokeLines(b.LineStyle, c.ClipLinesXY(append(box, box[0]))...)
	}

	half := b.Height / 2
	m := trX(b.Median)
	c.StrokeLine2(b.MedianStyle, m, trY(b.Location-half), m, trY(b.Location+half))

	y := trY(b.Location)
	for _, v := range b.Outliers {
		pt := vg.Point{X: trX(v), Y: y}
		if c.Contains(pt) {
			c.DrawGlyph(b.GlyphStyle, pt)
		}
	}
}

// DataRange implements plot.DataRanger.
func (b *Boxen) DataRange() (xmin, xmax, ymin, ymax float64) {
	return b.min, b.max, b.Location - 0.5, b.Location + 0.5
}

// Violin is a kernel density estimate of one sample mirrored around
// Location, with a box marking the quartiles inside it.
type Violin struct {
	Grid    []float64
	Density []float64

	Q1, Median, Q3 float64
	// LowWhisker and HighWhisker are the most extreme values within 1.5 IQR.
	LowWhisker, HighWhisker float64

	Bandwidth float64
	Location  float64
	Height    float64

	Color     color.Color
	LineStyle draw.LineStyle
}

const (
	violinGridPoints = 200
	violinCut        = 2 // grid extends this many bandwidths beyond the data
)

// NewViolin estimates the density of values with a Gaussian kernel whose
// bandwidth follows Scott's rule.
func NewViolin(values []float64, fill color.Color) (*Violin, error) {
	if err := plotter.CheckFloats(values...); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, plotter.ErrNoData
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	n := len(sorted)

	v := &Violin{
		Q1:        dataprocessing.LinearQuantile(sorted, 0.25),
		Median:    dataprocessing.LinearQuantile(sorted, 0.5),
		Q3:        dataprocessing.LinearQuantile(sorted, 0.75),
		Bandwidth: scottBandwidth(sorted),
		Height:    0.8,
		Color:     fill,
		LineStyle: edgeStyle(colorBlack),
	}

	iqr := v.Q3 - v.Q1
	v.LowWhisker, v.HighWhisker = sorted[0], sorted[n-1]
	for _, x := range sorted {
		if x >= v.Q1-1.5*iqr {
			v.LowWhisker = x
			break
		}
	}
	for i := n - 1; i >= 0; i-- {
		if sorted[i] <= v.Q3+1.5*iqr {
			v.HighWhisker = sorted[i]
			break
		}
	}

	lo := sorted[0] - violinCut*v.Bandwidth
	hi := sorted[n-1] + violinCut*v.Bandwidth
	v.Grid = make([]float64, violinGridPoints)
	floats.Span(v.Grid, lo, hi)

	v.Density = make([]float64, violinGridPoints)
	kernel := distuv.Normal{Sigma: v.Bandwidth}
	for _, x := range sorted {
		kernel.Mu = x
		for i, g := range v.Grid {
			// Contributions beyond 6 bandwidths are below float precision.
			if math.Abs(g-x) > 6*v.Bandwidth {
				continue
			}
			v.Density[i] += kernel.Prob(g)
		}
	}
	floats.Scale(1/float64(n), v.Density)
	return v, nil
}

// scottBandwidth is sigma * n^(-1/5). Degenerate samples get a unit bandwidth.
func scottBandwidth(sorted []float64) float64 {
	if len(sorted) < 2 {
		return 1
	}
	sd := stat.StdDev(sorted, nil)
	if sd == 0 || math.IsNaN(sd) {
		return 1
	}
	return sd * math.Pow(float64(len(sorted)), -0.2)
}

// Plot implements plot.Plotter.
func (v *Violin) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)

	peak := floats.Max(v.Density)
	if peak <= 0 {
		peak = 1
	}
	scale := v.Height / 2 / peak

	outline := make([]vg.Point, 0, 2*len(v.Grid)+1)
	for i, g := range v.Grid {
		outline = append(outline, vg.Point{X: trX(g), Y: trY(v.Location + v.Density[i]*scale)})
	}
	for i := len(v.Grid) - 1; i >= 0; i-- {
		outline = append(outline, vg.Point{X: trX(v.Grid[i]), Y: trY(v.Location - v.Density[i]*scale)})
	}
	c.FillPolygon(v.Color, c.ClipPolygonXY(outline))
	c.StrokeLines(v.LineStyle, c.ClipLinesXY(append(outline, outline[0]))...)

	y := trY(v.Location)
	inner := color.RGBA{R: 64, G: 64, B: 64, A: 255}
	c.StrokeLine2(draw.LineStyle{Color: inner, Width: vg.Points(1.2)}, trX(v.LowWhisker), y, trX(v.HighWhisker), y)
	c.StrokeLine2(draw.LineStyle{Color: inner, Width: vg.Points(6)}, trX(v.Q1), y, trX(v.Q3), y)
	c.DrawGlyph(draw.GlyphStyle{Color: colorWhite, Radius: vg.Points(2.5), Shape: draw.CircleGlyph{}}, vg.Point{X: trX(v.Median), Y: y})
}

// DataRange implements plot.DataRanger.
func (v *Violin) DataRange() (xmin, xmax, ymin, ymax float64) {
	return v.Grid[0], v.Grid[len(v.Grid)-1], v.Location - 0.5, v.Location + 0.5
}
