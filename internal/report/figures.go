package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"retaileda/internal/config"
	"retaileda/internal/dataprocessing"
	apperrors "retaileda/internal/errors"
	"retaileda/pkg/contracts/domain"
)

// Chart names, used as file names under the charts directory.
const (
	ChartQuantityDistribution  = "quantity_distribution"
	ChartUnitPriceDistribution = "unit_price_distribution"
	ChartTopProducts           = "top_products"
	ChartSalesOverTime         = "sales_over_time"
	ChartTopProductsCountries  = "top_products_countries"
	ChartOutlierDistributions  = "outlier_distributions"
)

// ChartNames lists the charts Render produces, in order.
var ChartNames = []string{
	ChartQuantityDistribution,
	ChartUnitPriceDistribution,
	ChartTopProducts,
	ChartSalesOverTime,
	ChartTopProductsCountries,
	ChartOutlierDistributions,
}

// Chart is a rendered image file.
type Chart struct {
	Name        string   `json:"name"`
	Path        string   `json:"path"`
	EmptyPanels []string `json:"empty_panels,omitempty"`
}

// figure is a grid of panels saved as one image.
type figure struct {
	name          string
	width, height vg.Length
	rows, cols    int
	panels        []*panel // row-major
}

// Reporter renders the fixed chart set of the analysis.
type Reporter struct {
	paths    *config.Paths
	format   string
	analysis config.AnalysisConfig
	logger   *slog.Logger
}

// NewReporter creates a Reporter writing to paths.ChartsDir.
func NewReporter(paths *config.Paths, output config.OutputConfig, analysis config.AnalysisConfig, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	format := output.Format
	if format == "" {
		format = config.DefaultChartFormat
	}
	return &Reporter{
		paths:    paths,
		format:   format,
		analysis: analysis,
		logger:   logger.With(slog.String("component", "report")),
	}
}

// Render draws every chart. The distributions come from the cleaned,
// derived table and the rankings and time series from s, so charts and
// console tables share one set of aggregates. The charts directory must
// exist. Rendering stops at the first failure.
func (r *Reporter) Render(ctx context.Context, t *dataprocessing.Table, s *Summary) ([]Chart, error) {
	if t == nil || s == nil {
		return nil, apperrors.NewRenderError("nothing to render", nil)
	}
	builders := []func(*dataprocessing.Table, *Summary) (*figure, error){
		r.quantityDistribution,
		r.unitPriceDistribution,
		r.topProducts,
		r.salesOverTime,
		r.topProductsCountries,
		r.outlierDistributions,
	}

	charts := make([]Chart, 0, len(builders))
	for _, build := range builders {
		if err := ctx.Err(); err != nil {
			return charts, err
		}

		fig, err := build(t, s)
		if err != nil {
			return charts, err
		}
		chart, err := r.save(fig)
		if err != nil {
			return charts, err
		}

		for _, title := range chart.EmptyPanels {
			r.logger.WarnContext(ctx, "Chart panel has no data",
				slog.String("chart", chart.Name),
				slog.String("panel", title))
		}
		r.logger.InfoContext(ctx, "Chart rendered",
			slog.String("chart", chart.Name),
			slog.String("path", chart.Path))
		charts = append(charts, chart)
	}
	return charts, nil
}

// save lays the panels out on one canvas and writes it in the configured format.
func (r *Reporter) save(fig *figure) (Chart, error) {
	chart := Chart{Name: fig.name, Path: r.paths.ChartPath(fig.name)}
	fail := func(msg string, err error) (Chart, error) {
		return chart, apperrors.NewRenderError(msg, err).
			WithContext("chart", fig.name).
			WithContext("path", chart.Path)
	}

	canvas, err := draw.NewFormattedCanvas(fig.width, fig.height, r.format)
	if err != nil {
		return fail("unsupported image format", err)
	}

	grid := make([][]*plot.Plot, fig.rows)
	for row := range grid {
		grid[row] = make([]*plot.Plot, fig.cols)
		for col := range grid[row] {
			p := fig.panels[row*fig.cols+col]
			grid[row][col] = p.Plot
			if p.empty {
				chart.EmptyPanels = append(chart.EmptyPanels, p.Title.Text)
			}
		}
	}

	tiles := draw.Tiles{
		Rows:      fig.rows,
		Cols:      fig.cols,
		PadX:      vg.Points(28),
		PadY:      vg.Points(28),
		PadTop:    vg.Points(8),
		PadBottom: vg.Points(8),
		PadLeft:   vg.Points(8),
		PadRight:  vg.Points(12),
	}
	canvases := plot.Align(grid, tiles, draw.New(canvas))
	for row := range grid {
		for col := range grid[row] {
			grid[row][col].Draw(canvases[row][col])
		}
	}

	file, err := os.Create(chart.Path)
	if err != nil {
		return fail("failed to create chart file", err)
	}
	if _, err := canvas.WriteTo(file); err != nil {
		file.Close()
		return fail("failed to encode chart", err)
	}
	if err := file.Close(); err != nil {
		return fail("failed to close chart file", err)
	}
	return chart, nil
}

func single(name string, width, height float64, p *panel) *figure {
	return &figure{name: name, width: vg.Length(width) * vg.Inch, height: vg.Length(height) * vg.Inch, rows: 1, cols: 1, panels: []*panel{p}}
}

func panelError(chart string, err error) error {
	return apperrors.NewRenderError("failed to build chart", err).WithContext("chart", chart)
}

func (r *Reporter) quantityDistribution(t *dataprocessing.Table, _ *Summary) (*figure, error) {
	p, err := histogramPanel("Distribution of Quantity", "Quantity", t.Quantities(), r.analysis.HistogramBins, colorOrange, colorBlack)
	if err != nil {
		return nil, panelError(ChartQuantityDistribution, err)
	}
	return single(ChartQuantityDistribution, 10, 5, p), nil
}

func (r *Reporter) unitPriceDistribution(t *dataprocessing.Table, _ *Summary) (*figure, error) {
	p, err := histogramPanel("Distribution of Unit Price", "Unit Price", t.UnitPrices(), r.analysis.HistogramBins, colorBlack, colorWhite)
	if err != nil {
		return nil, panelError(ChartUnitPriceDistribution, err)
	}
	return single(ChartUnitPriceDistribution, 10, 5, p), nil
}

func (r *Reporter) topProducts(_ *dataprocessing.Table, s *Summary) (*figure, error) {
	labels, values := series(s.TopProducts, func(k string) string { return k })

	title := fmt.Sprintf("Top %d Selling Products", r.analysis.TopProducts)
	p, err := barPanel(title, valueLabel(s), "Product", labels, values, colorGreen, true, 6*vg.Inch)
	if err != nil {
		return nil, panelError(ChartTopProducts, err)
	}
	return single(ChartTopProducts, 10, 6, p), nil
}

func (r *Reporter) salesOverTime(_ *dataprocessing.Table, s *Summary) (*figure, error) {
	fail := func(err error) (*figure, error) { return nil, panelError(ChartSalesOverTime, err) }
	ylabel := valueLabel(s)

	monthLabels, monthValues := series(s.Monthly, strconv.Itoa)
	monthly, err := barPanel("Total Sales by Month", "Month", ylabel, monthLabels, monthValues, colorSkyBlue, false, 7*vg.Inch)
	if err != nil {
		return fail(err)
	}

	daily, err := linePanel("Total Sales by Date", "Date", ylabel, dateXYs(s.Daily), colorDarkOrange, false)
	if err != nil {
		return fail(err)
	}
	daily.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	daily.rotateXTicks()

	yearLabels, yearValues := series(s.Yearly, strconv.Itoa)
	yearly, err := barPanel("Total Sales by Year", "Year", ylabel, yearLabels, yearValues, colorLightGreen, false, 7*vg.Inch)
	if err != nil {
		return fail(err)
	}

	hourly, err := linePanel("Total Sales by Hour of the Day", "Hour (24h)", ylabel, intXYs(s.Hourly), colorMediumPurple, true)
	if err != nil {
		return fail(err)
	}

	return &figure{
		name: ChartSalesOverTime, width: 16 * vg.Inch, height: 12 * vg.Inch, rows: 2, cols: 2,
		panels: []*panel{monthly, daily, yearly, hourly},
	}, nil
}

func (r *Reporter) topProductsCountries(_ *dataprocessing.Table, s *Summary) (*figure, error) {
	fail := func(err error) (*figure, error) { return nil, panelError(ChartTopProductsCountries, err) }
	n := r.analysis.TopN
	identity := func(k string) string { return k }
	ylabel := valueLabel(s)

	productLabels, productValues := series(s.TopNProducts, identity)
	products, err := barPanel(fmt.Sprintf("Top %d Selling Products by Quantity", n), "Product Description", ylabel,
		productLabels, productValues, colorTeal, false, 7*vg.Inch)
	if err != nil {
		return fail(err)
	}
	products.rotateXTicks()

	countryLabels, countryValues := series(s.TopCountries, identity)
	countries, err := barPanel(fmt.Sprintf("Top %d Countries by Quantity Sold", n), "Country", ylabel,
		countryLabels, countryValues, colorDarkOrange, false, 7*vg.Inch)
	if err != nil {
		return fail(err)
	}
	countries.rotateXTicks()

	return &figure{
		name: ChartTopProductsCountries, width: 16 * vg.Inch, height: 6 * vg.Inch, rows: 1, cols: 2,
		panels: []*panel{products, countries},
	}, nil
}

func (r *Reporter) outlierDistributions(t *dataprocessing.Table, _ *Summary) (*figure, error) {
	fail := func(err error) (*figure, error) { return nil, panelError(ChartOutlierDistributions, err) }
	filtered := OutlierFilter(t, r.analysis.OutlierMaxQuantity, r.analysis.OutlierMaxUnitPrice)
	quantities, prices := filtered.Quantities(), filtered.UnitPrices()

	boxenQty, err := boxenPanel("Boxen Plot - Quantity Distribution", "Quantity", quantities, colorSkyBlue)
	if err != nil {
		return fail(err)
	}
	boxenPrice, err := boxenPanel("Boxen Plot - Unit Price Distribution", "Unit Price", prices, colorOrange)
	if err != nil {
		return fail(err)
	}

	xys := make(plotter.XYs, len(quantities))
	for i := range quantities {
		xys[i].X, xys[i].Y = prices[i], quantities[i]
	}
	scatter, err := scatterPanel("Scatter Plot - Quantity vs Unit Price", "Unit Price", "Quantity", xys, colorScatter)
	if err != nil {
		return fail(err)
	}

	violin, err := violinPanel("Violin Plot - Quantity Distribution", "Quantity", quantities, colorLightGreen)
	if err != nil {
		return fail(err)
	}

	return &figure{
		name: ChartOutlierDistributions, width: 16 * vg.Inch, height: 12 * vg.Inch, rows: 2, cols: 2,
		panels: []*panel{boxenQty, boxenPrice, scatter, violin},
	}, nil
}

// OutlierFilter keeps the rows with Quantity below maxQuantity and UnitPrice
// below maxUnitPrice. It only declutters the distribution charts.
func OutlierFilter(t *dataprocessing.Table, maxQuantity int64, maxUnitPrice float64) *dataprocessing.Table {
	if t == nil {
		return dataprocessing.NewTable(nil)
	}
	limit := decimal.NewFromFloat(maxUnitPrice)
	return t.Filter(func(r domain.Record) bool {
		return r.Quantity < maxQuantity && r.UnitPrice.LessThan(limit)
	})
}

// valueLabel is the axis label of the summed column.
func valueLabel(s *Summary) string {
	if s.ValueColumn == "" || s.ValueColumn == domain.ColumnQuantity {
		return "Quantity Sold"
	}
	return s.ValueColumn
}

// series splits groups into tick labels and float totals.
func series[K comparable](groups []dataprocessing.Group[K], label func(K) string) ([]string, []float64) {
	labels := make([]string, len(groups))
	values := make([]float64, len(groups))
	for i, g := range groups {
		labels[i] = label(g.Key)
		values[i] = g.Total.InexactFloat64()
	}
	return labels, values
}

func intXYs(groups []dataprocessing.Group[int]) plotter.XYs {
	xys := make(plotter.XYs, len(groups))
	for i, g := range groups {
		xys[i].X = float64(g.Key)
		xys[i].Y = g.Total.InexactFloat64()
	}
	return xys
}

// dateXYs places each day at midnight UTC, in Unix seconds for plot.TimeTicks.
func dateXYs(groups []dataprocessing.Group[civil.Date]) plotter.XYs {
	xys := make(plotter.XYs, len(groups))
	for i, g := range groups {
		xys[i].X = float64(g.Key.In(time.UTC).Unix())
		xys[i].Y = g.Total.InexactFloat64()
	}
	return xys
}
