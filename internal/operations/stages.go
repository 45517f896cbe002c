package operations

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"retaileda/internal/config"
	"retaileda/internal/dataprocessing"
	"retaileda/internal/exporter"
	"retaileda/internal/infrastructure"
	"retaileda/internal/report"
	"retaileda/internal/validation"
)

// StageOptions holds the collaborators shared by the analysis steps
type StageOptions struct {
	Config   *config.Config
	Paths    *config.Paths
	Reporter *report.Reporter
	Console  *report.Console
	Exporter *exporter.TableExporter // nil skips the CSV export
	Metrics  *infrastructure.PipelineMetrics
	Logger   *slog.Logger
}

func (o *StageOptions) logger() *slog.Logger {
	if o == nil || o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o *StageOptions) validator() *validation.FileValidator {
	return validation.NewFileValidator(o.logger())
}

// LoadStep reads the input workbook or CSV file
type LoadStep struct {
	BaseStage
	options *StageOptions
}

// NewLoadStep creates a new load step
func NewLoadStep(options *StageOptions) *LoadStep {
	return &LoadStep{
		BaseStage: NewBaseStage(StepIDLoad, StepNameLoad, nil),
		options:   options,
	}
}

// Validate checks the input path is known
func (s *LoadStep) Validate(state *OperationState) error {
	if s.options == nil || s.options.Paths == nil || s.options.Config == nil {
		return fmt.Errorf("load step is not configured")
	}
	if s.options.Paths.InputFile == "" {
		return fmt.Errorf("no input file configured")
	}
	return s.options.validator().ValidateInputFile(s.options.Paths.InputFile)
}

// Execute loads the input into state.Raw
func (s *LoadStep) Execute(ctx context.Context, state *OperationState) error {
	table, err := dataprocessing.LoadFile(s.options.Paths.InputFile, dataprocessing.LoadOptions{
		Sheet:  s.options.Config.Input.Sheet,
		Logger: s.options.logger(),
	})
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	state.Raw = table
	if s.options.Metrics != nil {
		s.options.Metrics.RowsLoaded.Add(ctx, int64(table.Len()),
			metric.WithAttributes(attribute.String("sheet", table.Sheet)))
	}
	state.GetStage(s.ID()).SetMetadata(MetadataKeyRows, table.Len())
	return nil
}

// CleanStep drops rows missing a description or customer
type CleanStep struct {
	BaseStage
	options *StageOptions
}

// NewCleanStep creates a new clean step
func NewCleanStep(options *StageOptions) *CleanStep {
	return &CleanStep{
		BaseStage: NewBaseStage(StepIDClean, StepNameClean, []string{StepIDLoad}),
		options:   options,
	}
}

// Validate requires a loaded table
func (s *CleanStep) Validate(state *OperationState) error {
	if state.Raw == nil {
		return fmt.Errorf("no table loaded")
	}
	return nil
}

// Execute stores the cleaned table and its statistics
func (s *CleanStep) Execute(ctx context.Context, state *OperationState) error {
	cleaned, stats := dataprocessing.DropMissingWithStats(state.Raw)
	state.Table = cleaned
	state.Cleaning = stats

	if s.options != nil && s.options.Metrics != nil {
		s.options.Metrics.RowsDropped.Add(ctx, int64(stats.Dropped))
	}
	s.options.logger().InfoContext(ctx, "Rows with missing values dropped",
		slog.Int("before", stats.Before),
		slog.Int("after", stats.After),
		slog.Int("dropped", stats.Dropped))

	stepState := state.GetStage(s.ID())
	stepState.SetMetadata(MetadataKeyRows, stats.After)
	stepState.SetMetadata(MetadataKeyDropped, stats.Dropped)
	return nil
}

// DeriveStep adds the calendar fields to the cleaned table
type DeriveStep struct {
	BaseStage
}

// NewDeriveStep creates a new derive step
func NewDeriveStep() *DeriveStep {
	return &DeriveStep{BaseStage: NewBaseStage(StepIDDerive, StepNameDerive, []string{StepIDClean})}
}

// Validate requires a cleaned table
func (s *DeriveStep) Validate(state *OperationState) error {
	if state.Table == nil {
		return fmt.Errorf("no cleaned table")
	}
	return nil
}

// Execute derives Month, Date, Year and Hour in place
func (s *DeriveStep) Execute(ctx context.Context, state *OperationState) error {
	state.Table = dataprocessing.Derive(state.Table)
	state.GetStage(s.ID()).SetMetadata(MetadataKeyRows, state.Table.Len())
	return nil
}

// AggregateStep computes the console tables
type AggregateStep struct {
	BaseStage
	options *StageOptions
}

// NewAggregateStep creates a new aggregate step
func NewAggregateStep(options *StageOptions) *AggregateStep {
	return &AggregateStep{
		BaseStage: NewBaseStage(StepIDAggregate, StepNameAggregate, []string{StepIDDerive}),
		options:   options,
	}
}

// Validate requires a derived table
func (s *AggregateStep) Validate(state *OperationState) error {
	if s.options == nil || s.options.Config == nil {
		return fmt.Errorf("aggregate step is not configured")
	}
	if state.Table == nil || !state.Table.Derived() {
		return fmt.Errorf("table has no calendar fields")
	}
	return nil
}

// Execute stores the summary in state.Summary
func (s *AggregateStep) Execute(ctx context.Context, state *OperationState) error {
	summary, err := report.Summarize(state.Raw, state.Table, state.Cleaning, s.options.Config.Analysis)
	if err != nil {
		return err
	}
	state.Summary = summary
	return nil
}

// ReportStep prints the console report and renders the charts
type ReportStep struct {
	BaseStage
	options *StageOptions
}

// NewReportStep creates a new report step
func NewReportStep(options *StageOptions) *ReportStep {
	return &ReportStep{
		BaseStage: NewBaseStage(StepIDReport, StepNameReport, []string{StepIDAggregate}),
		options:   options,
	}
}

// Validate requires a summary, a reporter and writable output directories
func (s *ReportStep) Validate(state *OperationState) error {
	if s.options == nil || s.options.Reporter == nil || s.options.Paths == nil {
		return fmt.Errorf("report step has no reporter")
	}
	if state.Summary == nil {
		return fmt.Errorf("no summary computed")
	}
	validator := s.options.validator()
	if err := validator.ValidateOutputDirectory(s.options.Paths.ChartsDir); err != nil {
		return err
	}
	if s.options.Exporter != nil {
		return validator.ValidateOutputDirectory(s.options.Exporter.Dir())
	}
	return nil
}

// Execute writes the console tables, every chart and, when configured, the
// CSV tables
func (s *ReportStep) Execute(ctx context.Context, state *OperationState) error {
	if s.options.Console != nil {
		if err := s.options.Console.Print(state.Summary); err != nil {
			return err
		}
	}

	charts, err := s.options.Reporter.Render(ctx, state.Table, state.Summary)
	state.Charts = charts
	if s.options.Metrics != nil && len(charts) > 0 {
		s.options.Metrics.ChartsRendered.Add(ctx, int64(len(charts)))
	}
	if err != nil {
		return err
	}

	if s.options.Console != nil {
		if err := s.options.Console.Charts(charts); err != nil {
			return err
		}
	}

	if s.options.Exporter != nil {
		tables, err := s.options.Exporter.Export(ctx, state.Summary, state.Table)
		state.Tables = tables
		if err != nil {
			return err
		}
	}

	empty := 0
	for _, chart := range charts {
		empty += len(chart.EmptyPanels)
	}
	stepState := state.GetStage(s.ID())
	stepState.SetMetadata(MetadataKeyTables, len(state.Tables))
	stepState.SetMetadata(MetadataKeyCharts, len(charts))
	stepState.SetMetadata(MetadataKeyEmptyPanels, empty)
	return nil
}

// NewAnalysisRegistry registers the five analysis steps in order
func NewAnalysisRegistry(options *StageOptions) (*Registry, error) {
	registry := NewRegistry()
	steps := []Step{
		NewLoadStep(options),
		NewCleanStep(options),
		NewDeriveStep(),
		NewAggregateStep(options),
		NewReportStep(options),
	}
	for _, step := range steps {
		if err := registry.Register(step); err != nil {
			return nil, err
		}
	}
	if err := registry.ValidateDependencies(); err != nil {
		return nil, err
	}
	return registry, nil
}
