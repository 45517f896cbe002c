// Package operations runs the analysis as a sequence of steps.
//
// A Manager takes the steps of a Registry in dependency order and runs them
// one at a time against a shared OperationState:
//
//	load → clean → derive → aggregate → report
//
// Each step validates its inputs before it executes and runs under its own
// timeout. The first failing step ends the run; its error is an
// OperationError naming the step, and every later step is marked skipped.
// Cancelling the context stops the run before the next step starts.
//
// # Usage
//
//	registry, err := operations.NewAnalysisRegistry(&operations.StageOptions{
//	    Config:   cfg,
//	    Paths:    paths,
//	    Reporter: report.NewReporter(paths, cfg.Output, cfg.Analysis, logger),
//	    Console:  report.NewConsole(os.Stdout),
//	    Logger:   logger,
//	})
//	if err != nil {
//	    return err
//	}
//	manager := operations.NewManager(registry, operations.NewConfig(), operations.NewOperationTracer(telemetry), logger)
//	state, err := manager.Execute(ctx, "")
//
// Steps and the run are traced with OpenTelemetry and counted in the
// pipeline metrics of the infrastructure package.
package operations
