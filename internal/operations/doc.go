// Package operations runs the consolidation pipeline as a fixed sequence of
// steps:
//
//	discover -> reshape -> merge -> clean -> persist
//
// Core Components:
//
// Manager: builds the steps from the configuration and executes them in
// order on one goroutine. Each step gets a span, a duration observation and
// start/finish log lines carrying the run ID. The first failing step stops
// the run and the remaining steps are marked skipped.
//
// Step: one unit of work. Steps read the outputs of earlier steps from the
// RunState and leave their own there.
//
// RunState: the status of the run and of every step, the data handed between
// steps and the RunSummary counters.
//
// OperationError: a step failure with its type (execution, validation,
// cancellation) and the underlying cause, which stays reachable through
// errors.Is and errors.As.
//
// A run that reads no records at all ends with status no_data, writes
// nothing and returns no error.
//
// Example usage:
//
//	manager := operations.NewManager(cfg, operations.Dependencies{Logger: logger})
//	state, err := manager.Execute(ctx)
//	if err == nil && state.Summary.NoData {
//		fmt.Println("No data processed.")
//	}
package operations
