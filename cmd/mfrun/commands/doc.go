// Package commands defines the mfrun CLI and wires dependencies for subcommands.
//
// Commands
//
//   - check    Resolve a workspace and report its contents
//   - load     Load the input deck and report grid and package facts
//   - run      Load, serialize and run the solver, reporting convergence
//   - heads    Print a head (or drawdown) layer at an output time
//   - budget   List budget records, or print one record at a time
//   - obs      Print simulated-versus-observed head comparisons
//   - sfr      Print streamflow-routing reach records
//
// # Implementation
//
// The root command loads .env defaults and builds the stage-service
// dependency graph before any subcommand runs, so handlers share one app
// context with a configured logger.
package commands
