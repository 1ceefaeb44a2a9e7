// Package workspace resolves and validates a model directory.
//
// It classifies the directory's contents, requires the model's name file,
// probes writability, and inventories whichever output artifacts already
// exist. Their absence before a run is expected and reported, never raised.
package workspace
