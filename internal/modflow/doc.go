// Package modflow implements the file codecs of a MODFLOW-2005-style model:
// the name file, the text package files with their array control records and
// field-format negotiation, and the binary head, drawdown and cell-budget
// output files. Higher-level orchestration lives in internal/services.
package modflow
