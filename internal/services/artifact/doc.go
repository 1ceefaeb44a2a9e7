// Package artifact exposes typed, read-only accessors over a successful
// run's output files.
//
// Artifacts open lazily: the first access to a file scans only its record
// headers into an index, and each array read seeks directly to one record.
// No file handle outlives a single call. Accessors are referentially
// transparent, and a missing artifact fails only its own accessors.
package artifact
