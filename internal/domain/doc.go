// Package domain defines core data models and interfaces shared across the app.
// It contains plain types (deck/run/artifact state) and contracts (interfaces) only.
package domain
