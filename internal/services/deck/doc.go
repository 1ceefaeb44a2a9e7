// Package deck loads, corrects, validates and serializes a model's input
// deck.
//
// Each package file parses independently. A package whose array data cannot
// be split under its declared field format surfaces a FormatAmbiguityError;
// the caller sets an explicit format on that package and reloads it alone,
// leaving every other parsed package untouched. After all packages parse,
// the deck is checked for grid-shape and stress-period consistency against
// the discretization package.
package deck
