// Package filter evaluates the restricted dot/index query language used to
// extract a sub-value from a JSON response body.
//
// The grammar is a leading ".", optionally followed by dot-separated
// object-key segments, each optionally suffixed with one or more [index]
// accessors:
//
//	.
//	.name
//	.data.items[0].id
//	.matrix[1][0]
//
// Failures are non-fatal by design: a filter error means the exchange itself
// succeeded and only the formatted-output step failed.
package filter
