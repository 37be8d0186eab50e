// Package shared holds code used across basketlens packages that belongs to no
// single layer. Today that is the testutil subpackage: grocery CSV fixtures and
// a buffered slog handler for asserting on log output.
//
// Nothing here may import the domain packages, so any package can use it in
// tests without creating an import cycle.
package shared
