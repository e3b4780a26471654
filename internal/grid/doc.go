// Package grid builds the evaluation grids on which conductor fields are
// computed.
//
// A [Region] is a tagged variant: Cartesian boxes, cylindrical domains or
// an externally supplied point list. Cartesian and cylindrical regions are
// generated from inclusive [Axis] ranges; both produce the same X, Y, Z
// and HP columns so consumers never need to know which kind they got.
//
// # Ordering
//
// Cartesian parts are emitted with X outermost and Z innermost.
// Cylindrical parts are emitted R, Phi, Z with coordinates rounded to
// [Decimals] places and duplicates (the R=0 axis) dropped. Composite
// regions concatenate their parts in order.
//
// # Jacobian groups
//
// [AugmentJacobian] replaces every point with a contiguous group of seven:
// the point itself followed by its +x, -x, +y, -y, +z, -z neighbours.
// The operation is not idempotent; applying it twice yields 49 points per
// original point.
package grid
