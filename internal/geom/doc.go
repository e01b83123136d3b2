// Package geom holds the host-independent geometry used by the exposure
// classifier: points, axis-aligned bounding volumes, and parametric
// boundary curves.
//
// Curves are parameterised by arc length: StartParameter is 0 and
// EndParameter equals Length. Evaluation failures are returned as errors
// (ErrDegenerate, ErrNonFinite, ErrOutOfDomain) instead of panicking, so
// callers decide on their own fallback.
//
// No host, database, or I/O code belongs in this package.
package geom
