// Package exposure classifies floor slabs whose edges lack barrier
// protection.
//
// Pipeline: boundary curves -> Sample -> Index.IsCovered -> EvaluateEdge
// -> Classify. Each floor is evaluated independently against the barrier
// set supplied in the same call; nothing is cached across calls, so
// Classify is idempotent for identical inputs.
//
// Hosts plug in through the Floor and Barrier interfaces (HasBoundingVolume,
// HasBoundaryLoops). No SQL or file I/O is allowed in this package.
package exposure
