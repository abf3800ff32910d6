// Package normalize rewrites edge directions and merges parallel edges so
// that a graph meets the requirements of an extraction service.
//
// Each edge has two directions: the structural one recorded by the graph
// and the declared "Direction" attribute. [SetDirection] and its wrappers
// update the attribute and replace every edge whose structural direction
// disagrees with it, copying all of its cells.
//
// [AggregateMultiEdges] merges the parallel edges picked by a sequence of
// [Classifier] functions. Three presets are provided:
//
//	normalize.AggregateUndirected(ctx, g)          // undirected multi-edges
//	normalize.AggregateIdenticallyDirected(ctx, g) // directed, same way
//	normalize.AggregateMixed(ctx, g)               // everything
//
// Both passes are idempotent. The context is checked before each edge of
// a direction pass and before each node of an aggregation pass; a done
// context stops the pass with [errors.ErrCancelled], leaving the edges
// processed so far rewritten.
package normalize
