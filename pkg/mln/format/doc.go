// Package format validates graphs against the multilayer network schema and
// reads layered collections back into a [mln.Model].
//
// Three shapes are recognised:
//
//   - a layered collection: one graph per layer, flagged "Multi-layer
//     network" and carrying an Integer "Layer ID" graph attribute, with an
//     auxiliary "k->k+1_Inter-Edge" table shared by layers k and k+1
//   - a flattened graph: every layer merged, nodes named "name_k"
//   - an aggregated graph: same-named nodes collapsed across layers
//
// Validators are read-only. Layer-ID contiguity and inter-table naming
// fail on the first violation; required columns are collected and
// reported together. Every failure is an [errors.Error] with code
// [errors.ErrCodeFormat].
package format
