// Package anat extracts subnetworks with ANAT, the pathway analysis
// server of Tel Aviv University, through its SOAP interface.
//
// Four algorithms are available:
//
//   - [Anchored]: explanatory pathways from source anchors to target
//     terminals
//   - [General]: Steiner tree over all the query nodes
//   - [Local]: neighbourhood of the query nodes up to a degree
//   - [Shortest]: shortest paths from each query node to the node named
//     by its string value
//
// A request carries the whole slice, encoded as a background network,
// and a fresh session ID. The server computes the subnetwork
// asynchronously: the result is polled every second during the first
// minute, then every ten seconds, until it arrives, the context is
// cancelled or the timeout elapses.
package anat
