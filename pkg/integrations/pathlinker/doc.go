// Package pathlinker extracts subnetworks with PathLinker, the k-shortest
// paths app of Cytoscape, through its CyREST API.
//
// Each slice is uploaded as a Cytoscape.js network, PathLinker runs on it
// between the source and target query nodes, and the uploaded network is
// deleted afterwards, whatever the outcome. Every edge of the returned
// paths carries the scores and ranks of the paths it belongs to, in the
// PathLinker_score and PathLinker_rank attributes.
//
// PathLinker needs every edge to have the direction of the run and cannot
// handle multi-edges, except opposite edges of a directed network.
// CheckPreconditions converts the network when that is not the case.
package pathlinker
