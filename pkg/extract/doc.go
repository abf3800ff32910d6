// Package extract runs subnetwork extractions over a flattened multilayer
// network.
//
// An [Orchestrator] slices the flattened graph according to a [Strategy],
// hands every slice to an external [Service] together with the query
// nodes read from the layers' query columns, and merges the returned
// [Network] values into a new multilayer network:
//
//	o := extract.NewOrchestrator(store, pathlinker.New(client, opts))
//	res, err := o.Run(ctx, flat, extract.Pairwise, []int{1, 2, 3}, extract.QueryColumns{
//	    1: "Query_1", 2: "Query_2", 3: "Query_3",
//	})
//
// A run moves through the states Idle, Checking, Preparing, Calling,
// Merging and Done, or ends in Cancelled or Failed. Cancelling ctx stops
// the run at the next checkpoint and removes every temporary slice graph
// from the store before errors.ErrCancelled is returned.
package extract
