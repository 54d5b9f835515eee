// Package attestations defines the attestation pool of the beacon node: a
// slot-windowed collection of the votes seen on the attestation subnets,
// deduplicated and BLS-aggregated per distinct vote. The pool feeds every new
// vote into the fork choice store and answers the proposer's block packing
// query with a greedy maximum-coverage selection of aggregates.
//
// The pool is single-owner: all methods must be called from the task that
// owns it. Observer callbacks and fork choice calls run synchronously on that
// task.
package attestations
