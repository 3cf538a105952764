// Package districting partitions geographically located demand points into a
// fixed number of clusters and scores the result.
//
// Responsibilities: center selection, nearest-center assignment, per-cluster
// measure derivation (center distances, all-pair distances, load) and
// objective evaluation over a finished Solution.
// Key types: DemandPoint, DistanceTable, Cluster, Engine, Solution.
//
// The package performs no I/O. Instances are loaded by the instance
// subpackage, distance tables are built by the distance subpackage, and
// finished solutions are consumed read-only by render and storage/sqlite.
//
// Construction is single-threaded and deterministic for the default
// strategy. The randomized strategy draws from a *rand.Rand supplied by the
// caller so runs can be replayed from a seed.
package districting
