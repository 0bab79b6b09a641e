// Package models defines the data model shared by the cluster client, the clone engine and the UI layers.
//
// The package contains two categories of types:
//
// 1. Selection model: plain records describing what a cluster contains and what the user wants done with it
//   - [Listing] : Discovery result for a single database (name and collection names)
//   - [DatabaseIdentity] : Database name and the name it is copied to
//   - [CollectionEntry] : Collection name, target name and selection flag
//   - [Database] / [ClusterSummary] : Ordered collection of the above, edited by the UI
//   - [TransferJob] / [TransferOutcome] : One collection's worth of work and its terminal result
//
// 2. Persistent entities: Database-backed models with full lifecycle management
//   - [Profile] : A named connection descriptor
//
// Persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
