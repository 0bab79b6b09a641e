// package cluster owns live connections to MongoDB clusters.
//
// A [Client] wraps one connection in an actor: callers submit list, download and upload commands
// through a bounded admission channel and wait for a single reply. [Backend] is the seam between the
// actor and the driver; [DialMongo] provides the production implementation.
package cluster
