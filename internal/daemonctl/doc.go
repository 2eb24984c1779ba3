// Package daemonctl launches, stops, and inspects the node daemon.
//
// A launch holds an exclusive file lock in the run directory so concurrent
// "anonctl start" invocations cannot spawn two daemons. RPC credentials are
// reconciled from the node config and, when a daemon is already running, its
// command line.
package daemonctl
