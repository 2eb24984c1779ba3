// Package preflight provides readiness checks for the node daemon's
// filesystem layout, its config file, and its RPC endpoint.
//
// The CLI "start" command runs RunAll before launching the daemon and
// refuses to continue when a required check fails. "status" reuses the
// individual checks to display health.
package preflight
