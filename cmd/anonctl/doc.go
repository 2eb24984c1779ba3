// Command anonctl inspects an Anon full node's configuration and controls
// the anond daemon.
//
// It reads anon.conf, regenerates the equivalent launch flags (credentials
// excluded), extracts credentials from a running daemon's command line, and
// starts, stops, or reports on the daemon. See "anonctl --help".
package main
