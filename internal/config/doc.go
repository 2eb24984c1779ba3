// Package config loads, normalizes, and validates anonctl configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ANON_NODE_CONF and ANON_DATA_DIR. The Config type centralizes every knob the
// CLI needs to find the node's config file, launch the daemon, and reach it
// over RPC.
//
// This is anonctl's own configuration. The daemon's key=value config file is
// handled by package nodeconf.
package config
