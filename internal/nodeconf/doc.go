// Package nodeconf reads the anond configuration file and reconciles it with
// the command line of a daemon that is already running.
//
// The config grammar is line oriented: one key=value pair per line, '#'
// comments, blank lines ignored. Keys are lower-cased on read and the last
// occurrence of a key wins. Lines without '=' are absorbed silently; callers
// that want to surface them opt into ParseStrict.
//
// Args turns a Record back into -key=value launch flags. RPC credentials are
// never emitted because a process command line is visible to other users on
// the host. ParseCmdArgs goes the other direction and pulls the credentials
// and network mode out of a running daemon's command line so Reconcile can
// merge them with the file.
//
// Nothing here logs or retries. File read errors reach the caller unwrapped.
package nodeconf
