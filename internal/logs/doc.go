// Package logs reads the tail of the daemon's log files and follows them
// as they grow. Memory use is bounded by the number of lines requested.
package logs
