// Package app wires the uielement runtime for the command line: it owns the
// component registry and the UI event loop, installs the configured
// observers, renders pages and serves them over HTTP with live sessions.
//
// All document work runs on the loop goroutine, so renders, checks and live
// sessions never touch the signal graph concurrently.
package app
