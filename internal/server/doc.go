// Package server implements the TCP side of the task service.
//
// A Server owns one listener and an accept loop. Every accepted connection is
// tracked in a mutex-guarded set and served by its own goroutine (a session)
// that loops Reading -> Dispatching -> Writing until the peer disconnects, an
// I/O or framing error occurs, or the server stops. Domain failures such as an
// unknown username become protocol responses and keep the session open.
//
// Stop closes the listener, closes every tracked connection to unblock
// in-flight reads, and waits for all sessions to finish before returning.
//
// Requests name the acting user in plain text; nothing here verifies that the
// peer is that user.
package server
