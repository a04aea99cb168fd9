// Package session owns per-connection framing helpers.
//
// Ownership boundary:
// - connect/read/write timeout defaults
// - one frame.Decoder bound to each net.Conn
// - deadline-bounded frame send and receive
//
// Connection lifecycle (reconnect, handshake, retry) stays with the caller.
package session
