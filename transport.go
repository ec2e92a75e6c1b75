package mysql

import "io"

// Transport is the duplex byte channel boundary the core consumes (§6).
// The core never dials, resolves DNS, or otherwise interprets addresses;
// it is handed an already-connected Transport and, when the handshake asks
// for TLS, calls UpgradeTLS to obtain a new Transport layered over the old
// one.
//
// A net.Conn satisfies Read/Write/Close directly; callers typically wrap
// their net.Conn in a thin adapter that implements UpgradeTLS in terms of
// crypto/tls.Client, since the core itself never imports crypto/tls; the
// RSA step of caching_sha2_password/sha256_password uses crypto/rsa
// (auth.go).
type Transport interface {
	io.Reader
	io.Writer
	io.Closer

	// UpgradeTLS performs the STARTTLS-style mid-stream upgrade of §4.1:
	// it wraps the current channel in TLS using serverName for
	// certificate verification (when mode requires it) and returns a new
	// Transport whose Read/Write operate over the encrypted channel.
	// Implementations must consume no bytes from the old Transport beyond
	// what TLS's client handshake itself reads.
	UpgradeTLS(serverName string, mode TLSMode) (Transport, error)
}
