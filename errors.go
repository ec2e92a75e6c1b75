package mysql

import (
	"errors"
	"fmt"
)

// Error taxonomy (§7). Fatal kinds (ProtocolError, FramingError, AuthError)
// additionally transition the owning Session to Closed; ServerError and
// DecodeError are recoverable and leave the Session usable.

// ErrClosed is returned by every Session operation once the session has
// transitioned to the Closed phase, whether from a fatal protocol error or
// an explicit Close.
var ErrClosed = errors.New("mysql: session is closed")

// ErrCancelled is returned by a command issued while a row stream from a
// prior command is still live.
var ErrCancelled = errors.New("mysql: command was cancelled")

// ProtocolError reports a malformed packet, an unexpected leading byte for
// the current phase, an unsupported protocol version, or a missing required
// capability. Always fatal.
type ProtocolError struct {
	Msg string
}

func (e *ProtocolError) Error() string { return "mysql: protocol error: " + e.Msg }

// FramingError reports a packet-framing inconsistency: a sequence-number
// mismatch or an EOF in the middle of a frame. Always fatal.
type FramingError struct {
	Msg string
}

func (e *FramingError) Error() string { return "mysql: framing error: " + e.Msg }

// newSequenceMismatchError and newUnexpectedEOFError build the two
// FramingError kinds named in §4.1; both are constructed fresh per occurrence so
// Msg can carry the observed vs. expected sequence numbers, but callers can
// match the kind with errors.As(&FramingError{}).
func newSequenceMismatchError(got, want byte) error {
	return &FramingError{Msg: fmt.Sprintf("sequence mismatch: got %d, want %d", got, want)}
}

func newUnexpectedEOFError() error {
	return &FramingError{Msg: "unexpected EOF reading packet"}
}

// AuthError reports an unknown plugin, a refused insecure cleartext
// password, malformed AuthMoreData, or an RSA failure. Always fatal.
type AuthError struct {
	Msg string
}

func (e *AuthError) Error() string { return "mysql: auth error: " + e.Msg }

var (
	// ErrInsecureClearPassword is returned when the server or caller
	// requests mysql_clear_password over a connection that is not TLS
	// protected (§4.3).
	ErrInsecureClearPassword = &AuthError{Msg: "mysql_clear_password requires an active TLS connection"}
	// ErrUnknownAuthPlugin is returned when an AuthSwitchRequest names a
	// plugin the registry does not recognize.
	ErrUnknownAuthPlugin = &AuthError{Msg: "unknown authentication plugin"}
)

// ServerError carries a server-reported error code, 5-character SQL state,
// and message from an ERR packet (§4.4). Recoverable during the command
// phase; fatal when returned during the handshake/authentication phase.
type ServerError struct {
	Code    uint16
	SQLState string
	Message string
}

func (e *ServerError) Error() string {
	if e.SQLState != "" {
		return fmt.Sprintf("mysql: server error %d (%s): %s", e.Code, e.SQLState, e.Message)
	}
	return fmt.Sprintf("mysql: server error %d: %s", e.Code, e.Message)
}

// DecodeError reports that a row column could not be decoded into the
// requested target kind. Recoverable; the row stream may be advanced past
// the offending row.
type DecodeError struct {
	Column int
	Type   FieldType
	Msg    string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("mysql: cannot decode column %d (type %d): %s", e.Column, e.Type, e.Msg)
}

// ErrMalformedPacket is a catch-all ProtocolError used where the teacher's
// original driver used a single sentinel "Malformed Packet" error; it is
// returned as-is, without additional context.
var ErrMalformedPacket = &ProtocolError{Msg: "malformed packet"}

// ErrUnsupportedHandshake reports a server that does not speak protocol
// version 10, or that omits a capability the core requires (§4.5 rule 2,
// §9 open question (b)).
var ErrUnsupportedHandshake = &ProtocolError{Msg: "server does not support the required protocol 10 handshake with PROTOCOL_41, SECURE_CONNECTION and PLUGIN_AUTH"}

// ErrInvalidCapabilityCombination is returned instead of asserting (as the
// teacher's writeAuthPacket historically did) when the caller's requested
// capabilities combine flags this core does not implement a serializer for
// (§9 open question (a)).
var ErrInvalidCapabilityCombination = errors.New("mysql: requested capability combination (CLIENT_CONNECT_ATTRS / CLIENT_PLUGIN_AUTH_LENENC_CLIENT_DATA) is not supported")
