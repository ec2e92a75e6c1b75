package mysql

import (
	"bytes"
)

// minProtocolVersion is the only handshake protocol version this core
// speaks (§6, §9 open question (b): the legacy 3.20 handshake is rejected
// outright rather than emulated).
const minProtocolVersion = 10

// InitialHandshake is the server's v10 handshake packet (§4.4).
type InitialHandshake struct {
	ProtocolVersion byte
	ServerVersion   string
	ConnectionID    uint32
	AuthPluginData  []byte // full scramble, part 1 + part 2 concatenated
	Capabilities    ClientFlag
	Charset         byte
	StatusFlags     StatusFlag
	AuthPluginName  string
}

// parseInitialHandshake decodes the server's initial handshake packet.
func parseInitialHandshake(data []byte) (*InitialHandshake, error) {
	if len(data) < 1 {
		return nil, &ProtocolError{Msg: "empty initial handshake packet"}
	}
	h := &InitialHandshake{ProtocolVersion: data[0]}
	if h.ProtocolVersion != minProtocolVersion {
		return nil, ErrUnsupportedHandshake
	}

	pos := 1
	ver, n, err := readNULString(data[pos:])
	if err != nil {
		return nil, ErrMalformedPacket
	}
	h.ServerVersion = string(ver)
	pos += n

	if len(data) < pos+4 {
		return nil, ErrMalformedPacket
	}
	h.ConnectionID = readUint32(data[pos:])
	pos += 4

	if len(data) < pos+8 {
		return nil, ErrMalformedPacket
	}
	scramble1 := append([]byte(nil), data[pos:pos+8]...)
	pos += 8

	pos++ // filler, always 0x00

	if len(data) < pos+2 {
		return nil, ErrMalformedPacket
	}
	capLow := readUint16(data[pos:])
	pos += 2

	if len(data) <= pos {
		// Pre-4.1 style handshake with no capability upper bytes; reject
		// per §9 open question (b) since PROTOCOL_41 cannot be set.
		return nil, ErrUnsupportedHandshake
	}

	h.Charset = data[pos]
	pos++

	if len(data) < pos+2 {
		return nil, ErrMalformedPacket
	}
	h.StatusFlags = StatusFlag(readUint16(data[pos:]))
	pos += 2

	if len(data) < pos+2 {
		return nil, ErrMalformedPacket
	}
	capHigh := readUint16(data[pos:])
	pos += 2
	h.Capabilities = ClientFlag(uint32(capLow) | uint32(capHigh)<<16)

	if len(data) < pos+1 {
		return nil, ErrMalformedPacket
	}
	scrambleLen := int(data[pos])
	pos++

	pos += 10 // reserved

	scramble2Len := scrambleLen - 9
	if scramble2Len < 12 {
		scramble2Len = 12
	}
	if len(data) < pos+scramble2Len {
		return nil, ErrMalformedPacket
	}
	scramble2 := data[pos : pos+scramble2Len]
	// scramble2 is NUL-terminated in practice; trim a single trailing 0x00.
	if len(scramble2) > 0 && scramble2[len(scramble2)-1] == 0x00 {
		scramble2 = scramble2[:len(scramble2)-1]
	}
	h.AuthPluginData = append(scramble1, scramble2...)
	pos += scramble2Len

	if h.Capabilities&ClientPluginAuth != 0 && len(data) > pos {
		name, _, err := readNULString(data[pos:])
		if err != nil {
			// some servers omit the terminator on the final field
			name = bytes.TrimRight(data[pos:], "\x00")
		}
		h.AuthPluginName = string(name)
	}

	return h, nil
}

// HandshakeResponse41 is the client's response to the initial handshake
// (§4.4). ConnectAttrs and the lenenc-length auth-response variant
// (CLIENT_PLUGIN_AUTH_LENENC_CLIENT_DATA) are deliberately unsupported: per
// §9 open question (a) the encoder returns ErrInvalidCapabilityCombination
// instead of asserting when the caller sets either flag.
type HandshakeResponse41 struct {
	ClientFlags    ClientFlag
	MaxPacketSize  uint32
	Collation      byte
	Username       string
	AuthResponse   []byte
	Database       string
	AuthPluginName string
}

func (h *HandshakeResponse41) encode() ([]byte, error) {
	if h.ClientFlags&(ClientConnectAttrs|ClientPluginAuthLenencClientData) != 0 {
		return nil, ErrInvalidCapabilityCombination
	}

	data := make([]byte, 0, 64+len(h.Username)+len(h.AuthResponse)+len(h.Database))
	data = appendUint32(data, uint32(h.ClientFlags))
	data = appendUint32(data, h.MaxPacketSize)
	data = append(data, h.Collation)
	data = append(data, make([]byte, 23)...)
	data = appendNULString(data, h.Username)

	if h.ClientFlags&ClientSecureConnection != 0 {
		data = append(data, byte(len(h.AuthResponse)))
		data = append(data, h.AuthResponse...)
	} else {
		data = append(data, h.AuthResponse...)
		data = append(data, 0x00)
	}

	if h.ClientFlags&ClientConnectWithDB != 0 {
		data = appendNULString(data, h.Database)
	}

	if h.ClientFlags&ClientPluginAuth != 0 {
		data = appendNULString(data, h.AuthPluginName)
	}

	return data, nil
}

// encodeSSLRequest builds the SSLRequest packet: the first 32 bytes of
// HandshakeResponse41 with no username or further fields, sent before the
// transport is upgraded to TLS (§4.4).
func encodeSSLRequest(clientFlags ClientFlag, maxPacketSize uint32, collation byte) []byte {
	data := make([]byte, 0, 32)
	data = appendUint32(data, uint32(clientFlags))
	data = appendUint32(data, maxPacketSize)
	data = append(data, collation)
	data = append(data, make([]byte, 23)...)
	return data
}

// authSwitchRequest is the server's request (leading byte 0xFE during
// authentication) that the client redo auth with a different plugin and a
// fresh scramble (§4.5 rule 5).
type authSwitchRequest struct {
	PluginName string
	AuthData   []byte
}

func parseAuthSwitchRequest(data []byte) (*authSwitchRequest, error) {
	if len(data) == 0 || data[0] != iEOF {
		return nil, ErrMalformedPacket
	}
	if len(data) == 1 {
		// Pre-4.1 fallback: no plugin name, no new scramble.
		return &authSwitchRequest{PluginName: "mysql_old_password"}, nil
	}

	name, n, err := readNULString(data[1:])
	if err != nil {
		return nil, ErrMalformedPacket
	}
	authData := append([]byte(nil), data[1+n:]...)
	if len(authData) > 0 && authData[len(authData)-1] == 0x00 {
		authData = authData[:len(authData)-1]
	}
	return &authSwitchRequest{PluginName: string(name), AuthData: authData}, nil
}

// isAuthMoreData reports whether data is an AuthMoreData packet (leading
// byte 0x01), carrying further plugin-specific challenge bytes (§4.5 rule 6).
func isAuthMoreData(data []byte) bool {
	return len(data) > 0 && data[0] == iAuthMoreData
}
