package mysql

import (
	"fmt"

	atomicx "github.com/mysqlwire/protocore/internal/atomic"
)

// defaultMaxPacketSize is advertised in every HandshakeResponse41; it bounds
// the logical packet size the client is willing to receive, independent of
// the Packet Framer's unrelated 2**24-1 per-frame split threshold.
const defaultMaxPacketSize = 1<<24 - 1

// Session is the Connection State Machine of §3/§5: it owns the packet
// sequence and negotiated capabilities for one Transport and walks it
// through Init -> Handshake -> [TLS upgrade] -> Authentication -> Command,
// repeating the Command phase for each call until Close or a fatal error
// moves it to Closed. Unlike the poll(Progress) design sketched in §9, this
// implementation issues blocking calls over Transport directly — see
// DESIGN.md for why that fits Go's concurrency model better than a
// hand-rolled non-blocking state machine.
type Session struct {
	pio          *packetIO
	transport    Transport
	capabilities ClientFlag
	status       StatusFlag

	serverVersion string
	connectionID  uint32

	activeStream *RowStream

	closed   atomicx.Bool
	closeErr atomicx.Error
}

// Connect drives a Transport through the handshake and authentication
// phases and returns a ready-for-commands Session.
func Connect(transport Transport, params *Params) (*Session, error) {
	pio := newPacketIO(transport)

	data, err := pio.readPacket()
	if err != nil {
		return nil, err
	}
	hs, err := parseInitialHandshake(data)
	if err != nil {
		return nil, err
	}

	capabilities := params.effectiveCapabilities() & hs.Capabilities
	if capabilities&requiredCapabilities != requiredCapabilities {
		return nil, ErrUnsupportedHandshake
	}

	tlsActive := false
	if params.TLSMode != TLSModeDisable {
		if hs.Capabilities&ClientSSL == 0 {
			if params.TLSMode != TLSModePrefer {
				return nil, &ProtocolError{Msg: "server does not advertise CLIENT_SSL but a TLS mode was requested"}
			}
		} else {
			capabilities |= ClientSSL
			sslReq := encodeSSLRequest(capabilities, defaultMaxPacketSize, params.Collation)
			if err := pio.writePacket(sslReq); err != nil {
				return nil, err
			}
			upgraded, err := transport.UpgradeTLS(params.ServerName, params.TLSMode)
			if err != nil {
				return nil, fmt.Errorf("mysql: TLS upgrade failed: %w", err)
			}
			transport = upgraded
			pio.swapTransport(transport)
			tlsActive = true
		}
	}

	authResponse, err := computeInitialAuthResponse(hs.AuthPluginName, hs.AuthPluginData, params, tlsActive)
	if err != nil {
		return nil, err
	}

	resp := &HandshakeResponse41{
		ClientFlags:    capabilities,
		MaxPacketSize:  defaultMaxPacketSize,
		Collation:      params.Collation,
		Username:       params.Username,
		AuthResponse:   authResponse,
		Database:       params.Database,
		AuthPluginName: hs.AuthPluginName,
	}
	if params.Database != "" {
		resp.ClientFlags |= ClientConnectWithDB
	}
	encoded, err := resp.encode()
	if err != nil {
		return nil, err
	}
	if err := pio.writePacket(encoded); err != nil {
		return nil, err
	}

	ok, err := finishAuth(pio, capabilities, hs.AuthPluginName, hs.AuthPluginData, params, tlsActive)
	if err != nil {
		if _, fatal := err.(*ServerError); !fatal {
			pio.conn.Close()
		}
		return nil, err
	}

	s := &Session{
		pio:           pio,
		transport:     transport,
		capabilities:  capabilities,
		status:        ok.StatusFlags,
		serverVersion: hs.ServerVersion,
		connectionID:  hs.ConnectionID,
	}
	return s, nil
}

func (s *Session) checkUsable() error {
	if s.closed.IsSet() {
		return ErrClosed
	}
	if s.activeStream != nil {
		return ErrCancelled
	}
	return nil
}

func (s *Session) fail(err error) error {
	s.closed.Set(true)
	s.closeErr.Set(err)
	s.pio.conn.Close()
	return err
}

// ServerVersion returns the version string the server announced during the
// handshake.
func (s *Session) ServerVersion() string { return s.serverVersion }

// Capabilities returns the negotiated capability set (§4.5 rule 2).
func (s *Session) Capabilities() ClientFlag { return s.capabilities }

// Status returns the server status flags as of the last completed command.
func (s *Session) Status() StatusFlag { return s.status }

// Check performs a non-blocking liveness probe of the underlying Transport,
// for use by a caller-owned connection pool between borrows.
func (s *Session) Check() error {
	if s.closed.IsSet() {
		return ErrClosed
	}
	return connCheck(s.transport)
}

// readCommandResponse reads the single packet that opens every command
// response and classifies it: an OK packet, a server error, a LOCAL INFILE
// request (declined with an empty packet per §6's file-IO-free boundary,
// then recursed into the packet that follows), or the lenenc-int column
// count that opens a result set.
func readCommandResponse(pio *packetIO, capabilities ClientFlag) (ok *OKPacket, columnCount uint64, err error) {
	data, err := pio.readPacket()
	if err != nil {
		return nil, 0, err
	}
	if len(data) == 0 {
		return nil, 0, ErrMalformedPacket
	}

	switch {
	case isOKPacket(data, capabilities):
		ok, err = parseOKPacket(data, capabilities)
		return ok, 0, err

	case data[0] == iERR:
		se, perr := parseErrPacket(data, capabilities)
		if perr != nil {
			return nil, 0, perr
		}
		return nil, 0, se

	case data[0] == iLocalInFile:
		if werr := pio.writePacket(nil); werr != nil {
			return nil, 0, werr
		}
		return readCommandResponse(pio, capabilities)

	default:
		columnCount, err = parseResultSetColumnCount(data)
		return nil, columnCount, err
	}
}

func readColumnDefinitions(pio *packetIO, count uint64, capabilities ClientFlag) ([]*ColumnDefinition, error) {
	cols := make([]*ColumnDefinition, count)
	for i := range cols {
		data, err := pio.readPacket()
		if err != nil {
			return nil, err
		}
		col, err := parseColumnDefinition41(data)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}

	if capabilities&ClientDeprecateEOF == 0 {
		data, err := pio.readPacket()
		if err != nil {
			return nil, err
		}
		if !isEOFPacket(data, capabilities) {
			return nil, ErrMalformedPacket
		}
	}
	return cols, nil
}

// Query issues COM_QUERY and returns a RowStream over its result set, or an
// already-exhausted one if the statement produced no result set (§4.5).
func (s *Session) Query(query string) (*RowStream, error) {
	if err := s.checkUsable(); err != nil {
		return nil, err
	}
	s.pio.resetSequence()
	if err := s.pio.writePacket(buildComQuery(query)); err != nil {
		return nil, s.fail(err)
	}

	ok, columnCount, err := readCommandResponse(s.pio, s.capabilities)
	if err != nil {
		if se, isServerErr := err.(*ServerError); isServerErr {
			return nil, se
		}
		return nil, s.fail(err)
	}
	if ok != nil {
		s.status = ok.StatusFlags
		return doneRowStream(ok), nil
	}

	columns, err := readColumnDefinitions(s.pio, columnCount, s.capabilities)
	if err != nil {
		return nil, s.fail(err)
	}
	return newRowStream(s, columns, false), nil
}

// Ping issues COM_PING, a round trip with no result set (§4.5).
func (s *Session) Ping() error {
	if err := s.checkUsable(); err != nil {
		return err
	}
	s.pio.resetSequence()
	if err := s.pio.writePacket(buildComPing()); err != nil {
		return s.fail(err)
	}
	ok, _, err := readCommandResponse(s.pio, s.capabilities)
	if err != nil {
		if se, isServerErr := err.(*ServerError); isServerErr {
			return se
		}
		return s.fail(err)
	}
	s.status = ok.StatusFlags
	return nil
}

// Prepare issues COM_STMT_PREPARE and returns a handle for subsequent
// Execute calls (§4.5).
func (s *Session) Prepare(query string) (*PreparedStatement, error) {
	if err := s.checkUsable(); err != nil {
		return nil, err
	}
	s.pio.resetSequence()
	if err := s.pio.writePacket(buildComStmtPrepare(query)); err != nil {
		return nil, s.fail(err)
	}

	data, err := s.pio.readPacket()
	if err != nil {
		return nil, s.fail(err)
	}
	if len(data) > 0 && data[0] == iERR {
		se, perr := parseErrPacket(data, s.capabilities)
		if perr != nil {
			return nil, s.fail(perr)
		}
		return nil, se
	}

	prepOK, err := parseStmtPrepareOK(data)
	if err != nil {
		return nil, s.fail(err)
	}

	stmt := &PreparedStatement{session: s, id: prepOK.StatementID}
	if prepOK.NumParams > 0 {
		if stmt.params, err = readColumnDefinitions(s.pio, uint64(prepOK.NumParams), s.capabilities); err != nil {
			return nil, s.fail(err)
		}
	}
	if prepOK.NumColumns > 0 {
		if stmt.columns, err = readColumnDefinitions(s.pio, uint64(prepOK.NumColumns), s.capabilities); err != nil {
			return nil, s.fail(err)
		}
	}
	return stmt, nil
}

// Execute issues COM_STMT_EXECUTE for stmt with the given parameters and
// returns a RowStream over the binary result set (§4.5).
func (s *Session) Execute(stmt *PreparedStatement, params []Param) (*RowStream, error) {
	if err := s.checkUsable(); err != nil {
		return nil, err
	}
	if stmt.session != s {
		return nil, &ProtocolError{Msg: "prepared statement belongs to a different Session"}
	}
	if stmt.closed {
		return nil, &ProtocolError{Msg: "prepared statement was already closed"}
	}

	s.pio.resetSequence()
	payload := buildComStmtExecute(stmt.id, CursorTypeNoCursor, params)
	if err := s.pio.writePacket(payload); err != nil {
		return nil, s.fail(err)
	}

	ok, columnCount, err := readCommandResponse(s.pio, s.capabilities)
	if err != nil {
		if se, isServerErr := err.(*ServerError); isServerErr {
			return nil, se
		}
		return nil, s.fail(err)
	}
	if ok != nil {
		s.status = ok.StatusFlags
		return doneRowStream(ok), nil
	}

	columns, err := readColumnDefinitions(s.pio, columnCount, s.capabilities)
	if err != nil {
		return nil, s.fail(err)
	}
	return newRowStream(s, columns, true), nil
}

// CloseStatement issues COM_STMT_CLOSE, which the protocol defines to carry
// no response (§4.5).
func (s *Session) CloseStatement(stmt *PreparedStatement) error {
	if err := s.checkUsable(); err != nil {
		return err
	}
	if stmt.closed {
		return nil
	}
	s.pio.resetSequence()
	if err := s.pio.writePacket(buildComStmtClose(stmt.id)); err != nil {
		return s.fail(err)
	}
	stmt.closed = true
	return nil
}

// Close issues COM_QUIT and transitions the Session to Closed; it is safe
// to call more than once.
func (s *Session) Close() error {
	if !s.closed.TrySet(true) {
		return nil
	}
	s.pio.resetSequence()
	_ = s.pio.writePacket(buildComQuit())
	return s.pio.conn.Close()
}
