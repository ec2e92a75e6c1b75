package mysql

import "io"

// RowStream is the lazy pull interface over one result set (§4.6): Next
// decodes and returns exactly one row per call, borrowing the owning
// Session exclusively until the stream reaches the end-of-rows marker or is
// explicitly Closed. Only one RowStream per Session may be live at a time;
// issuing another command while one is still live is ErrCancelled.
type RowStream struct {
	session *Session
	columns []*ColumnDefinition
	binary  bool
	done    bool
	err     error
	lastOK  *OKPacket
}

func newRowStream(s *Session, columns []*ColumnDefinition, binary bool) *RowStream {
	rs := &RowStream{session: s, columns: columns, binary: binary}
	s.activeStream = rs
	return rs
}

// doneRowStream builds an already-exhausted RowStream for a command whose
// response was a plain OK packet (no result set at all), so callers of
// Query/Execute never have to special-case "no rows" separately from
// "zero rows returned".
func doneRowStream(ok *OKPacket) *RowStream {
	return &RowStream{done: true, lastOK: ok}
}

// Columns reports the result set's column metadata; empty for a command
// that produced no result set.
func (rs *RowStream) Columns() []*ColumnDefinition { return rs.columns }

// LastOK returns the terminal OK/EOF status once the stream is exhausted,
// and nil before that point.
func (rs *RowStream) LastOK() *OKPacket { return rs.lastOK }

// Next decodes and returns the next row, or io.EOF once the result set is
// exhausted. A *DecodeError is recoverable: the stream remains positioned
// after the offending row and a subsequent Next call continues normally.
func (rs *RowStream) Next() ([]Value, error) {
	if rs.done {
		if rs.err != nil {
			return nil, rs.err
		}
		return nil, io.EOF
	}

	data, err := rs.session.pio.readPacket()
	if err != nil {
		rs.fail(err)
		return nil, err
	}

	caps := rs.session.capabilities
	switch {
	case isEOFPacket(data, caps):
		eof, perr := parseEOFPacket(data)
		if perr != nil {
			rs.fail(perr)
			return nil, perr
		}
		rs.finish(&OKPacket{StatusFlags: eof.StatusFlags, WarningCount: eof.Warnings})
		return nil, io.EOF

	case isOKPacket(data, caps):
		ok, perr := parseOKPacket(data, caps)
		if perr != nil {
			rs.fail(perr)
			return nil, perr
		}
		rs.finish(ok)
		return nil, io.EOF

	case len(data) > 0 && data[0] == iERR:
		se, perr := parseErrPacket(data, caps)
		if perr != nil {
			rs.fail(perr)
			return nil, perr
		}
		rs.fail(se)
		return nil, se

	default:
		var row []Value
		if rs.binary {
			row, err = decodeBinaryRow(data, rs.columns)
		} else {
			row, err = decodeTextRow(data, rs.columns)
		}
		if _, fatal := err.(*ProtocolError); fatal {
			rs.fail(err)
		}
		return row, err
	}
}

func (rs *RowStream) finish(ok *OKPacket) {
	rs.done = true
	rs.lastOK = ok
	rs.session.status = ok.StatusFlags
	if rs.session.activeStream == rs {
		rs.session.activeStream = nil
	}
}

func (rs *RowStream) fail(err error) {
	rs.done = true
	rs.err = err
	if rs.session != nil {
		if rs.session.activeStream == rs {
			rs.session.activeStream = nil
		}
		if _, recoverable := err.(*ServerError); !recoverable {
			rs.session.fail(err)
		}
	}
}

// Close drains any remaining rows so the Session is usable for the next
// command, per the cancel semantics of §5. It is a no-op once the stream is
// already exhausted.
func (rs *RowStream) Close() error {
	for {
		_, err := rs.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if _, ok := err.(*DecodeError); ok {
				continue
			}
			return err
		}
	}
}
