package mysql

// Command-phase packet builders and response decoders (§4.5). Each
// build* function returns a complete command payload ready for
// packetIO.writePacket after a resetSequence call; the parse* functions
// decode the fixed-shape responses that are not already covered by
// resultset.go's OK/ERR/EOF parsing.

// CursorType selects the server-side cursor behavior of a COM_STMT_EXECUTE
// request.
type CursorType byte

const (
	CursorTypeNoCursor CursorType = iota
	CursorTypeReadOnly
	CursorTypeForUpdate
	CursorTypeScrollable
)

func buildComQuery(query string) []byte {
	return append([]byte{byte(comQuery)}, query...)
}

func buildComInitDB(schema string) []byte {
	return append([]byte{byte(comInitDB)}, schema...)
}

func buildComPing() []byte { return []byte{byte(comPing)} }

func buildComQuit() []byte { return []byte{byte(comQuit)} }

func buildComStmtPrepare(query string) []byte {
	return append([]byte{byte(comStmtPrepare)}, query...)
}

func buildComStmtClose(stmtID uint32) []byte {
	payload := make([]byte, 0, 5)
	payload = append(payload, byte(comStmtClose))
	return appendUint32(payload, stmtID)
}

func buildComStmtReset(stmtID uint32) []byte {
	payload := make([]byte, 0, 5)
	payload = append(payload, byte(comStmtReset))
	return appendUint32(payload, stmtID)
}

// buildComStmtExecute builds a COM_STMT_EXECUTE request. iterationCount is
// always 1 in this core; the field exists on the wire only for historical
// bulk-execute compatibility (§9 open question: no bulk-execute support).
func buildComStmtExecute(stmtID uint32, cursor CursorType, params []Param) []byte {
	payload := make([]byte, 0, 10+len(params)*9)
	payload = append(payload, byte(comStmtExecute))
	payload = appendUint32(payload, stmtID)
	payload = append(payload, byte(cursor))
	payload = appendUint32(payload, 1)
	return encodeBinaryParams(payload, params)
}

// StmtPrepareOK is the server's response to COM_STMT_PREPARE (§4.5): a
// statement id plus the counts of parameter and result columns that follow
// as two (possibly EOF-terminated) column-definition sequences.
type StmtPrepareOK struct {
	StatementID  uint32
	NumColumns   uint16
	NumParams    uint16
	WarningCount uint16
}

func parseStmtPrepareOK(data []byte) (*StmtPrepareOK, error) {
	if len(data) < 12 || data[0] != iOK {
		return nil, ErrMalformedPacket
	}
	return &StmtPrepareOK{
		StatementID:  readUint32(data[1:5]),
		NumColumns:   readUint16(data[5:7]),
		NumParams:    readUint16(data[7:9]),
		WarningCount: readUint16(data[10:12]),
	}, nil
}

// parseResultSetColumnCount decodes the single lenenc-int that opens every
// COM_QUERY / COM_STMT_EXECUTE result set (§4.5).
func parseResultSetColumnCount(data []byte) (uint64, error) {
	n, isNull, _, err := readLengthEncodedInteger(data)
	if err != nil || isNull {
		return 0, ErrMalformedPacket
	}
	return n, nil
}
