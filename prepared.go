package mysql

// PreparedStatement is a server-side prepared statement handle (§4.5): a
// statement id plus the parameter and result column metadata the server
// returned from COM_STMT_PREPARE. Parameter metadata is often type-less
// placeholders (MySQL does not always resolve ? types at prepare time) —
// the actual wire type sent per execution comes from the caller's Param
// values, not from this metadata.
type PreparedStatement struct {
	session *Session
	id      uint32
	params  []*ColumnDefinition
	columns []*ColumnDefinition
	closed  bool
}

func (stmt *PreparedStatement) NumParams() int { return len(stmt.params) }

func (stmt *PreparedStatement) Params() []*ColumnDefinition { return stmt.params }

func (stmt *PreparedStatement) Columns() []*ColumnDefinition { return stmt.columns }
