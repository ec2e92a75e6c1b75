package mysql

import (
	"bytes"
	"errors"
	"io"
	"net"
	"testing"
	"time"
)

// pipeTransport adapts a net.Conn (one half of a net.Pipe) to Transport for
// tests; UpgradeTLS is never exercised by these scenarios since all of them
// run with TLSModeDisable.
type pipeTransport struct {
	net.Conn
}

func (p pipeTransport) UpgradeTLS(string, TLSMode) (Transport, error) {
	return nil, errors.New("TLS not supported by pipeTransport")
}

// fakeServer drives the server half of the handshake/command exchanges
// directly with packetIO, standing in for a real mysqld.
type fakeServer struct {
	pio *packetIO
}

func newFakeServer(conn net.Conn) *fakeServer {
	return &fakeServer{pio: newPacketIO(pipeTransport{conn})}
}

// writeInitialHandshake sends a v10 handshake advertising native_password
// auth with a fixed 20-byte scramble, for scramble 00 01 02 ... 13 (§8
// scenario 1).
func (s *fakeServer) writeInitialHandshake(scramble []byte) error {
	caps := requiredCapabilities | ClientLongPassword | ClientTransactions

	data := []byte{10}
	data = appendNULString(data, "8.0.34")
	data = appendUint32(data, 1)
	data = append(data, scramble[:8]...)
	data = append(data, 0x00) // filler
	data = appendUint16(data, uint16(caps))
	data = append(data, 0x21) // collation utf8_general_ci
	data = appendUint16(data, uint16(StatusAutocommit))
	data = appendUint16(data, uint16(caps>>16))
	data = append(data, 21) // auth-plugin-data-len
	data = append(data, make([]byte, 10)...)
	data = append(data, scramble[8:20]...)
	data = appendNULString(data, "mysql_native_password")

	s.pio.resetSequence()
	return s.pio.writePacket(data)
}

func (s *fakeServer) readHandshakeResponse() ([]byte, error) {
	return s.pio.readPacket()
}

func (s *fakeServer) writeOK() error {
	data := []byte{iOK, 0, 0}
	data = appendUint16(data, uint16(StatusAutocommit))
	data = appendUint16(data, 0)
	return s.pio.writePacket(data)
}

func newPipePair(t *testing.T) (client net.Conn, server net.Conn) {
	t.Helper()
	client, server = net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return client, server
}

func testScramble() []byte {
	b := make([]byte, 20)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func TestConnectNativePassword(t *testing.T) {
	clientConn, serverConn := newPipePair(t)
	server := newFakeServer(serverConn)
	scramble := testScramble()

	done := make(chan error, 1)
	go func() {
		if err := server.writeInitialHandshake(scramble); err != nil {
			done <- err
			return
		}
		resp, err := server.readHandshakeResponse()
		if err != nil {
			done <- err
			return
		}
		want := scrambleNativePassword(scramble, "test_password")
		marker := append([]byte{20}, want...)
		if !bytes.Contains(resp, marker) {
			done <- errors.New("auth response mismatch")
			return
		}
		done <- server.writeOK()
	}()

	params := &Params{
		Username:             "test_username",
		Password:             "test_password",
		Database:             "test_database",
		Collation:            0x21,
		AllowNativePasswords: true,
		TLSMode:              TLSModeDisable,
	}

	sess, err := Connect(pipeTransport{clientConn}, params)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer sess.Close()
	// Runs before sess.Close: nothing reads COM_QUIT off the unbuffered
	// pipe, so the server end is closed to let that write fail fast.
	defer serverConn.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("fake server: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fake server")
	}

	if sess.Status()&StatusAutocommit == 0 {
		t.Fatalf("status = %v, want AUTOCOMMIT set", sess.Status())
	}
}

func TestQuerySimpleSelect(t *testing.T) {
	clientConn, serverConn := newPipePair(t)
	server := newFakeServer(serverConn)
	scramble := testScramble()

	serverDone := make(chan error, 1)
	go func() {
		if err := server.writeInitialHandshake(scramble); err != nil {
			serverDone <- err
			return
		}
		if _, err := server.readHandshakeResponse(); err != nil {
			serverDone <- err
			return
		}
		if err := server.writeOK(); err != nil {
			serverDone <- err
			return
		}

		server.pio.resetSequence()
		if _, err := server.pio.readPacket(); err != nil { // COM_QUERY
			serverDone <- err
			return
		}

		if err := server.pio.writePacket(appendLengthEncodedInteger(nil, 1)); err != nil {
			serverDone <- err
			return
		}

		col := []byte{}
		col = appendLengthEncodedString(col, []byte("def"))
		col = appendLengthEncodedString(col, nil)
		col = appendLengthEncodedString(col, nil)
		col = appendLengthEncodedString(col, nil)
		col = appendLengthEncodedString(col, []byte("1"))
		col = appendLengthEncodedString(col, []byte("1"))
		col = appendLengthEncodedInteger(col, 0x0c)
		col = appendUint16(col, 63)
		col = appendUint32(col, 1)
		col = append(col, byte(FieldTypeLongLong))
		col = appendUint16(col, 0)
		col = append(col, 0)
		if err := server.pio.writePacket(col); err != nil {
			serverDone <- err
			return
		}

		eof := []byte{iEOF, 0, 0, 0, 0}
		if err := server.pio.writePacket(eof); err != nil {
			serverDone <- err
			return
		}

		row := appendLengthEncodedString(nil, []byte("1"))
		if err := server.pio.writePacket(row); err != nil {
			serverDone <- err
			return
		}
		serverDone <- server.pio.writePacket(eof)
	}()

	params := &Params{
		Username:             "test_username",
		Password:             "test_password",
		AllowNativePasswords: true,
		TLSMode:              TLSModeDisable,
	}
	sess, err := Connect(pipeTransport{clientConn}, params)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer sess.Close()
	// Runs before sess.Close: nothing reads COM_QUIT off the unbuffered
	// pipe, so the server end is closed to let that write fail fast.
	defer serverConn.Close()

	rs, err := sess.Query("SELECT 1")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(rs.Columns()) != 1 || rs.Columns()[0].Name != "1" {
		t.Fatalf("columns = %+v", rs.Columns())
	}

	row, err := rs.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if v, ok := row[0].Int64(); !ok || v != 1 {
		t.Fatalf("row[0] = %v, want int64 1", row[0])
	}

	if _, err := rs.Next(); err != io.EOF {
		t.Fatalf("second Next() err = %v, want io.EOF", err)
	}

	select {
	case err := <-serverDone:
		if err != nil {
			t.Fatalf("fake server: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fake server")
	}
}
