package mysql

import (
	"io"
	"time"
)

const defaultBufSize = 4096

// deadlineSetter is implemented by transports (typically a net.Conn) that
// support per-read deadlines; buffer degrades to blocking reads with no
// timeout when the underlying Transport does not implement it.
type deadlineSetter interface {
	SetReadDeadline(t time.Time) error
}

// buffer is a read buffer similar to bufio.Reader but zero-copy-ish for the
// packet sizes this protocol actually sees, adapted from the teacher's
// buffer type with an added per-fill read timeout. When timeout is zero (as
// nothing in this package sets it), fill clears any read deadline instead.
type buffer struct {
	buf     []byte
	rd      io.Reader
	idx     int
	length  int
	timeout time.Duration
}

func newBuffer(rd io.Reader) *buffer {
	return &buffer{
		buf: make([]byte, defaultBufSize),
		rd:  rd,
	}
}

// fill reads into the buffer until at least need bytes are available.
func (b *buffer) fill(need int) error {
	// move existing data to the beginning
	if b.length > 0 && b.idx > 0 {
		copy(b.buf[0:b.length], b.buf[b.idx:b.idx+b.length])
	}

	if need > len(b.buf) {
		newBuf := make([]byte, need)
		copy(newBuf, b.buf[:b.length])
		b.buf = newBuf
	}
	b.idx = 0

	if ds, ok := b.rd.(deadlineSetter); ok {
		if b.timeout > 0 {
			if err := ds.SetReadDeadline(time.Now().Add(b.timeout)); err != nil {
				return err
			}
		} else {
			_ = ds.SetReadDeadline(time.Time{})
		}
	}

	for b.length < need {
		n, err := b.rd.Read(b.buf[b.length:])
		b.length += n
		if err != nil {
			if err == io.EOF {
				return newUnexpectedEOFError()
			}
			return err
		}
	}
	return nil
}

// readNext returns the next need bytes from the buffer. The returned slice
// is only guaranteed to be valid until the next fill.
func (b *buffer) readNext(need int) ([]byte, error) {
	if b.length < need {
		if err := b.fill(need); err != nil {
			return nil, err
		}
	}
	p := b.buf[b.idx : b.idx+need]
	b.idx += need
	b.length -= need
	return p, nil
}

// small write-buffer pool, adapted from the teacher's bytesPool: packet
// headers plus small command payloads (COM_PING, COM_QUIT, COM_STMT_CLOSE,
// AuthSwitchResponse) are the overwhelming majority of outbound writes and
// benefit from reuse.
var smallBufferPool = make(chan []byte, 16)

// takeSmallBuffer returns a byte slice of length n, reused from the pool
// when possible and freshly allocated otherwise.
func takeSmallBuffer(n int) []byte {
	select {
	case s := <-smallBufferPool:
		if cap(s) >= n {
			return s[:n]
		}
	default:
	}
	return make([]byte, n)
}

func putSmallBuffer(s []byte) {
	select {
	case smallBufferPool <- s:
	default:
	}
}
