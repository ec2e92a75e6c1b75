package mysql

import (
	"fmt"
)

// Packet Framer (§4.1). Frames are [3-byte LE length][1-byte seq][payload].
// maxPayloadPerFrame is the 2**24-1 split threshold named throughout the
// spec.
const maxPayloadPerFrame = 1<<24 - 1

// Frame is one on-the-wire frame: a payload slice plus the sequence number
// of that specific frame (not of the logical packet it belongs to).
type Frame struct {
	Payload []byte
	Seq     byte
}

// encodeFrames splits payload into one-or-more frames honoring the
// 2**24-1 split rule, assigning strictly increasing (mod 256) sequence
// numbers starting at startSeq. A payload whose length is an exact
// multiple of maxPayloadPerFrame (length == k*maxPayloadPerFrame for k>=1;
// an empty payload is a single empty frame) gets a trailing
// zero-length frame, per the protocol sentinel in §3's Packet invariant and
// §8 property 2.
func encodeFrames(payload []byte, startSeq byte) []Frame {
	seq := startSeq
	if len(payload) < maxPayloadPerFrame {
		return []Frame{{Payload: payload, Seq: seq}}
	}

	var frames []Frame
	for len(payload) >= maxPayloadPerFrame {
		frames = append(frames, Frame{Payload: payload[:maxPayloadPerFrame], Seq: seq})
		payload = payload[maxPayloadPerFrame:]
		seq++
	}
	// len(payload) < maxPayloadPerFrame here; always append the final
	// (possibly empty) frame so a caller can tell a short chunk from the
	// "exact multiple" sentinel.
	frames = append(frames, Frame{Payload: payload, Seq: seq})
	return frames
}

// frameHeader serializes the 4-byte header for a frame of the given
// payload length and sequence number.
func frameHeader(payloadLen int, seq byte) [4]byte {
	var h [4]byte
	h[0] = byte(payloadLen)
	h[1] = byte(payloadLen >> 8)
	h[2] = byte(payloadLen >> 16)
	h[3] = seq
	return h
}

// appendFrame appends one complete wire frame (header + payload) to dst.
func appendFrame(dst []byte, f Frame) []byte {
	h := frameHeader(len(f.Payload), f.Seq)
	dst = append(dst, h[:]...)
	return append(dst, f.Payload...)
}

// frameReader abstracts the byte source a packetIO decodes frames from; it
// is satisfied by *buffer in production and lets tests drive decodeFrames
// against a plain in-memory source.
type frameReader interface {
	readNext(n int) ([]byte, error)
}

// decodeFrames reads one logical packet, reassembling continuation frames
// per the 2**24-1 rule, and validates that each frame's sequence number is
// exactly one more than the previous (wrapping mod 256), per the Connection
// Session invariant in §3. Returns the reassembled payload and the sequence
// number to expect on the next inbound packet.
func decodeFrames(r frameReader, expectSeq byte) (payload []byte, nextSeq byte, err error) {
	seq := expectSeq
	for {
		hdr, err := r.readNext(4)
		if err != nil {
			return nil, seq, err
		}
		length := int(hdr[0]) | int(hdr[1])<<8 | int(hdr[2])<<16
		if hdr[3] != seq {
			return nil, seq, newSequenceMismatchError(hdr[3], seq)
		}
		seq++

		chunk, err := r.readNext(length)
		if err != nil {
			return nil, seq, err
		}
		payload = append(payload, chunk...)

		if length < maxPayloadPerFrame {
			return payload, seq, nil
		}
		// length == maxPayloadPerFrame: a continuation frame (possibly
		// zero-length) must follow.
	}
}

// packetIO ties the Packet Framer to one Session's Transport: it owns the
// read buffer, the 8-bit wrapping sequence counter, and the write side's
// frame-splitting. At most one logical packet may be in flight in each
// direction at a time, matching the single-command-in-flight invariant of
// §3.
type packetIO struct {
	buf      *buffer
	conn     Transport
	sequence byte
}

func newPacketIO(conn Transport) *packetIO {
	return &packetIO{
		buf:  newBuffer(conn),
		conn: conn,
	}
}

// resetSequence zeroes the sequence counter, as required at the start of
// every command-phase request and every authentication round (§3).
func (p *packetIO) resetSequence() {
	p.sequence = 0
}

// swapTransport points packetIO at a new Transport without touching the
// sequence counter, used by the mid-stream TLS upgrade of §4.1: the
// upgraded channel continues the same packet sequence the plaintext one was
// on, it just encrypts the bytes underneath.
func (p *packetIO) swapTransport(conn Transport) {
	p.conn = conn
	p.buf = newBuffer(conn)
}

func (p *packetIO) readPacket() ([]byte, error) {
	payload, next, err := decodeFrames(p.buf, p.sequence)
	p.sequence = next
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (p *packetIO) writePacket(payload []byte) error {
	frames := encodeFrames(payload, p.sequence)
	for _, f := range frames {
		wire := appendFrame(make([]byte, 0, 4+len(f.Payload)), f)
		n, err := p.conn.Write(wire)
		if err != nil {
			return err
		}
		if n != len(wire) {
			return fmt.Errorf("mysql: short write: wrote %d of %d bytes", n, len(wire))
		}
	}
	p.sequence = frames[len(frames)-1].Seq + 1
	return nil
}
