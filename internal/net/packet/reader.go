package packet

import (
	"encoding/binary"
	"math"
)

// Reader reads binary frame fields from an inbound payload.
// Byte 0 is always the marker. Out-of-range reads return zero values;
// a short frame never panics the dispatcher.
type Reader struct {
	data []byte
	off  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data, off: 1} // skip marker byte
}

func (r *Reader) Marker() byte {
	if len(r.data) == 0 {
		return 0
	}
	return r.data[0]
}

// ReadC reads 1 unsigned byte.
func (r *Reader) ReadC() byte {
	if r.off >= len(r.data) {
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

// ReadH reads 2 bytes as little-endian uint16.
func (r *Reader) ReadH() uint16 {
	if r.off+2 > len(r.data) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

// ReadD reads 4 bytes as little-endian int32.
func (r *Reader) ReadD() int32 {
	if r.off+4 > len(r.data) {
		return 0
	}
	v := int32(binary.LittleEndian.Uint32(r.data[r.off:]))
	r.off += 4
	return v
}

// ReadF reads 4 bytes as a little-endian float32.
func (r *Reader) ReadF() float32 {
	if r.off+4 > len(r.data) {
		return 0
	}
	v := math.Float32frombits(binary.LittleEndian.Uint32(r.data[r.off:]))
	r.off += 4
	return v
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	n := len(r.data) - r.off
	if n < 0 {
		return 0
	}
	return n
}

// ControlFrame is the decoded form of a MarkerInput frame:
// [0x01][flags]. Held state only; edges are derived server-side.
type ControlFrame struct {
	Up    bool
	Down  bool
	Left  bool
	Right bool
}

// ReadControlFrame decodes the flags byte of a control frame.
func ReadControlFrame(r *Reader) ControlFrame {
	flags := r.ReadC()
	return ControlFrame{
		Up:    flags&FlagUp != 0,
		Down:  flags&FlagDown != 0,
		Left:  flags&FlagLeft != 0,
		Right: flags&FlagRight != 0,
	}
}
