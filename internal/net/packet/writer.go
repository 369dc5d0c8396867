package packet

import (
	"encoding/binary"
	"math"
)

// Writer builds a binary frame. All multi-byte writes are little-endian.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64)}
}

// NewWriterWithMarker starts a frame with its marker byte.
func NewWriterWithMarker(marker byte) *Writer {
	w := &Writer{buf: make([]byte, 0, 64)}
	w.WriteC(marker)
	return w
}

// WriteC writes 1 byte.
func (w *Writer) WriteC(v byte) {
	w.buf = append(w.buf, v)
}

// WriteH writes 2 bytes little-endian.
func (w *Writer) WriteH(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteD writes 4 bytes little-endian.
func (w *Writer) WriteD(v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	w.buf = append(w.buf, b[:]...)
}

// WriteF writes a float32 as 4 bytes little-endian.
func (w *Writer) WriteF(v float32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	w.buf = append(w.buf, b[:]...)
}

func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) Len() int {
	return len(w.buf)
}

// EncodeControlFrame builds the [marker][flags] input frame a client sends.
// Servers use it in tests and headless tooling.
func EncodeControlFrame(f ControlFrame) []byte {
	var flags byte
	if f.Up {
		flags |= FlagUp
	}
	if f.Down {
		flags |= FlagDown
	}
	if f.Left {
		flags |= FlagLeft
	}
	if f.Right {
		flags |= FlagRight
	}
	return []byte{MarkerInput, flags}
}
