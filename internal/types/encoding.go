package types

import (
	"bytes"
	"encoding/binary"

	"github.com/holiman/uint256"
)

// canonicalWriter accumulates a deterministic byte encoding. Every field
// written has a fixed or length-prefixed width so two callers encoding the
// same logical value always produce the same bytes.
type canonicalWriter struct {
	buf bytes.Buffer
}

func newCanonicalWriter() *canonicalWriter {
	return &canonicalWriter{}
}

func (w *canonicalWriter) writeUint16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *canonicalWriter) writeUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *canonicalWriter) writeUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *canonicalWriter) writeUint256(v *uint256.Int) {
	if v == nil {
		v = new(uint256.Int)
	}
	b := v.Bytes32()
	w.buf.Write(b[:])
}

func (w *canonicalWriter) writeHash(h Hash) {
	w.buf.Write(h[:])
}

func (w *canonicalWriter) writeBytes(b []byte) {
	w.writeUint32(uint32(len(b)))
	w.buf.Write(b)
}

func (w *canonicalWriter) writePublicKey(pk PublicKey) {
	w.buf.Write(pk[:])
}

func (w *canonicalWriter) bytes() []byte {
	return w.buf.Bytes()
}
