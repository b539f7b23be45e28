package nbt

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Encode serializes a document into NBT bytes. It is the exact inverse of
// Decode and never fails for a structurally well-formed tree - it is the
// caller's responsibility to keep a list's declared element kind consistent
// with its elements.
func Encode(doc *Document) []byte {
	w := &writer{}
	w.writeKind(KindCompound)
	w.writeString(doc.RootName)
	w.writePayload(doc.Root)
	return w.buf.Bytes()
}

// writer encodes NBT data sequentially into a memory buffer.
type writer struct {
	buf bytes.Buffer
}

func (w *writer) writeKind(k TagKind) {
	w.buf.WriteByte(byte(k))
}

func (w *writer) writeInt16(v int16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(v))
	w.buf.Write(b[:])
}

func (w *writer) writeInt32(v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	w.buf.Write(b[:])
}

func (w *writer) writeInt64(v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	w.buf.Write(b[:])
}

func (w *writer) writeString(s string) {
	w.writeInt16(int16(uint16(len(s))))
	w.buf.WriteString(s)
}

func (w *writer) writePayload(t Tag) {
	switch v := t.(type) {
	case Byte:
		w.buf.WriteByte(byte(v))
	case Short:
		w.writeInt16(int16(v))
	case Int:
		w.writeInt32(int32(v))
	case Long:
		w.writeInt64(int64(v))
	case Float:
		w.writeInt32(int32(math.Float32bits(float32(v))))
	case Double:
		w.writeInt64(int64(math.Float64bits(float64(v))))
	case ByteArray:
		w.writeInt32(int32(len(v)))
		w.buf.Write(v)
	case String:
		w.writeString(string(v))
	case List:
		// element kind is written once from the list's own record, elements
		// follow as bare payloads with no per-element kind or name
		w.writeKind(v.Elem)
		w.writeInt32(int32(len(v.Items)))
		for _, item := range v.Items {
			w.writePayload(item)
		}
	case Compound:
		for _, e := range v.Entries {
			w.writeKind(e.Value.Kind())
			w.writeString(e.Name)
			w.writePayload(e.Value)
		}
		w.writeKind(KindEnd)
	case IntArray:
		w.writeInt32(int32(len(v)))
		for _, i := range v {
			w.writeInt32(i)
		}
	case LongArray:
		w.writeInt32(int32(len(v)))
		for _, i := range v {
			w.writeInt64(i)
		}
	}
}
