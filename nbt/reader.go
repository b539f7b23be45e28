package nbt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// DefaultMaxDepth bounds compound/list nesting during decode. Nesting depth
// is controlled by the input file, so recursion must not be left unbounded.
const DefaultMaxDepth = 512

var (
	// ErrTruncated is returned when the decode cursor would pass the end of
	// the input buffer.
	ErrTruncated = errors.New("truncated NBT data")
	// ErrUnknownKind is returned when a kind byte outside the defined range
	// is read where a payload kind is expected.
	ErrUnknownKind = errors.New("unknown NBT tag kind")
	// ErrTooDeep is returned when nesting exceeds the configured limit.
	ErrTooDeep = errors.New("NBT nesting too deep")
	// ErrNotCompound is returned when the root tag of a document is not a
	// compound.
	ErrNotCompound = errors.New("root tag is not a compound")
)

// Decode reads one document from data using the default nesting limit.
// Trailing bytes after the root payload are ignored.
func Decode(data []byte) (*Document, error) {
	return DecodeWithLimit(data, DefaultMaxDepth)
}

// DecodeWithLimit reads one document from data rejecting trees nested
// deeper than maxDepth levels of compounds and lists.
func DecodeWithLimit(data []byte, maxDepth int) (*Document, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	r := &reader{data: data, maxDepth: maxDepth}

	kind, err := r.readKind()
	if err != nil {
		return nil, fmt.Errorf("read root kind: %w", err)
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("root tag kind %d: %w", kind, ErrUnknownKind)
	}
	name, err := r.readString()
	if err != nil {
		return nil, fmt.Errorf("read root name: %w", err)
	}
	if kind != KindCompound {
		return nil, fmt.Errorf("root tag %q is %s: %w", name, kind, ErrNotCompound)
	}
	root, err := r.readPayload(kind, 0)
	if err != nil {
		return nil, fmt.Errorf("read root payload: %w", err)
	}
	return &Document{RootName: name, Root: root.(Compound)}, nil
}

// reader decodes NBT data sequentially from an in-memory buffer.
type reader struct {
	data     []byte
	pos      int
	maxDepth int
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || len(r.data)-r.pos < n {
		return nil, fmt.Errorf("%d bytes at offset %d: %w", n, r.pos, ErrTruncated)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) readKind() (TagKind, error) {
	b, err := r.take(1)
	if err != nil {
		return KindEnd, err
	}
	return TagKind(b[0]), nil
}

func (r *reader) readInt16() (int16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(b)), nil
}

func (r *reader) readInt32() (int32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func (r *reader) readInt64() (int64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

// readString reads an uint16 length-prefixed UTF-8 string. Invalid UTF-8 is
// replaced with U+FFFD, never an error - names in the wild do contain junk.
func (r *reader) readString() (string, error) {
	n, err := r.take(2)
	if err != nil {
		return "", err
	}
	b, err := r.take(int(binary.BigEndian.Uint16(n)))
	if err != nil {
		return "", err
	}
	if utf8.Valid(b) {
		return string(b), nil
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError)), nil
}

// readCount reads an int32 length prefix and rejects negative values.
func (r *reader) readCount() (int, error) {
	n, err := r.readInt32()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative length %d at offset %d: %w", n, r.pos, ErrTruncated)
	}
	return int(n), nil
}

func (r *reader) readPayload(kind TagKind, depth int) (Tag, error) {
	if depth > r.maxDepth {
		return nil, fmt.Errorf("depth %d: %w", depth, ErrTooDeep)
	}

	switch kind {
	case KindByte:
		b, err := r.take(1)
		if err != nil {
			return nil, err
		}
		return Byte(b[0]), nil
	case KindShort:
		v, err := r.readInt16()
		if err != nil {
			return nil, err
		}
		return Short(v), nil
	case KindInt:
		v, err := r.readInt32()
		if err != nil {
			return nil, err
		}
		return Int(v), nil
	case KindLong:
		v, err := r.readInt64()
		if err != nil {
			return nil, err
		}
		return Long(v), nil
	case KindFloat:
		v, err := r.readInt32()
		if err != nil {
			return nil, err
		}
		return Float(math.Float32frombits(uint32(v))), nil
	case KindDouble:
		v, err := r.readInt64()
		if err != nil {
			return nil, err
		}
		return Double(math.Float64frombits(uint64(v))), nil
	case KindByteArray:
		n, err := r.readCount()
		if err != nil {
			return nil, err
		}
		b, err := r.take(n)
		if err != nil {
			return nil, err
		}
		out := make(ByteArray, n)
		copy(out, b)
		return out, nil
	case KindString:
		s, err := r.readString()
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case KindList:
		return r.readList(depth)
	case KindCompound:
		return r.readCompound(depth)
	case KindIntArray:
		n, err := r.readCount()
		if err != nil {
			return nil, err
		}
		out := make(IntArray, n)
		for i := range out {
			v, err := r.readInt32()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case KindLongArray:
		n, err := r.readCount()
		if err != nil {
			return nil, err
		}
		out := make(LongArray, n)
		for i := range out {
			v, err := r.readInt64()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("tag kind %d at offset %d: %w", kind, r.pos, ErrUnknownKind)
	}
}

func (r *reader) readList(depth int) (Tag, error) {
	elem, err := r.readKind()
	if err != nil {
		return nil, err
	}
	count, err := r.readCount()
	if err != nil {
		return nil, err
	}
	// empty lists are allowed to declare KindEnd elements
	if elem == KindEnd && count > 0 {
		return nil, fmt.Errorf("list of %d end tags: %w", count, ErrUnknownKind)
	}
	if !elem.IsValid() && elem != KindEnd {
		return nil, fmt.Errorf("list element kind %d: %w", elem, ErrUnknownKind)
	}
	lst := List{Elem: elem}
	if count > 0 {
		lst.Items = make([]Tag, 0, min(count, 1024))
	}
	for range count {
		item, err := r.readPayload(elem, depth+1)
		if err != nil {
			return nil, err
		}
		lst.Items = append(lst.Items, item)
	}
	return lst, nil
}

func (r *reader) readCompound(depth int) (Tag, error) {
	var c Compound
	for {
		kind, err := r.readKind()
		if err != nil {
			return nil, err
		}
		if kind == KindEnd {
			return c, nil
		}
		if !kind.IsValid() {
			return nil, fmt.Errorf("compound entry kind %d at offset %d: %w", kind, r.pos, ErrUnknownKind)
		}
		name, err := r.readString()
		if err != nil {
			return nil, err
		}
		value, err := r.readPayload(kind, depth+1)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", name, err)
		}
		c.Entries = append(c.Entries, Entry{Name: name, Value: value})
	}
}
