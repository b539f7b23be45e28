// Package nbt implements the Minecraft Named Binary Tag wire format: a
// binary, kind-tagged, possibly nested value tree with big-endian scalars.
// The codec is schema agnostic - it round-trips any well-formed tree byte
// for byte and carries no knowledge about schematic layouts.
package nbt

// TagKind is the wire discriminant of a tag payload.
type TagKind uint8

const (
	KindEnd TagKind = iota // compound terminator only, never a payload
	KindByte
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindByteArray
	KindString
	KindList
	KindCompound
	KindIntArray
	KindLongArray
)

var kindNames = [...]string{
	KindEnd:       "End",
	KindByte:      "Byte",
	KindShort:     "Short",
	KindInt:       "Int",
	KindLong:      "Long",
	KindFloat:     "Float",
	KindDouble:    "Double",
	KindByteArray: "ByteArray",
	KindString:    "String",
	KindList:      "List",
	KindCompound:  "Compound",
	KindIntArray:  "IntArray",
	KindLongArray: "LongArray",
}

func (k TagKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// IsValid reports whether k denotes a payload-bearing tag. KindEnd has no
// payload and is valid only as the compound terminator.
func (k TagKind) IsValid() bool {
	return k >= KindByte && k <= KindLongArray
}

// IsInteger reports whether k is one of the integral scalar kinds.
func (k TagKind) IsInteger() bool {
	return k >= KindByte && k <= KindLong
}

// Tag is a single NBT payload. It is a closed union - exactly one concrete
// type exists per wire kind and nothing outside this package can add more.
type Tag interface {
	Kind() TagKind
	isTag()
}

type (
	Byte      int8
	Short     int16
	Int       int32
	Long      int64
	Float     float32
	Double    float64
	ByteArray []byte
	String    string

	// List holds elements of a single kind. Elem is recorded explicitly and
	// written to the wire once - it is not re-derived from the elements.
	// An empty list may legitimately carry Elem == KindEnd.
	List struct {
		Elem  TagKind
		Items []Tag
	}

	// Compound is an ordered sequence of named sub-tags. The format neither
	// guarantees nor requires unique names, so entries are kept as a slice
	// and lookups return the first match.
	Compound struct {
		Entries []Entry
	}

	IntArray  []int32
	LongArray []int64
)

// Entry is one named sub-tag of a compound.
type Entry struct {
	Name  string
	Value Tag
}

func (Byte) Kind() TagKind      { return KindByte }
func (Short) Kind() TagKind     { return KindShort }
func (Int) Kind() TagKind       { return KindInt }
func (Long) Kind() TagKind      { return KindLong }
func (Float) Kind() TagKind     { return KindFloat }
func (Double) Kind() TagKind    { return KindDouble }
func (ByteArray) Kind() TagKind { return KindByteArray }
func (String) Kind() TagKind    { return KindString }
func (List) Kind() TagKind      { return KindList }
func (Compound) Kind() TagKind  { return KindCompound }
func (IntArray) Kind() TagKind  { return KindIntArray }
func (LongArray) Kind() TagKind { return KindLongArray }

func (Byte) isTag()      {}
func (Short) isTag()     {}
func (Int) isTag()       {}
func (Long) isTag()      {}
func (Float) isTag()     {}
func (Double) isTag()    {}
func (ByteArray) isTag() {}
func (String) isTag()    {}
func (List) isTag()      {}
func (Compound) isTag()  {}
func (IntArray) isTag()  {}
func (LongArray) isTag() {}

// Find returns the value of the first entry with the given name.
func (c Compound) Find(name string) (Tag, bool) {
	for _, e := range c.Entries {
		if e.Name == name {
			return e.Value, true
		}
	}
	return nil, false
}

// Has reports whether the compound has at least one entry with the given name.
func (c Compound) Has(name string) bool {
	_, ok := c.Find(name)
	return ok
}

// Len returns the number of entries, duplicates included.
func (c Compound) Len() int {
	return len(c.Entries)
}

// Document is the top level unit of an NBT file: a named root compound.
// The root name is meaningful to schematic consumers even though the format
// allows it to be empty.
type Document struct {
	RootName string
	Root     Compound
}

// AsInt converts any integral scalar tag to int64. Returns false for
// non-integral tags.
func AsInt(t Tag) (int64, bool) {
	switch v := t.(type) {
	case Byte:
		return int64(v), true
	case Short:
		return int64(v), true
	case Int:
		return int64(v), true
	case Long:
		return int64(v), true
	default:
		return 0, false
	}
}
