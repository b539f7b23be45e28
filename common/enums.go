// Enums live in a separate package so that command line handling and
// conversion code can share them without import cycles.
package common

// Compression framing detected on input.
// ENUM(unknown, plain, gzip)
type Compression int

func (c Compression) IsCompressed() bool {
	return c == CompressionGzip
}
