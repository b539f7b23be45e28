package convert

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/h2non/filetype"
	"go.uber.org/multierr"

	"schemconv/common"
	"schemconv/nbt"
)

// detectCompression sniffs the input framing. A bare NBT document is
// recognized by its leading compound kind byte - schematics from some tools
// come around uncompressed.
func detectCompression(data []byte) common.Compression {
	switch {
	case filetype.Is(data, "gz"):
		return common.CompressionGzip
	case len(data) > 0 && nbt.TagKind(data[0]) == nbt.KindCompound:
		return common.CompressionPlain
	default:
		return common.CompressionUnknown
	}
}

// decompress returns the NBT payload of the input file. Decompression is
// scoped - the gzip reader is always closed before returning.
func decompress(data []byte) ([]byte, common.Compression, error) {
	comp := detectCompression(data)
	switch comp {
	case common.CompressionGzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, comp, fmt.Errorf("gzip open: %w", err)
		}
		body, err := io.ReadAll(zr)
		if err = multierr.Append(err, zr.Close()); err != nil {
			return nil, comp, fmt.Errorf("gzip read: %w", err)
		}
		return body, comp, nil
	case common.CompressionPlain:
		return data, comp, nil
	default:
		return nil, comp, errors.New("input is neither gzip-compressed nor bare NBT")
	}
}

// writeCompressed gzips data into the file at path. Close errors surface -
// a short write must not pass for success.
func writeCompressed(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	zw := gzip.NewWriter(f)
	_, werr := zw.Write(data)
	return multierr.Combine(werr, zw.Close(), f.Close())
}
