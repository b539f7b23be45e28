package convert

import (
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"testing"

	"schemconv/common"
	"schemconv/nbt"
)

func gzipped(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func emptyDoc() []byte {
	return nbt.Encode(&nbt.Document{RootName: "Schematic"})
}

func TestDetectCompression(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want common.Compression
	}{
		{"gzip", gzipped(t, emptyDoc()), common.CompressionGzip},
		{"bare nbt", emptyDoc(), common.CompressionPlain},
		{"garbage", []byte{0xDE, 0xAD, 0xBE, 0xEF}, common.CompressionUnknown},
		{"empty", nil, common.CompressionUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := detectCompression(tc.data); got != tc.want {
				t.Fatalf("want %s, got %s", tc.want, got)
			}
		})
	}
}

func TestDecompressRoundTrip(t *testing.T) {
	payload := emptyDoc()

	body, comp, err := decompress(gzipped(t, payload))
	if err != nil {
		t.Fatalf("gzip: %v", err)
	}
	if comp != common.CompressionGzip || !bytes.Equal(body, payload) {
		t.Fatalf("gzip: compression %s, %d bytes", comp, len(body))
	}

	body, comp, err = decompress(payload)
	if err != nil {
		t.Fatalf("plain: %v", err)
	}
	if comp != common.CompressionPlain || !bytes.Equal(body, payload) {
		t.Fatalf("plain: compression %s, %d bytes", comp, len(body))
	}

	if _, _, err = decompress([]byte{1, 2, 3}); err == nil {
		t.Fatal("garbage input accepted")
	}
}

func TestDecompressTruncatedGzip(t *testing.T) {
	data := gzipped(t, emptyDoc())
	if _, _, err := decompress(data[:len(data)-4]); err == nil {
		t.Fatal("truncated gzip stream accepted")
	}
}

func TestWriteCompressed(t *testing.T) {
	path := t.TempDir() + "/out.schem"
	payload := emptyDoc()
	if err := writeCompressed(path, payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	body, comp, err := decompress(data)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if comp != common.CompressionGzip || !bytes.Equal(body, payload) {
		t.Fatalf("round trip failed: compression %s", comp)
	}
}

func TestWriteCompressedBadDestination(t *testing.T) {
	err := writeCompressed(t.TempDir()+"/no/such/dir/out.schem", emptyDoc())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want os.ErrNotExist, got %v", err)
	}
}
