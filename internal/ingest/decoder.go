package ingest

import (
	"bufio"
	"bytes"
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
)

// Encoding names a compression applied to a log file.
type Encoding string

const (
	EncodingIdentity Encoding = ""
	EncodingGzip     Encoding = "gzip"
	EncodingDeflate  Encoding = "deflate"
	EncodingBrotli   Encoding = "br"
)

var gzipMagic = []byte{0x1f, 0x8b}

// DetectEncoding picks the decoder for a file from its extension, falling
// back to the gzip magic number. Brotli has no magic number and is only
// recognised by extension.
func DetectEncoding(path string, head []byte) Encoding {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return EncodingGzip
	case ".br":
		return EncodingBrotli
	case ".zz", ".deflate":
		return EncodingDeflate
	}
	if bytes.HasPrefix(head, gzipMagic) {
		return EncodingGzip
	}
	return EncodingIdentity
}

// Decode wraps r with the decoder for enc.
func Decode(r io.Reader, enc Encoding) (io.Reader, error) {
	switch enc {
	case EncodingGzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return gr, nil
	case EncodingDeflate:
		return flate.NewReader(r), nil
	case EncodingBrotli:
		return brotli.NewReader(r), nil
	case EncodingIdentity:
		return r, nil
	}
	return nil, fmt.Errorf("unsupported encoding %q", enc)
}

// decodeFile sniffs the head of r and returns a decoded stream.
func decodeFile(path string, r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(gzipMagic))
	return Decode(br, DetectEncoding(path, head))
}
