// Package codec provides the low-level encodings shared by the rest of the
// engine: base64/base64url, hex, UTF-8, SHA-256, and gzip. Every function is
// total and fails only on malformed input, returning model.ErrEncoding.
//
// These are deliberately built on the standard library rather than a
// third-party codec: encoding/base64, encoding/hex, crypto/sha256, and
// compress/gzip already cover this exact concern, so there is no
// ecosystem library to prefer over stdlib here.
package codec

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/dc4eu/didengine/pkg/model"
)

// B64URLEncode encodes data as unpadded base64url text.
func B64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// B64URLDecode decodes unpadded (or padded) base64url text.
func B64URLDecode(s string) ([]byte, error) {
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	b, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, model.WrapOp("b64URLDecode", model.ErrEncoding, err)
	}
	return b, nil
}

// B64Encode encodes data as unpadded standard base64 text.
func B64Encode(data []byte) string {
	return base64.RawStdEncoding.EncodeToString(data)
}

// B64Decode decodes unpadded (or padded) standard base64 text.
func B64Decode(s string) ([]byte, error) {
	if b, err := base64.RawStdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, model.WrapOp("b64Decode", model.ErrEncoding, err)
	}
	return b, nil
}

// HexEncode renders data as lowercase hex, optionally prefixed with "0x".
func HexEncode(data []byte, withPrefix bool) string {
	s := hex.EncodeToString(data)
	if withPrefix {
		return "0x" + s
	}
	return s
}

// HexDecode parses lowercase (or uppercase) hex, tolerating an optional "0x"
// prefix.
func HexDecode(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, model.WrapOp("hexDecode", model.ErrEncoding, err)
	}
	return b, nil
}

// UTF8Encode is the identity conversion from a Go string to its UTF-8 bytes.
func UTF8Encode(s string) []byte {
	return []byte(s)
}

// UTF8Decode validates b and returns it as a Go string. Go strings are
// not guaranteed valid UTF-8, so malformed input is rejected explicitly.
func UTF8Decode(b []byte) (string, error) {
	if !isValidUTF8(b) {
		return "", model.WrapOp("utf8Decode", model.ErrEncoding, fmt.Errorf("invalid UTF-8"))
	}
	return string(b), nil
}

func isValidUTF8(b []byte) bool {
	return strings.ToValidUTF8(string(b), "�") == string(b)
}

// SHA256 returns the 32-byte SHA-256 digest of data.
func SHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// GzipCompress gzip-compresses data.
func GzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, model.WrapOp("gzipCompress", model.ErrEncoding, err)
	}
	if err := w.Close(); err != nil {
		return nil, model.WrapOp("gzipCompress", model.ErrEncoding, err)
	}
	return buf.Bytes(), nil
}

// GzipDecompress gzip-decompresses data.
func GzipDecompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, model.WrapOp("gzipDecompress", model.ErrEncoding, err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, model.WrapOp("gzipDecompress", model.ErrEncoding, err)
	}
	return out, nil
}
