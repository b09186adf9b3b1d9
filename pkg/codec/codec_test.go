package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestB64URLRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: []byte{}},
		{name: "ascii", data: []byte("hello world")},
		{name: "binary", data: []byte{0x00, 0xff, 0x10, 0x42, 0xde, 0xad, 0xbe, 0xef}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := B64URLEncode(tt.data)
			assert.NotContains(t, enc, "=")

			dec, err := B64URLDecode(enc)
			require.NoError(t, err)
			assert.Equal(t, tt.data, dec)
		})
	}
}

func TestB64URLDecodeInvalid(t *testing.T) {
	_, err := B64URLDecode("not base64!!!")
	assert.Error(t, err)
}

func TestHexRoundTrip(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0xab, 0xcd}

	assert.Equal(t, "010203abcd", HexEncode(data, false))
	assert.Equal(t, "0x010203abcd", HexEncode(data, true))

	dec, err := HexDecode("0x010203abcd")
	require.NoError(t, err)
	assert.Equal(t, data, dec)

	dec, err = HexDecode("010203abcd")
	require.NoError(t, err)
	assert.Equal(t, data, dec)
}

func TestHexDecodeInvalid(t *testing.T) {
	_, err := HexDecode("0xzz")
	assert.Error(t, err)
}

func TestUTF8RoundTrip(t *testing.T) {
	s := "hello, 世界"
	b := UTF8Encode(s)
	back, err := UTF8Decode(b)
	require.NoError(t, err)
	assert.Equal(t, s, back)
}

func TestSHA256(t *testing.T) {
	digest := SHA256([]byte("abc"))
	assert.Len(t, digest, 32)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", HexEncode(digest[:], false))
}

func TestGzipRoundTrip(t *testing.T) {
	tests := [][]byte{
		{},
		[]byte("hello world"),
		make([]byte, 131072/8),
	}

	for _, data := range tests {
		compressed, err := GzipCompress(data)
		require.NoError(t, err)

		decompressed, err := GzipDecompress(compressed)
		require.NoError(t, err)
		assert.Equal(t, data, decompressed)
	}
}

func TestGzipDecompressInvalid(t *testing.T) {
	_, err := GzipDecompress([]byte{0x00, 0x01, 0x02})
	assert.Error(t, err)
}
