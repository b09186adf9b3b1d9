package revocation

import (
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dc4eu/didengine/pkg/codec"
	"github.com/dc4eu/didengine/pkg/model"
)

func TestNewIsAllZero(t *testing.T) {
	b := New()
	for _, i := range []int{0, 1, 4096, BitsSize - 1} {
		v, err := b.Get(i)
		require.NoError(t, err)
		assert.False(t, v)
	}
}

func TestSetGet(t *testing.T) {
	b := New()

	for _, i := range []int{0, 1, 7, 8, 4095, BitsSize - 1} {
		require.NoError(t, b.Set(i, true))
		v, err := b.Get(i)
		require.NoError(t, err)
		assert.True(t, v)

		require.NoError(t, b.Set(i, false))
		v, err = b.Get(i)
		require.NoError(t, err)
		assert.False(t, v)
	}
}

func TestSetGetOutOfRange(t *testing.T) {
	b := New()

	_, err := b.Get(-1)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	_, err = b.Get(BitsSize)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	assert.ErrorIs(t, b.Set(-1, true), model.ErrInvalidArgument)
	assert.ErrorIs(t, b.Set(BitsSize, true), model.ErrInvalidArgument)
}

func TestFromBytesToBytesRoundTrip(t *testing.T) {
	b := New()
	require.NoError(t, b.Set(0, true))
	require.NoError(t, b.Set(BitsSize-1, true))

	raw := b.ToBytes()
	assert.Len(t, raw, BitsSize/8)
	// bit 0 is the MSB of the first byte.
	assert.Equal(t, byte(0x80), raw[0])

	reconstructed, err := FromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, reconstructed.ToBytes())
}

func TestFromBytesWrongLength(t *testing.T) {
	_, err := FromBytes([]byte{1, 2, 3})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestServiceEndpointRoundTrip(t *testing.T) {
	b := New()
	require.NoError(t, b.Set(42, true))
	require.NoError(t, b.Set(BitsSize-1, true))

	endpoint, err := b.EncodeToServiceEndpoint()
	require.NoError(t, err)
	assert.Contains(t, endpoint, dataURLPrefix)

	decoded, err := DecodeFromServiceEndpoint(endpoint)
	require.NoError(t, err)
	assert.Equal(t, b.ToBytes(), decoded.ToBytes())

	v, err := decoded.Get(42)
	require.NoError(t, err)
	assert.True(t, v)
}

func TestDecodeFromServiceEndpointMalformed(t *testing.T) {
	_, err := DecodeFromServiceEndpoint("not-a-data-url-no-comma")
	assert.ErrorIs(t, err, model.ErrEncoding)

	_, err = DecodeFromServiceEndpoint(dataURLPrefix + "!!!not-base64!!!")
	assert.ErrorIs(t, err, model.ErrEncoding)
}

func TestEncodeToServiceEndpointUsesCBOREnvelope(t *testing.T) {
	b := New()
	require.NoError(t, b.Set(0, true))

	endpoint, err := b.EncodeToServiceEndpoint()
	require.NoError(t, err)

	_, payload, found := strings.Cut(endpoint, ",")
	require.True(t, found)

	compressed, err := codec.B64URLDecode(payload)
	require.NoError(t, err)
	raw, err := codec.GzipDecompress(compressed)
	require.NoError(t, err)

	var envelope bitstringEnvelope
	require.NoError(t, cbor.Unmarshal(raw, &envelope))
	assert.Equal(t, BitsSize, envelope.Bits)
	assert.Equal(t, envelopePurpose, envelope.Purpose)
	assert.Equal(t, b.ToBytes(), envelope.Lst)
}

func TestDecodeFromServiceEndpointRejectsWrongBitCount(t *testing.T) {
	encoded, err := cbor.Marshal(bitstringEnvelope{Bits: 8, Lst: []byte{0x01}, Purpose: envelopePurpose})
	require.NoError(t, err)
	compressed, err := codec.GzipCompress(encoded)
	require.NoError(t, err)
	endpoint := dataURLPrefix + codec.B64URLEncode(compressed)

	_, err = DecodeFromServiceEndpoint(endpoint)
	assert.ErrorIs(t, err, model.ErrEncoding)
}
