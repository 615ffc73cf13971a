package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBlocksRequestRoundTrip(t *testing.T) {
	req := DefaultGetBlocksRequest(42)
	encoded := EncodeGetBlocksRequest(req)

	c := newCursor(encoded)
	tag, err := c.varuint32()
	require.NoError(t, err)
	require.Equal(t, uint32(tagGetBlocksRequestV0), tag)

	start, err := c.u32()
	require.NoError(t, err)
	end, err := c.u32()
	require.NoError(t, err)
	maxInFlight, err := c.u32()
	require.NoError(t, err)
	haveCount, err := c.varuint32()
	require.NoError(t, err)
	irreversibleOnly, err := c.bool()
	require.NoError(t, err)
	fetchBlock, err := c.bool()
	require.NoError(t, err)
	fetchTraces, err := c.bool()
	require.NoError(t, err)
	fetchDeltas, err := c.bool()
	require.NoError(t, err)

	assert.Equal(t, req.StartBlockNum, start)
	assert.Equal(t, req.EndBlockNum, end)
	assert.Equal(t, req.MaxMessagesInFlight, maxInFlight)
	assert.Equal(t, uint32(0), haveCount)
	assert.Equal(t, req.IrreversibleOnly, irreversibleOnly)
	assert.Equal(t, req.FetchBlock, fetchBlock)
	assert.Equal(t, req.FetchTraces, fetchTraces)
	assert.Equal(t, req.FetchDeltas, fetchDeltas)
}

func TestEncodeGetStatusRequest(t *testing.T) {
	assert.Equal(t, []byte{tagGetStatusRequestV0}, EncodeGetStatusRequest())
}

func TestDecodeResultRequiresSchema(t *testing.T) {
	_, err := DecodeResult(nil, []byte{0})
	assert.ErrorIs(t, err, ErrSchemaNotLoaded)
}

func buildGetStatusResultFrame(head, lib BlockPosition, traceBegin, traceEnd, csBegin, csEnd uint32) []byte {
	out := []byte{tagGetStatusResultV0}
	out = putU32(out, head.BlockNum)
	out = append(out, head.BlockID[:]...)
	out = putU32(out, lib.BlockNum)
	out = append(out, lib.BlockID[:]...)
	out = putU32(out, traceBegin)
	out = putU32(out, traceEnd)
	out = putU32(out, csBegin)
	out = putU32(out, csEnd)
	return out
}

func TestDecodeResultGetStatus(t *testing.T) {
	schema, err := ParseSchema([]byte("some descriptor\x00trailer"))
	require.NoError(t, err)

	head := BlockPosition{BlockNum: 10}
	lib := BlockPosition{BlockNum: 8}
	frame := buildGetStatusResultFrame(head, lib, 1, 100, 1, 100)

	res, err := DecodeResult(schema, frame)
	require.NoError(t, err)
	require.NotNil(t, res.Status)
	assert.Equal(t, uint32(10), res.Status.Head.BlockNum)
	assert.Equal(t, uint32(8), res.Status.LastIrreversible.BlockNum)
	assert.Equal(t, uint32(1), res.Status.TraceBeginBlock)
	assert.Equal(t, uint32(100), res.Status.TraceEndBlock)
}

func TestDecodeResultUnsupportedVariant(t *testing.T) {
	schema, err := ParseSchema([]byte("d\x00"))
	require.NoError(t, err)
	_, err = DecodeResult(schema, []byte{7})
	assert.ErrorIs(t, err, ErrUnsupportedVariant)
}

func TestParseSchemaTruncatesAtNul(t *testing.T) {
	schema, err := ParseSchema([]byte("abc\x00garbage-after-nul"))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), schema.Raw())
}

func TestParseSchemaRejectsEmpty(t *testing.T) {
	_, err := ParseSchema([]byte{0})
	assert.Error(t, err)
}

func TestCursorTruncated(t *testing.T) {
	c := newCursor([]byte{1, 2})
	_, err := c.take(3)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestVaruint32RoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 127, 128, 300, 1 << 20, ^uint32(0)} {
		encoded := putVaruint32(nil, v)
		c := newCursor(encoded)
		got, err := c.varuint32()
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}
