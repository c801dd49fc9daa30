package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t2bot/colorimage/colormgmt"
	"github.com/t2bot/colorimage/common"
	"github.com/t2bot/colorimage/common/rcontext"
	"github.com/t2bot/colorimage/exif"
	"github.com/t2bot/colorimage/formats"
	"github.com/t2bot/colorimage/sink"
)

func testContext() rcontext.DecodeContext {
	return rcontext.New(nil)
}

func jpegAdapter(t *testing.T) *Adapter {
	a, ok := ForFormat(formats.Jpeg)
	require.True(t, ok)
	return a
}

func TestJpegColorRows(t *testing.T) {
	s := &captureSink{}
	err := jpegAdapter(t).Decode(testContext(), encodeJpeg(t, gradient(9, 6, false)), s, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, s.inits)
	assert.Equal(t, 9, s.width)
	assert.Equal(t, 6, s.height)
	require.Len(t, s.rows, 6)
	for i, r := range s.rows {
		assert.Equal(t, i, r.index)
		assert.Equal(t, sink.RGB, r.layout)
		assert.Equal(t, 9, r.width)
		assert.Len(t, r.data, 27)
	}
	assert.Empty(t, s.exifPayloads)
}

func TestJpegGrayRows(t *testing.T) {
	s := &captureSink{}
	err := jpegAdapter(t).Decode(testContext(), encodeJpeg(t, grayImage(5, 4)), s, nil)
	require.NoError(t, err)

	require.Len(t, s.rows, 4)
	for _, r := range s.rows {
		assert.Equal(t, sink.Gray, r.layout)
		assert.Len(t, r.data, 5)
	}
}

func TestJpegExifHandedVerbatim(t *testing.T) {
	payload := exifPayload(6)
	data := insertSegment(encodeJpeg(t, gradient(4, 4, false)), markerAPP1, payload)

	s := &captureSink{}
	require.NoError(t, jpegAdapter(t).Decode(testContext(), data, s, nil))
	require.Len(t, s.exifPayloads, 1)
	assert.Equal(t, payload, s.exifPayloads[0])
	assert.Equal(t, exif.Rotate90CW, s.orientation)
}

func TestJpegBadExifDoesNotFailDecode(t *testing.T) {
	payload := exifPayload(42)
	data := insertSegment(encodeJpeg(t, gradient(4, 4, false)), markerAPP1, payload)

	s := &captureSink{}
	require.NoError(t, jpegAdapter(t).Decode(testContext(), data, s, nil))
	assert.Len(t, s.exifPayloads, 1)
	assert.Equal(t, exif.None, s.orientation)
	assert.Len(t, s.rows, 4)
}

func TestJpegNotJpeg(t *testing.T) {
	s := &captureSink{}
	err := jpegAdapter(t).Decode(testContext(), encodePng(t, gradient(2, 2, false)), s, nil)
	require.Error(t, err)

	var failure *common.NativeDecodeFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, int(StatusBadHeader), failure.Code)
	assert.Equal(t, "jpeg", failure.Format)
	assert.Equal(t, 0, s.inits)
}

func TestJpegCorruptBody(t *testing.T) {
	data := encodeJpeg(t, gradient(16, 16, false))
	data = data[:len(data)/2]

	s := &captureSink{}
	err := jpegAdapter(t).Decode(testContext(), data, s, nil)
	var failure *common.NativeDecodeFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, int(StatusCorrupt), failure.Code)
}

func TestScanJpegMetadataAssemblesIcc(t *testing.T) {
	profile := makeProfile("RGB ", 300)
	chunk := func(seq, count byte, part []byte) []byte {
		p := append([]byte("ICC_PROFILE\x00"), seq, count)
		return append(p, part...)
	}
	data := encodeJpeg(t, gradient(4, 4, false))
	// inserted in reverse so the second chunk comes first in the file
	data = insertSegment(data, markerAPP2, chunk(2, 2, profile[100:]))
	data = insertSegment(data, markerAPP2, chunk(1, 2, profile[:100]))

	md, err := scanJpegMetadata(data)
	require.NoError(t, err)
	assert.NoError(t, md.iccErr)
	assert.Equal(t, profile, md.icc)
}

func TestScanJpegMetadataMissingIccChunk(t *testing.T) {
	data := encodeJpeg(t, gradient(4, 4, false))
	data = insertSegment(data, markerAPP2, append([]byte("ICC_PROFILE\x00\x01\x02"), 1, 2, 3))

	md, err := scanJpegMetadata(data)
	require.NoError(t, err)
	assert.Error(t, md.iccErr)
	assert.Nil(t, md.icc)
}

func TestScanJpegMetadataOverrun(t *testing.T) {
	_, err := scanJpegMetadata([]byte{0xff, 0xd8, 0xff, 0xe1, 0xff, 0xff, 'E'})
	assert.Error(t, err)

	_, err = scanJpegMetadata([]byte{0x00, 0x00})
	assert.Equal(t, errNotJpeg, err)
}

func TestJpegJunkBetweenSegments(t *testing.T) {
	jfif := []byte("JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	xmp := []byte("http://ns.adobe.com/xap/1.0/\x00<x:xmpmeta/>")
	payload := exifPayload(3)

	data := insertSegment(encodeJpeg(t, gradient(8, 8, false)), markerAPP1, payload)
	data = insertSegment(data, markerAPP1, xmp)
	data = insertSegment(data, 0xe0, jfif)
	// one stray byte right after APP0, then a pair before the Exif APP1
	app0End := 2 + 4 + len(jfif)
	data = insertAt(data, app0End, 0x00)
	xmpEnd := app0End + 1 + 4 + len(xmp)
	data = insertAt(data, xmpEnd, 0x12, 0x34)

	md, err := scanJpegMetadata(data)
	require.NoError(t, err)
	assert.Equal(t, payload, md.exif)

	s := &captureSink{}
	require.NoError(t, jpegAdapter(t).Decode(testContext(), data, s, nil))
	assert.Equal(t, 8, s.width)
	assert.Len(t, s.rows, 8)
	require.Len(t, s.exifPayloads, 1)
	assert.Equal(t, exif.Rotate180, s.orientation)
}

func TestJpegFillBytesBeforeMarker(t *testing.T) {
	data := encodeJpeg(t, gradient(4, 4, false))
	data = insertAt(data, 2, 0xff, 0xff)

	s := &captureSink{}
	require.NoError(t, jpegAdapter(t).Decode(testContext(), data, s, nil))
	assert.Len(t, s.rows, 4)
}

type countingColorEngine struct {
	colormgmt.SRGBEngine
	built []sink.Layout
}

func (e *countingColorEngine) NewTransform(h colormgmt.Handle, profile []byte, layout sink.Layout) (colormgmt.Transform, error) {
	e.built = append(e.built, layout)
	return e.SRGBEngine.NewTransform(h, profile, layout)
}

func TestJpegColorManagement(t *testing.T) {
	profile := makeProfile("RGB ", 200)
	data := insertSegment(encodeJpeg(t, gradient(4, 4, false)), markerAPP2, append(append([]byte("ICC_PROFILE\x00"), 1, 1), profile...))

	engine := &countingColorEngine{}
	cm, err := colormgmt.New(engine)
	require.NoError(t, err)
	defer cm.Close()

	// sinks that don't want colour management never see a transform
	require.NoError(t, jpegAdapter(t).Decode(testContext(), data, &captureSink{}, cm))
	assert.Empty(t, engine.built)

	s := &captureSink{managed: true}
	require.NoError(t, jpegAdapter(t).Decode(testContext(), data, s, cm))
	assert.Equal(t, []sink.Layout{sink.RGB}, engine.built)
	assert.Len(t, s.rows, 4)
	assert.False(t, cm.Borrowed())
}

func TestJpegUnusableProfileIsIgnored(t *testing.T) {
	profile := makeProfile("CMYK", 200)
	data := insertSegment(encodeJpeg(t, gradient(4, 4, false)), markerAPP2, append(append([]byte("ICC_PROFILE\x00"), 1, 1), profile...))

	cm, err := colormgmt.NewDefault()
	require.NoError(t, err)
	defer cm.Close()

	s := &captureSink{managed: true}
	require.NoError(t, jpegAdapter(t).Decode(testContext(), data, s, cm))
	assert.Len(t, s.rows, 4)
}
