package codec

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/t2bot/colorimage/exif"
	"github.com/t2bot/colorimage/sink"
)

type capturedRow struct {
	layout sink.Layout
	index  int
	width  int
	data   []byte
}

type captureSink struct {
	width, height int
	inits         int
	rows          []capturedRow
	exifPayloads  [][]byte
	orientation   exif.Orientation
	managed       bool
}

func (s *captureSink) InitSize(width int, height int) {
	s.inits++
	s.width = width
	s.height = height
}

func (s *captureSink) add(l sink.Layout, row int, buf []byte, width int) {
	s.rows = append(s.rows, capturedRow{l, row, width, append([]byte{}, buf[:width*l.Channels()]...)})
}

func (s *captureSink) WriteRowGray(row int, buf []byte, width int) { s.add(sink.Gray, row, buf, width) }
func (s *captureSink) WriteRowGrayAlpha(row int, buf []byte, width int) {
	s.add(sink.GrayAlpha, row, buf, width)
}
func (s *captureSink) WriteRowRGB(row int, buf []byte, width int)  { s.add(sink.RGB, row, buf, width) }
func (s *captureSink) WriteRowRGBA(row int, buf []byte, width int) { s.add(sink.RGBA, row, buf, width) }

func (s *captureSink) ParseExif(payload []byte) exif.Orientation {
	s.exifPayloads = append(s.exifPayloads, payload)
	o, err := exif.ParseOrientation(payload)
	if err != nil {
		return exif.None
	}
	s.orientation = o
	return o
}

func (s *captureSink) Reset() {
	*s = captureSink{managed: s.managed}
}

func (s *captureSink) WantsColorManagement() bool {
	return s.managed
}

func gradient(w, h int, alpha bool) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint8(255)
			if alpha {
				a = uint8(50 + x)
			}
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 20), G: uint8(y * 20), B: 128, A: a})
		}
	}
	return img
}

func grayImage(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x*10 + y)})
		}
	}
	return img
}

func encodeJpeg(t *testing.T, img image.Image) []byte {
	buf := &bytes.Buffer{}
	require.NoError(t, jpeg.Encode(buf, img, &jpeg.Options{Quality: 95}))
	return buf.Bytes()
}

func encodePng(t *testing.T, img image.Image) []byte {
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

// insertSegment places a marker segment right after SOI.
func insertSegment(b []byte, marker byte, payload []byte) []byte {
	seg := []byte{0xff, marker, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	seg = append(seg, payload...)
	out := append([]byte{}, b[:2]...)
	out = append(out, seg...)
	return append(out, b[2:]...)
}

// insertChunk places a chunk right after IHDR.
func insertChunk(b []byte, typ string, data []byte) []byte {
	chunk := make([]byte, 4)
	binary.BigEndian.PutUint32(chunk, uint32(len(data)))
	chunk = append(chunk, typ...)
	chunk = append(chunk, data...)
	crc := crc32.NewIEEE()
	_, _ = crc.Write([]byte(typ))
	_, _ = crc.Write(data)
	chunk = binary.BigEndian.AppendUint32(chunk, crc.Sum32())

	ihdrEnd := 8 + 12 + 13
	out := append([]byte{}, b[:ihdrEnd]...)
	out = append(out, chunk...)
	return append(out, b[ihdrEnd:]...)
}

// tiffOrientation is the TIFF structure of an Exif block holding only an
// orientation tag, big endian.
func tiffOrientation(v uint16) []byte {
	b := []byte{'M', 'M', 0, '*', 0, 0, 0, 8, 0, 1}
	b = append(b, 0x01, 0x12, 0, 3, 0, 0, 0, 1)
	b = binary.BigEndian.AppendUint16(b, v)
	return append(b, 0, 0, 0, 0, 0, 0)
}

func exifPayload(v uint16) []byte {
	return append([]byte("Exif\x00\x00"), tiffOrientation(v)...)
}

func makeProfile(space string, size int) []byte {
	p := make([]byte, size)
	binary.BigEndian.PutUint32(p[0:4], uint32(size))
	copy(p[12:16], "mntr")
	copy(p[16:20], space)
	copy(p[20:24], "XYZ ")
	copy(p[36:40], "acsp")
	return p
}

func iccpChunk(t *testing.T, profile []byte) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("test profile")
	buf.WriteByte(0)
	buf.WriteByte(0)
	zw := zlib.NewWriter(buf)
	_, err := zw.Write(profile)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// insertAt splices extra bytes into b at offset.
func insertAt(b []byte, offset int, extra ...byte) []byte {
	out := append([]byte{}, b[:offset]...)
	out = append(out, extra...)
	return append(out, b[offset:]...)
}
