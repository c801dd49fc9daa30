package imagebuf

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/t2bot/colorimage/exif"
)

// fillRGB writes a width x height image where every pixel encodes its own
// coordinates: R = x, G = y, B = 7.
func fillRGB(t *testing.T, b Buffer, width int, height int) {
	b.InitSize(width, height)
	for y := 0; y < height; y++ {
		row := make([]byte, width*3)
		for x := 0; x < width; x++ {
			row[x*3], row[x*3+1], row[x*3+2] = byte(x), byte(y), 7
		}
		b.WriteRowRGB(y, row, width)
	}
	require.Equal(t, width, b.Width())
	require.Equal(t, height, b.Height())
}

func fillUniform(b Buffer, width int, height int, r byte, g byte, bl byte) {
	b.InitSize(width, height)
	row := make([]byte, width*3)
	for x := 0; x < width; x++ {
		row[x*3], row[x*3+1], row[x*3+2] = r, g, bl
	}
	for y := 0; y < height; y++ {
		b.WriteRowRGB(y, row, width)
	}
}

func orientationPayload(o exif.Orientation) []byte {
	b := []byte("Exif\x00\x00MM\x00\x2a")
	b = binary.BigEndian.AppendUint32(b, 8)
	b = binary.BigEndian.AppendUint16(b, 1)
	b = binary.BigEndian.AppendUint16(b, 0x0112)
	b = binary.BigEndian.AppendUint16(b, 3)
	b = binary.BigEndian.AppendUint32(b, 1)
	b = binary.BigEndian.AppendUint16(b, uint16(o))
	b = append(b, 0, 0, 0, 0, 0, 0)
	return b
}

func dump(t *testing.T, b Buffer) []byte {
	out := make([]byte, b.Width()*b.Height()*b.Channels())
	n, err := b.DumpInterleaved(out)
	require.NoError(t, err)
	require.Equal(t, len(out), n)
	return out
}

func pixelAt(b Buffer, pix []byte, x int, y int) (byte, byte, byte) {
	o := (y*b.Width() + x) * b.Channels()
	return pix[o], pix[o+1], pix[o+2]
}

func buffers() map[string]func() Buffer {
	return map[string]func() Buffer{
		"color":  func() Buffer { return NewColorImage() },
		"raster": func() Buffer { return NewRasterImage() },
	}
}
