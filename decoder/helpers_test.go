package decoder

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/t2bot/colorimage/codec"
	"github.com/t2bot/colorimage/colormgmt"
	"github.com/t2bot/colorimage/common/config"
	"github.com/t2bot/colorimage/common/rcontext"
	"github.com/t2bot/colorimage/formats"
	"github.com/t2bot/colorimage/sink"
)

func testContext() rcontext.DecodeContext {
	return rcontext.New(logrus.WithField("test", true))
}

// recordingAdapters wraps the registered adapters (or scripted ones) and
// records the order formats were attempted in.
type recordingAdapters struct {
	lock     sync.Mutex
	attempts []formats.ImageFormat
	scripted map[formats.ImageFormat]func(s sink.PixelSink) error
}

type recordingAdapter struct {
	parent *recordingAdapters
	format formats.ImageFormat
	inner  Adapter
}

func (a *recordingAdapter) Format() formats.ImageFormat {
	return a.format
}

func (a *recordingAdapter) Decode(ctx rcontext.DecodeContext, input []byte, s sink.PixelSink, cm *colormgmt.Context) error {
	a.parent.lock.Lock()
	a.parent.attempts = append(a.parent.attempts, a.format)
	fn := a.parent.scripted[a.format]
	a.parent.lock.Unlock()
	if fn != nil {
		return fn(s)
	}
	return a.inner.Decode(ctx, input, s, cm)
}

func (r *recordingAdapters) lookup(f formats.ImageFormat) (Adapter, bool) {
	if _, ok := r.scripted[f]; ok {
		return &recordingAdapter{parent: r, format: f}, true
	}
	a, ok := codec.ForFormat(f)
	if !ok {
		return nil, false
	}
	return &recordingAdapter{parent: r, format: f, inner: a}, true
}

func (r *recordingAdapters) tried() []formats.ImageFormat {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]formats.ImageFormat{}, r.attempts...)
}

func testDecoder(c config.DecodeConfig) (*Decoder, *recordingAdapters) {
	r := &recordingAdapters{scripted: make(map[formats.ImageFormat]func(s sink.PixelSink) error)}
	d := New(c)
	d.adapterFor = r.lookup
	return d, r
}

func sample(width int, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 20), G: uint8(y * 20), B: 90, A: 255})
		}
	}
	return img
}

func encodePng(t *testing.T, img image.Image) []byte {
	b := &bytes.Buffer{}
	require.NoError(t, png.Encode(b, img))
	return b.Bytes()
}

func encodeJpeg(t *testing.T, img image.Image) []byte {
	b := &bytes.Buffer{}
	require.NoError(t, jpeg.Encode(b, img, &jpeg.Options{Quality: 95}))
	return b.Bytes()
}

// withOrientation inserts an APP1 exif segment carrying o right after SOI.
func withOrientation(jpg []byte, o uint16) []byte {
	payload := []byte("Exif\x00\x00II\x2a\x00")
	payload = binary.LittleEndian.AppendUint32(payload, 8)
	payload = binary.LittleEndian.AppendUint16(payload, 1)
	payload = binary.LittleEndian.AppendUint16(payload, 0x0112)
	payload = binary.LittleEndian.AppendUint16(payload, 3)
	payload = binary.LittleEndian.AppendUint32(payload, 1)
	payload = binary.LittleEndian.AppendUint16(payload, o)
	payload = append(payload, 0, 0, 0, 0, 0, 0)

	segment := []byte{0xFF, 0xE1}
	segment = binary.BigEndian.AppendUint16(segment, uint16(len(payload)+2))
	segment = append(segment, payload...)

	out := append([]byte{}, jpg[:2]...)
	out = append(out, segment...)
	return append(out, jpg[2:]...)
}

type countingColorEngine struct {
	colormgmt.SRGBEngine
	lock     sync.Mutex
	inits    int
	cleanups int
}

func (e *countingColorEngine) InitDefault() (colormgmt.Handle, error) {
	e.lock.Lock()
	e.inits++
	e.lock.Unlock()
	return e.SRGBEngine.InitDefault()
}

func (e *countingColorEngine) Cleanup(h colormgmt.Handle) {
	e.lock.Lock()
	e.cleanups++
	e.lock.Unlock()
}

func (e *countingColorEngine) counts() (int, int) {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.inits, e.cleanups
}
