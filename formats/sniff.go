package formats

import (
	"bytes"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
)

type signature struct {
	format ImageFormat
	magic  []byte
}

// Checked in order, first match wins.
var signatures = []signature{
	{Jpeg, []byte{0xff, 0xd8, 0xff}},
	{Png, []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}},
	{Gif, []byte("GIF89a")},
	{Gif, []byte("GIF87a")},
	{Bmp, []byte("BM")},
	{Tiff, []byte{'I', 'I', '*', 0}},
	{Tiff, []byte{'M', 'M', 0, '*'}},
}

// GuessFormat inspects the leading bytes of b. The second return value is
// false when no known signature matched, which callers should treat as a
// hint to try every decoder rather than as a failure.
func GuessFormat(b []byte) (ImageFormat, bool) {
	for _, s := range signatures {
		if len(b) < len(s.magic) {
			continue
		}
		if bytes.Equal(b[:len(s.magic)], s.magic) {
			return s.format, true
		}
	}

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		n := len(b)
		if n > 10 {
			n = 10
		}
		logrus.WithFields(logrus.Fields{
			"magic":    b[:n],
			"detected": mimetype.Detect(b).String(),
		}).Debug("Unknown magic number")
	}
	return 0, false
}
