package codec

import (
	"github.com/t2bot/colorimage/formats"
)

var adapters = make([]*Adapter, 0)

// Register makes e available to ForFormat. A later registration for the same
// format replaces the earlier one.
func Register(e Engine) {
	a := NewAdapter(e)
	for i, existing := range adapters {
		if existing.Format() == e.Format() {
			adapters[i] = a
			return
		}
	}
	adapters = append(adapters, a)
}

func ForFormat(f formats.ImageFormat) (*Adapter, bool) {
	for _, a := range adapters {
		if a.Format() == f {
			return a, true
		}
	}
	return nil, false
}

func SupportedFormats() []formats.ImageFormat {
	a := make([]formats.ImageFormat, 0, len(adapters))
	for _, d := range adapters {
		a = append(a, d.Format())
	}
	return a
}
