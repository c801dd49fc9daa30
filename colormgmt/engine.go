package colormgmt

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/t2bot/colorimage/sink"
)

// Handle identifies the engine-side state of one Context.
type Handle uint64

// Transform converts pixels from an embedded profile into the output profile
// of the Context it was built by. dst and src hold pixels rows of the layout
// the transform was created for and may be the same slice.
type Transform interface {
	Apply(dst []byte, src []byte, pixels int)
	Layout() sink.Layout
}

// Engine is the colour management module behind a Context.
type Engine interface {
	InitDefault() (Handle, error)
	NewTransform(h Handle, profile []byte, layout sink.Layout) (Transform, error)
	Cleanup(h Handle)
}

// SRGBEngine targets sRGB output. It validates embedded profiles and returns
// identity transforms: profile maths belongs to an external CMM plugged in
// through Engine.
type SRGBEngine struct {
	lastHandle uint64
}

func (e *SRGBEngine) InitDefault() (Handle, error) {
	return Handle(atomic.AddUint64(&e.lastHandle, 1)), nil
}

func (e *SRGBEngine) NewTransform(h Handle, profile []byte, layout sink.Layout) (Transform, error) {
	if h == 0 {
		return nil, errors.New("icc: engine not initialized")
	}
	header, err := ParseProfileHeader(profile)
	if err != nil {
		return nil, err
	}
	if !header.ColorSpace.Supports(layout) {
		return nil, errors.Wrapf(ErrProfileMismatch, "%q profile for %s rows", string(header.ColorSpace), layout)
	}
	return identityTransform{layout: layout}, nil
}

func (e *SRGBEngine) Cleanup(h Handle) {
}

type identityTransform struct {
	layout sink.Layout
}

func (t identityTransform) Apply(dst []byte, src []byte, pixels int) {
	n := pixels * t.layout.Channels()
	if n <= 0 {
		return
	}
	if &dst[0] != &src[0] {
		copy(dst[:n], src[:n])
	}
}

func (t identityTransform) Layout() sink.Layout {
	return t.layout
}
