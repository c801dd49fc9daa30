package decoder

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/ryanuber/go-glob"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/colorimage/codec"
	"github.com/t2bot/colorimage/colormgmt"
	"github.com/t2bot/colorimage/common"
	"github.com/t2bot/colorimage/common/config"
	"github.com/t2bot/colorimage/common/rcontext"
	"github.com/t2bot/colorimage/formats"
	"github.com/t2bot/colorimage/metrics"
	"github.com/t2bot/colorimage/sink"
)

// FallbackOrder is the order formats are tried in once the sniffed format
// (if any) has failed.
var FallbackOrder = []formats.ImageFormat{formats.Jpeg, formats.Png}

// Adapter decodes a single format into a sink.
type Adapter interface {
	Format() formats.ImageFormat
	Decode(ctx rcontext.DecodeContext, input []byte, s sink.PixelSink, cm *colormgmt.Context) error
}

type orientable interface {
	ApplyOrientation() error
}

type Attempt struct {
	Format formats.ImageFormat
	Err    error
}

// AllFormatsFailedError is returned when no attempted format could decode
// the input. It matches common.ErrAllFormatsFailed.
type AllFormatsFailedError struct {
	Attempts []Attempt
}

func (e *AllFormatsFailedError) Error() string {
	if len(e.Attempts) == 0 {
		return common.ErrAllFormatsFailed.Error()
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Format, a.Err))
	}
	return fmt.Sprintf("%s (%s)", common.ErrAllFormatsFailed.Error(), strings.Join(parts, "; "))
}

func (e *AllFormatsFailedError) Is(target error) bool {
	return target == common.ErrAllFormatsFailed
}

type Decoder struct {
	MaxInputBytes   int64
	MaxPixels       int
	ColorManagement bool
	PartialResults  bool
	AutoOrient      bool

	// AllowedTypes are content type globs. Formats not matching any of them
	// are treated as unsupported. Empty allows everything.
	AllowedTypes []string

	adapterFor func(f formats.ImageFormat) (Adapter, bool)
}

func New(c config.DecodeConfig) *Decoder {
	return &Decoder{
		MaxInputBytes:   c.MaxInputBytes,
		MaxPixels:       c.MaxPixels,
		ColorManagement: c.ColorManagement,
		PartialResults:  c.PartialResults,
		AutoOrient:      c.AutoOrient,
		AllowedTypes:    c.AllowedTypes,
		adapterFor:      registeredAdapter,
	}
}

func registeredAdapter(f formats.ImageFormat) (Adapter, bool) {
	a, ok := codec.ForFormat(f)
	if !ok {
		return nil, false
	}
	return a, true
}

// Decode fills s from b. The sniffed format is tried first, followed by
// every format in FallbackOrder that was not tried yet. Unless
// PartialResults is set, s is reset when no format succeeds. cm may be nil.
func (d *Decoder) Decode(ctx rcontext.DecodeContext, b []byte, s sink.PixelSink, cm *colormgmt.Context) error {
	if ctx.Context == nil {
		ctx = rcontext.New(ctx.Log)
	} else if ctx.Log == nil {
		ctx = ctx.ReplaceLogger(logrus.NewEntry(logrus.StandardLogger()))
	}
	if !d.ColorManagement {
		cm = nil
	}

	if d.MaxInputBytes > 0 && int64(len(b)) > d.MaxInputBytes {
		ctx.Log.Warnf("Input of %s exceeds limit of %s", humanize.Bytes(uint64(len(b))), humanize.Bytes(uint64(d.MaxInputBytes)))
		return common.ErrMediaTooLarge
	}
	if d.MaxPixels > 0 {
		if info, err := formats.Probe(b); err == nil && info.Pixels() >= d.MaxPixels {
			ctx.Log.Warnf("Image of %dx%d exceeds pixel limit of %s", info.Width, info.Height, humanize.Comma(int64(d.MaxPixels)))
			return common.ErrMediaTooLarge
		}
	}

	sniffed, known := formats.GuessFormat(b)
	sniffedLabel := "none"
	candidates := make([]formats.ImageFormat, 0, len(FallbackOrder)+1)
	if known {
		sniffedLabel = sniffed.String()
		candidates = append(candidates, sniffed)
	}
	candidates = append(candidates, FallbackOrder...)

	tried := make(map[formats.ImageFormat]bool)
	attempts := make([]Attempt, 0, len(candidates))
	for _, f := range candidates {
		if tried[f] {
			continue
		}
		tried[f] = true

		if err := ctx.Err(); err != nil {
			s.Reset()
			return errors.Wrap(err, "decode abandoned")
		}

		if len(attempts) > 0 {
			metrics.DecodeFallbacks.With(prometheus.Labels{"sniffed": sniffedLabel}).Inc()
		}

		err := d.attempt(ctx, f, b, s, cm)
		if err == nil {
			metrics.DecodeResults.With(prometheus.Labels{"sniffed": sniffedLabel, "decoded": f.String()}).Inc()
			d.orient(ctx, s)
			return nil
		}
		ctx.Log.WithField("format", f.String()).Debug("Decode attempt failed: ", err)
		attempts = append(attempts, Attempt{Format: f, Err: err})
	}

	metrics.DecodeResults.With(prometheus.Labels{"sniffed": sniffedLabel, "decoded": "none"}).Inc()
	if !d.PartialResults {
		s.Reset()
	}
	return &AllFormatsFailedError{Attempts: attempts}
}

func (d *Decoder) attempt(ctx rcontext.DecodeContext, f formats.ImageFormat, b []byte, s sink.PixelSink, cm *colormgmt.Context) error {
	if !d.allowed(f) {
		return errors.Wrapf(common.ErrUnsupportedFormat, "%s is not an allowed type", f.ContentType())
	}
	lookup := d.adapterFor
	if lookup == nil {
		lookup = registeredAdapter
	}
	a, ok := lookup(f)
	if !ok {
		return common.ErrUnsupportedFormat
	}

	s.Reset()
	start := time.Now()
	err := a.Decode(ctx.LogWithFields(logrus.Fields{"attemptFormat": f.String()}), b, s, cm)
	ctx.Log.WithField("format", f.String()).Debugf("Attempt finished in %s", time.Since(start))
	return err
}

func (d *Decoder) allowed(f formats.ImageFormat) bool {
	if len(d.AllowedTypes) == 0 {
		return true
	}
	for _, allowedType := range d.AllowedTypes {
		if glob.Glob(allowedType, f.ContentType()) {
			return true
		}
	}
	return false
}

func (d *Decoder) orient(ctx rcontext.DecodeContext, s sink.PixelSink) {
	if !d.AutoOrient {
		return
	}
	o, ok := s.(orientable)
	if !ok {
		return
	}
	if err := o.ApplyOrientation(); err != nil {
		ctx.Log.Warn("Unable to correct image orientation: ", err)
	}
}
