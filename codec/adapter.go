package codec

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/colorimage/colormgmt"
	"github.com/t2bot/colorimage/common"
	"github.com/t2bot/colorimage/common/rcontext"
	"github.com/t2bot/colorimage/formats"
	"github.com/t2bot/colorimage/metrics"
	"github.com/t2bot/colorimage/sink"
)

// Adapter binds an Engine to the PixelSink protocol and translates engine
// status codes into errors.
type Adapter struct {
	engine Engine
}

func NewAdapter(e Engine) *Adapter {
	return &Adapter{engine: e}
}

func (a *Adapter) Format() formats.ImageFormat {
	return a.engine.Format()
}

// Decode runs the engine over input, streaming rows into s. cm may be nil,
// in which case no colour management is applied. A failed decode returns a
// *common.NativeDecodeFailure (possibly wrapped); s may hold partial data
// afterwards.
func (a *Adapter) Decode(ctx rcontext.DecodeContext, input []byte, s sink.PixelSink, cm *colormgmt.Context) error {
	format := a.engine.Format()
	checked := sink.Enforce(s)

	colorManaged := cm != nil && sink.WantsColorManagement(checked)
	if colorManaged {
		release := cm.Borrow()
		defer release()
	} else {
		cm = nil
	}

	start := time.Now()
	h, err := a.engine.Init(colorManaged)
	if err != nil {
		a.countAttempt("init_failed")
		return errors.Wrap(&common.NativeDecodeFailure{Format: format.String(), Code: int(StatusInitFailed)}, err.Error())
	}
	defer a.engine.Cleanup(h)
	log := ctx.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	h.Log = log.WithFields(logrus.Fields{
		"format":       format.String(),
		"colorManaged": colorManaged,
	})

	status := a.engine.Decode(h, input, cm, CallbacksFor(checked))
	metrics.DecodeTime.With(prometheus.Labels{"format": format.String()}).Observe(time.Since(start).Seconds())
	if status != StatusOK {
		a.countAttempt("failed")
		failure := &common.NativeDecodeFailure{Format: format.String(), Code: int(status)}
		if h.Err != nil {
			h.Log.Debug("Decode failed: ", h.Err)
			return errors.Wrap(failure, h.Err.Error())
		}
		return failure
	}

	if !checked.Complete() {
		panic(&sink.ContractViolation{Message: format.String() + " engine reported success without delivering every row"})
	}
	a.countAttempt("ok")
	return nil
}

func (a *Adapter) countAttempt(result string) {
	metrics.DecodeAttempts.With(prometheus.Labels{
		"format": a.engine.Format().String(),
		"result": result,
	}).Inc()
}
