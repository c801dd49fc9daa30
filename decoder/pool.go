package decoder

import (
	"fmt"
	"sync"

	"github.com/Jeffail/tunny"
	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/colorimage/colormgmt"
	"github.com/t2bot/colorimage/common/config"
	"github.com/t2bot/colorimage/common/rcontext"
	"github.com/t2bot/colorimage/sink"
)

type job struct {
	ctx   rcontext.DecodeContext
	input []byte
	sink  sink.PixelSink
}

type result struct {
	err      error
	panicked interface{}
}

// Pool runs decodes on a fixed set of workers. Each worker owns its own
// colour management context, created on its first job and closed when the
// worker is terminated.
type Pool struct {
	pool *tunny.Pool

	lock    sync.RWMutex
	decoder *Decoder
}

func NewPool(c config.DecodeConfig) *Pool {
	return NewPoolWithContexts(New(c), c.NumWorkers, colormgmt.NewDefault)
}

// NewPoolWithContexts creates a pool of workers running d, each calling
// newContext at most once.
func NewPoolWithContexts(d *Decoder, workers int, newContext func() (*colormgmt.Context, error)) *Pool {
	if workers <= 0 {
		workers = 1
	}
	p := &Pool{decoder: d}
	p.pool = tunny.New(workers, func() tunny.Worker {
		return &worker{owner: p, newContext: newContext}
	})
	return p
}

func (p *Pool) current() *Decoder {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.decoder
}

// Decode blocks until a worker has decoded b into s. A panic raised by the
// decode is reported and then re-raised on the calling goroutine.
func (p *Pool) Decode(ctx rcontext.DecodeContext, b []byte, s sink.PixelSink) error {
	res := p.pool.Process(&job{ctx: ctx, input: b, sink: s}).(*result)
	if res.panicked != nil {
		panic(res.panicked)
	}
	return res.err
}

func (p *Pool) Workers() int {
	return p.pool.GetSize()
}

// Resize changes the number of workers. Removed workers close their colour
// contexts.
func (p *Pool) Resize(workers int) {
	if workers <= 0 {
		workers = 1
	}
	p.pool.SetSize(workers)
}

// WatchConfig keeps the pool in line with the decoding config. Decodes
// already running finish with the settings they started with.
func (p *Pool) WatchConfig() {
	config.OnReload(p.applyConfig)
}

func (p *Pool) applyConfig(old *config.MainConfig, new *config.MainConfig) {
	d := New(new.Decoding)
	p.lock.Lock()
	d.adapterFor = p.decoder.adapterFor
	p.decoder = d
	p.lock.Unlock()

	if old.Decoding.NumWorkers != new.Decoding.NumWorkers {
		logrus.Infof("Resizing decode pool to %d workers", new.Decoding.NumWorkers)
		p.Resize(new.Decoding.NumWorkers)
	}
}

func (p *Pool) Close() {
	logrus.Warn("Closing decode pool")
	p.pool.Close()
}

type worker struct {
	owner      *Pool
	newContext func() (*colormgmt.Context, error)
	cm         *colormgmt.Context
	cmFailed   bool
}

func (w *worker) Process(payload interface{}) interface{} {
	j := payload.(*job)
	res := &result{}
	func() {
		defer func() {
			if r := recover(); r != nil {
				logrus.Error("Panic from decode worker")
				logrus.Error(r)
				//goland:noinspection GoTypeAssertionOnErrors
				if e, ok := r.(error); ok {
					sentry.CaptureException(e)
				} else {
					sentry.CaptureException(fmt.Errorf("%v", r))
				}
				res.panicked = r
			}
		}()
		d := w.owner.current()
		res.err = d.Decode(j.ctx, j.input, j.sink, w.colorContext(d))
	}()
	return res
}

func (w *worker) colorContext(d *Decoder) *colormgmt.Context {
	if !d.ColorManagement || w.cmFailed {
		return nil
	}
	if w.cm == nil {
		cm, err := w.newContext()
		if err != nil {
			// Decode unmanaged for the rest of this worker's life
			w.cmFailed = true
			sentry.CaptureException(err)
			logrus.Warn("Unable to create colour management context: ", err)
			return nil
		}
		w.cm = cm
	}
	return w.cm
}

func (w *worker) BlockUntilReady() {
}

func (w *worker) Interrupt() {
}

func (w *worker) Terminate() {
	if w.cm != nil {
		w.cm.Close()
		w.cm = nil
	}
}
