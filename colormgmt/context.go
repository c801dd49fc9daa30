package colormgmt

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/colorimage/metrics"
	"github.com/t2bot/colorimage/sink"
)

var ErrClosed = errors.New("icc: colour management context is closed")

// Context owns one default output transform context. A Context belongs to a
// single worker and is lent to at most one decode at a time through Borrow.
type Context struct {
	engine     Engine
	handle     Handle
	transforms *cache.Cache
	borrowed   int32
	closed     int32
}

func NewDefault() (*Context, error) {
	return New(&SRGBEngine{})
}

func New(engine Engine) (*Context, error) {
	h, err := engine.InitDefault()
	if err != nil {
		return nil, errors.Wrap(err, "icc: error initializing default profile")
	}
	metrics.ColorContextsLive.Inc()
	return &Context{
		engine:     engine,
		handle:     h,
		transforms: cache.New(cache.NoExpiration, 0),
	}, nil
}

// Borrow marks the context as in use by one decode and returns the function
// that gives it back. Borrowing a context that is already lent out is a
// programming error and panics.
func (c *Context) Borrow() func() {
	if atomic.LoadInt32(&c.closed) != 0 {
		panic(ErrClosed)
	}
	if !atomic.CompareAndSwapInt32(&c.borrowed, 0, 1) {
		panic("icc: colour management context is already borrowed by another decode")
	}
	released := int32(0)
	return func() {
		if atomic.CompareAndSwapInt32(&released, 0, 1) {
			atomic.StoreInt32(&c.borrowed, 0)
		}
	}
}

func (c *Context) Borrowed() bool {
	return atomic.LoadInt32(&c.borrowed) != 0
}

// TransformFor returns the transform from profile into this context's output
// profile for rows of the given layout. Transforms are cached per profile.
func (c *Context) TransformFor(profile []byte, layout sink.Layout) (Transform, error) {
	if atomic.LoadInt32(&c.closed) != 0 {
		return nil, ErrClosed
	}

	sum := sha256.Sum256(profile)
	key := fmt.Sprintf("%s:%d", hex.EncodeToString(sum[:]), layout)
	if t, ok := c.transforms.Get(key); ok {
		return t.(Transform), nil
	}

	t, err := c.engine.NewTransform(c.handle, profile, layout)
	if err != nil {
		metrics.ColorTransformsBuilt.With(prometheus.Labels{"result": "failed"}).Inc()
		return nil, err
	}
	metrics.ColorTransformsBuilt.With(prometheus.Labels{"result": "ok"}).Inc()
	c.transforms.Set(key, t, cache.NoExpiration)
	return t, nil
}

// Close releases the engine state. Closing twice is harmless.
func (c *Context) Close() {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return
	}
	if c.Borrowed() {
		logrus.Warn("Closing a colour management context that is still borrowed")
	}
	c.transforms.Flush()
	c.engine.Cleanup(c.handle)
	metrics.ColorContextsLive.Dec()
}
