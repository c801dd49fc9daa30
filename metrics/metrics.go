package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var DecodeAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "image_decode_attempts_total",
}, []string{"format", "result"})
var DecodeResults = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "image_decodes_total",
}, []string{"sniffed", "decoded"})
var DecodeFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "image_decode_fallbacks_total",
}, []string{"sniffed"})
var DecodeTime = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Name: "image_decode_time_seconds",
}, []string{"format"})
var ExifFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "image_exif_failures_total",
}, []string{"reason"})
var ColorTransformsBuilt = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "image_color_transforms_built_total",
}, []string{"result"})
var ColorContextsLive = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "image_color_contexts_live",
})

func init() {
	prometheus.MustRegister(DecodeAttempts)
	prometheus.MustRegister(DecodeResults)
	prometheus.MustRegister(DecodeFallbacks)
	prometheus.MustRegister(DecodeTime)
	prometheus.MustRegister(ExifFailures)
	prometheus.MustRegister(ColorTransformsBuilt)
	prometheus.MustRegister(ColorContextsLive)
}
