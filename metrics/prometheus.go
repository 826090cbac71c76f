package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap/zapcore"
)

const (
	// prometheus default namespace
	namespace = "respio"

	// prometheus default label keys
	command   = "command"
	labelName = "level"
)

var (
	commandLabel = []string{command}

	// global prometheus object
	gm *Metrics
)

// Metrics prometheus statistics
type Metrics struct {
	// connections
	ConnectionOnlineGauge prometheus.Gauge

	// commands
	CommandCallHistogramVec  *prometheus.HistogramVec
	UnknownCommandCounterVec *prometheus.CounterVec
	CapturedCommandCounter   prometheus.Counter

	// protocol
	ProtocolErrorCounter prometheus.Counter

	// logger
	LogMetricsCounterVec *prometheus.CounterVec
}

// init create global object
func init() {
	gm = &Metrics{}

	gm.CommandCallHistogramVec = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_call_seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 20),
			Help:      "The cost times of command call",
		}, commandLabel)
	prometheus.MustRegister(gm.CommandCallHistogramVec)

	gm.UnknownCommandCounterVec = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_commands_total",
			Help:      "The total of commands rejected by the dispatch table",
		}, commandLabel)
	prometheus.MustRegister(gm.UnknownCommandCounterVec)

	gm.CapturedCommandCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "captured_commands_total",
			Help:      "The total of commands routed to an active transaction handler",
		})
	prometheus.MustRegister(gm.CapturedCommandCounter)

	gm.ConnectionOnlineGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connect_online_number",
			Help:      "The number of online connections",
		})
	prometheus.MustRegister(gm.ConnectionOnlineGauge)

	gm.ProtocolErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_errors_total",
			Help:      "The total of connections torn down on protocol desync",
		})
	prometheus.MustRegister(gm.ProtocolErrorCounter)

	gm.LogMetricsCounterVec = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logs_entries_total",
			Help:      "Number of logs of certain level",
		},
		[]string{labelName},
	)
	prometheus.MustRegister(gm.LogMetricsCounterVec)

	http.Handle("/respio/metrics", promhttp.Handler())
}

// GetMetrics return metrics object
func GetMetrics() *Metrics {
	return gm
}

// Measure counts log entries by logger name and level
func Measure(e zapcore.Entry) error {
	label := e.LoggerName + "_" + e.Level.String()
	gm.LogMetricsCounterVec.WithLabelValues(label).Inc()
	return nil
}
