/* metrics.go
 * Contains the prometheus collectors of the watcher. Collectors are registered on the registry passed in by main, so
 * tests can use their own registry. A nil *Metrics is valid and records nothing
 */

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "league_watcher"

// Metrics holds the collectors shared by every league
type Metrics struct {
	EventsReceived  *prometheus.CounterVec
	Dispositions    *prometheus.CounterVec
	StreamStarts    *prometheus.CounterVec
	Backoffs        *prometheus.CounterVec
	DecodeErrors    *prometheus.CounterVec
	RefreshFailures *prometheus.CounterVec
	WatchedPlayers  *prometheus.GaugeVec
	ProcessDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EventsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_received_total",
			Help:      "Number of game events decoded from the feed",
		}, []string{"league"}),
		Dispositions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispositions_total",
			Help:      "Number of processed events by disposition",
		}, []string{"league", "disposition"}),
		StreamStarts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_starts_total",
			Help:      "Number of feed connections opened",
		}, []string{"league"}),
		Backoffs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_backoffs_total",
			Help:      "Number of times the reconnect guard cleared the watch list",
		}, []string{"league"}),
		DecodeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Number of feed chunks that could not be decoded",
		}, []string{"league"}),
		RefreshFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_failures_total",
			Help:      "Number of failed pairing refreshes",
		}, []string{"league"}),
		WatchedPlayers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "watched_players",
			Help:      "Number of players currently subscribed on the feed",
		}, []string{"league"}),
		ProcessDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "process_duration_seconds",
			Help:      "Time spent refreshing pairings and classifying one event",
			Buckets:   prometheus.DefBuckets,
		}, []string{"league"}),
	}
}

func (m *Metrics) EventReceived(league string) {
	if m == nil {
		return
	}
	m.EventsReceived.WithLabelValues(league).Inc()
}

func (m *Metrics) Disposition(league, disposition string) {
	if m == nil {
		return
	}
	m.Dispositions.WithLabelValues(league, disposition).Inc()
}

func (m *Metrics) StreamStarted(league string) {
	if m == nil {
		return
	}
	m.StreamStarts.WithLabelValues(league).Inc()
}

func (m *Metrics) BackedOff(league string) {
	if m == nil {
		return
	}
	m.Backoffs.WithLabelValues(league).Inc()
}

func (m *Metrics) DecodeFailed(league string) {
	if m == nil {
		return
	}
	m.DecodeErrors.WithLabelValues(league).Inc()
}

func (m *Metrics) RefreshFailed(league string) {
	if m == nil {
		return
	}
	m.RefreshFailures.WithLabelValues(league).Inc()
}

func (m *Metrics) SetWatched(league string, n int) {
	if m == nil {
		return
	}
	m.WatchedPlayers.WithLabelValues(league).Set(float64(n))
}

// ObserveProcess records how long one event took, measured from start
func (m *Metrics) ObserveProcess(league string, start time.Time) {
	if m == nil {
		return
	}
	m.ProcessDuration.WithLabelValues(league).Observe(time.Since(start).Seconds())
}
