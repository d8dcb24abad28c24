package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result labels of the verification counter.
const (
	ResultValid     = "valid"
	ResultInvalid   = "invalid"
	ResultMalformed = "malformed"
	ResultMissing   = "missing"
)

// Verification holds the metrics of beacon verification runs.
type Verification struct {
	// Verifications counts verified rounds by result
	Verifications *prometheus.CounterVec
	// Duration is how long the verification of a single round takes
	Duration prometheus.Histogram
	// LastVerifiedRound is the highest round found valid
	LastVerifiedRound prometheus.Gauge

	mu        sync.Mutex
	lastRound uint64
}

// NewVerification creates the verification metrics and registers them on reg.
func NewVerification(reg prometheus.Registerer) (*Verification, error) {
	v := &Verification{
		Verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_verifications_total",
			Help: "Number of beacons verified, by result",
		}, []string{"result"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "beacon_verification_duration_seconds",
			Help:    "Duration of the verification of one beacon",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 10),
		}),
		LastVerifiedRound: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "last_verified_round",
			Help: "Highest round found valid",
		}),
	}

	for _, c := range []prometheus.Collector{v.Verifications, v.Duration, v.LastVerifiedRound} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering verification metrics: %w", err)
		}
	}
	// exposes every result, even the ones that did not happen
	for _, r := range []string{ResultValid, ResultInvalid, ResultMalformed, ResultMissing} {
		v.Verifications.WithLabelValues(r)
	}
	return v, nil
}

// Observe records the outcome of the verification of a round. It is safe to
// call on a nil *Verification.
func (v *Verification) Observe(round uint64, result string, took time.Duration) {
	if v == nil {
		return
	}
	v.Verifications.WithLabelValues(result).Inc()
	if result == ResultMissing {
		return
	}
	v.Duration.Observe(took.Seconds())
	if result == ResultValid {
		v.updateLastRound(round)
	}
}

func (v *Verification) updateLastRound(round uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	// rounds complete out of order on the worker pool
	if round > v.lastRound {
		v.lastRound = round
		v.LastVerifiedRound.Set(float64(round))
	}
}

// WriteTextfile writes the gathered metrics in the text exposition format, for
// the textfile collector of the node exporter.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
