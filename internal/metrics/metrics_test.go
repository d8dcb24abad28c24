package metrics

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestVerificationMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	v, err := NewVerification(reg)
	require.NoError(t, err)

	v.Observe(10, ResultValid, time.Millisecond)
	v.Observe(12, ResultValid, time.Millisecond)
	v.Observe(11, ResultValid, time.Millisecond)
	v.Observe(13, ResultInvalid, time.Millisecond)
	v.Observe(14, ResultMissing, 0)

	require.Equal(t, 3.0, testutil.ToFloat64(v.Verifications.WithLabelValues(ResultValid)))
	require.Equal(t, 1.0, testutil.ToFloat64(v.Verifications.WithLabelValues(ResultInvalid)))
	require.Equal(t, 0.0, testutil.ToFloat64(v.Verifications.WithLabelValues(ResultMalformed)))
	require.Equal(t, 1.0, testutil.ToFloat64(v.Verifications.WithLabelValues(ResultMissing)))
	require.Equal(t, 12.0, testutil.ToFloat64(v.LastVerifiedRound))

	m := &dto.Metric{}
	require.NoError(t, v.Duration.Write(m))
	require.Equal(t, uint64(4), m.GetHistogram().GetSampleCount())

	// all results are exposed from the start
	require.Equal(t, 4, testutil.CollectAndCount(v.Verifications))

	// registering twice on the same registry fails
	_, err = NewVerification(reg)
	require.Error(t, err)
}

func TestObserveNil(t *testing.T) {
	var v *Verification
	require.NotPanics(t, func() { v.Observe(1, ResultValid, time.Second) })
}

func TestObserveConcurrent(t *testing.T) {
	v, err := NewVerification(prometheus.NewRegistry())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 1; i <= 100; i++ {
		wg.Add(1)
		go func(round uint64) {
			defer wg.Done()
			v.Observe(round, ResultValid, time.Microsecond)
		}(uint64(i))
	}
	wg.Wait()

	require.Equal(t, 100.0, testutil.ToFloat64(v.Verifications.WithLabelValues(ResultValid)))
	require.Equal(t, 100.0, testutil.ToFloat64(v.LastVerifiedRound))
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	v, err := NewVerification(reg)
	require.NoError(t, err)
	v.Observe(367, ResultValid, 2*time.Millisecond)

	path := filepath.Join(t.TempDir(), "drand_verify.prom")
	require.NoError(t, WriteTextfile(path, reg))

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(out), `beacon_verifications_total{result="valid"} 1`)
	require.Contains(t, string(out), "last_verified_round 367")
	require.Contains(t, string(out), "beacon_verification_duration_seconds_count 1")
}
