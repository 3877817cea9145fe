package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveSend(t *testing.T) {
	before := testutil.ToFloat64(EventsSent.WithLabelValues("Purchase", OutcomeSuccess))

	ObserveSend("Purchase", OutcomeSuccess, time.Now())
	ObserveSend("Purchase", OutcomeSuccess, time.Now())

	assert.Equal(t, before+2, testutil.ToFloat64(EventsSent.WithLabelValues("Purchase", OutcomeSuccess)))
	assert.Equal(t, float64(0), testutil.ToFloat64(EventsSent.WithLabelValues("Purchase", OutcomeTransport)))
}
