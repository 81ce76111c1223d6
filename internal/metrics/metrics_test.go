package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveStage(t *testing.T) {
	before := testutil.CollectAndCount(StageDuration)
	ObserveStage("metrics_test", time.Now().Add(-time.Second))
	assert.Equal(t, before+1, testutil.CollectAndCount(StageDuration))
}

func TestPipelineRequestsTotal(t *testing.T) {
	c := PipelineRequestsTotal.WithLabelValues("text", OutcomeReplied)
	before := testutil.ToFloat64(c)
	c.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}
