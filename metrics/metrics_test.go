package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveOutcome(t *testing.T) {
	before := testutil.ToFloat64(EngineOutcomes.WithLabelValues("session.start", "TableOccupied"))

	ObserveOutcome("session.start", "TableOccupied")
	ObserveOutcome("session.start", "TableOccupied")

	after := testutil.ToFloat64(EngineOutcomes.WithLabelValues("session.start", "TableOccupied"))
	assert.Equal(t, before+2, after)
}

func TestObserveError(t *testing.T) {
	before := testutil.ToFloat64(EngineErrors.WithLabelValues("request.create"))
	ObserveError("request.create")
	assert.Equal(t, before+1, testutil.ToFloat64(EngineErrors.WithLabelValues("request.create")))
}
