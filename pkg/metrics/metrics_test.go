package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAdmission(t *testing.T) {
	before := testutil.ToFloat64(AdmissionsTotal.WithLabelValues("text", "period_cap"))
	RecordAdmission("text", "period_cap")
	RecordAdmission("text", "period_cap")

	assert.Equal(t, before+2, testutil.ToFloat64(AdmissionsTotal.WithLabelValues("text", "period_cap")))
}

func TestRecordRequest(t *testing.T) {
	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("image", "completion", "ok"))
	RecordRequest("image", "completion", "ok", 1.5)

	assert.Equal(t, before+1, testutil.ToFloat64(RequestsTotal.WithLabelValues("image", "completion", "ok")))
	assert.Positive(t, testutil.CollectAndCount(RequestDuration))
}

func TestSetRateWindow(t *testing.T) {
	SetRateWindow(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(RateWindowCount))
}
