package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/normalizer"
)

func TestRecordRun(t *testing.T) {
	m := New()

	m.RecordRun(models.ProcessingResult{Success: true, TimeBlocksCreated: 4, HoursFilled: 38.5, TotalHours: 40},
		normalizer.Stats{Converted: 3, MalformedTimestamp: 2, NonPositiveDuration: 1, OversizedDuration: 1}, 20*time.Millisecond)
	m.RecordRun(models.ProcessingResult{Success: false, TimeBlocksCreated: 9}, normalizer.Stats{}, time.Millisecond)

	if got := testutil.ToFloat64(m.pipelineRuns.WithLabelValues("success")); got != 1 {
		t.Errorf("success runs = %v", got)
	}
	if got := testutil.ToFloat64(m.pipelineRuns.WithLabelValues("failure")); got != 1 {
		t.Errorf("failed runs = %v", got)
	}
	if got := testutil.ToFloat64(m.blocksCreated); got != 4 {
		t.Errorf("blocks created = %v, want failed run excluded", got)
	}
	if got := testutil.ToFloat64(m.hoursFilled); got != 38.5 {
		t.Errorf("hours filled = %v", got)
	}
	if got := testutil.ToFloat64(m.eventsSkipped.WithLabelValues("malformed_timestamp")); got != 2 {
		t.Errorf("malformed skipped = %v", got)
	}
	if got := testutil.ToFloat64(m.eventsSkipped.WithLabelValues("oversized_duration")); got != 1 {
		t.Errorf("oversized skipped = %v", got)
	}
	if got := testutil.ToFloat64(m.lastWeekHours); got != 40 {
		t.Errorf("last week hours = %v", got)
	}
}

func TestJobHooks(t *testing.T) {
	m := New()
	m.JobFinished(constants.JobWeeklyFillUp, true, time.Second)
	m.JobFinished(constants.JobWeeklyFillUp, false, time.Second)
	m.JobSkipped(constants.JobFetchAndProcess)
	m.JobSkipped(constants.JobFetchAndProcess)

	if got := testutil.ToFloat64(m.jobRuns.WithLabelValues(constants.JobWeeklyFillUp, "success")); got != 1 {
		t.Errorf("weekly success = %v", got)
	}
	if got := testutil.ToFloat64(m.jobSkipped.WithLabelValues(constants.JobFetchAndProcess)); got != 2 {
		t.Errorf("fetch skipped = %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordRun(models.ProcessingResult{Success: true}, normalizer.Stats{}, time.Second)
	m.JobFinished("x", true, time.Second)
	m.JobSkipped("x")
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.JobSkipped("x")
	if got := testutil.ToFloat64(b.jobSkipped.WithLabelValues("x")); got != 0 {
		t.Errorf("second registry saw %v skips", got)
	}
}
