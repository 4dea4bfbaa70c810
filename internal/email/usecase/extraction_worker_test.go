package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"smartrfq/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type fakeExtractor struct {
	mu   sync.Mutex
	seen []string
}

func (e *fakeExtractor) ExtractFromEmail(_ context.Context, _, emailID string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seen = append(e.seen, emailID)
	if emailID == "bad" {
		return 0, errors.New("boom")
	}
	return 1, nil
}

func TestExtractionWorker_ProcessesQueuedJobs(t *testing.T) {
	m := metrics.NewPipeline(prometheus.NewRegistry())
	w := NewExtractionWorker(2, m, nil)
	ex := &fakeExtractor{}
	w.SetExtractor(ex)
	w.Start()

	assert.True(t, w.QueueJob(ExtractionJob{OrgID: "org_a", EmailID: "e1"}))
	assert.True(t, w.QueueJob(ExtractionJob{OrgID: "org_a", EmailID: "bad"}))
	w.Stop()

	assert.ElementsMatch(t, []string{"e1", "bad"}, ex.seen)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExtractionJobs.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExtractionJobs.WithLabelValues("error")))

	assert.False(t, w.QueueJob(ExtractionJob{EmailID: "late"}))
	w.Stop()
}

func TestExtractionWorker_QueueFull(t *testing.T) {
	w := NewExtractionWorker(1, nil, nil)
	for i := 0; i < cap(w.jobQueue); i++ {
		assert.True(t, w.QueueJob(ExtractionJob{EmailID: "x"}))
	}
	assert.False(t, w.QueueJob(ExtractionJob{EmailID: "overflow"}))

	w.Start()
	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not drain")
	}
}
