package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demandcast/backend/pkg/config"
	"github.com/demandcast/backend/pkg/logger"
)

type fakeJob struct {
	name string
	ran  chan struct{}
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return "0 0 3 * * *" }
func (j *fakeJob) Run(ctx context.Context) error {
	close(j.ran)
	return nil
}

func testScheduler() *Scheduler {
	log := logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
	return New(log)
}

func TestScheduler_AddJob(t *testing.T) {
	s := testScheduler()
	job := &fakeJob{name: "retrain", ran: make(chan struct{})}

	require.NoError(t, s.AddJob(job))
	assert.Error(t, s.AddJob(job), "duplicate names are rejected")
	assert.Equal(t, []string{"retrain"}, s.Jobs())

	_, err := s.History("retrain")
	assert.NoError(t, err)
	_, err = s.History("unknown")
	assert.Error(t, err)
}

func TestScheduler_AddJobBadSchedule(t *testing.T) {
	s := testScheduler()

	err := s.AddJob(badScheduleJob{})
	assert.Error(t, err)
}

type badScheduleJob struct{}

func (badScheduleJob) Name() string                  { return "bad" }
func (badScheduleJob) Schedule() string              { return "not a cron expr" }
func (badScheduleJob) Run(ctx context.Context) error { return nil }

func TestScheduler_RunJobImmediately(t *testing.T) {
	s := testScheduler()
	job := &fakeJob{name: "retrain", ran: make(chan struct{})}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("retrain"))

	select {
	case <-job.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}

	assert.Error(t, s.RunJob("unknown"))
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	assert.Zero(t, h.SuccessRate())
	assert.Empty(t, h.LatestResults(5))

	for i := 0; i < 120; i++ {
		h.AddResult(JobResult{JobName: "retrain", Success: i%2 == 0})
	}

	assert.Len(t, h.Results, 100, "history is capped")
	assert.Len(t, h.LatestResults(5), 5)
	assert.InDelta(t, 0.5, h.SuccessRate(), 1e-9)
}
