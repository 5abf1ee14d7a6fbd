package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-screener/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	failN    int32 // fail the first failN calls
	calls    atomic.Int32
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) error {
	if j.calls.Add(1) <= j.failN {
		return errors.New("transient")
	}
	return nil
}

func TestAddJob(t *testing.T) {
	s := New(logger.Nop())

	require.NoError(t, s.AddJob(&fakeJob{name: "b", schedule: "0 30 16 * * 1-5"}))
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "@daily"}))

	assert.Error(t, s.AddJob(&fakeJob{name: "a", schedule: "@daily"}), "duplicate name")
	assert.Error(t, s.AddJob(&fakeJob{name: "c", schedule: "30 16 * * 1-5"}), "five fields without seconds")

	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())
}

func TestRemoveJob(t *testing.T) {
	s := New(logger.Nop())
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "@daily"}))

	require.NoError(t, s.RemoveJob("a"))
	assert.Empty(t, s.GetAllJobs())
	assert.Error(t, s.RemoveJob("a"))

	_, err := s.RunJob("a")
	assert.Error(t, err)
}

func TestRunJob_Retries(t *testing.T) {
	s := New(logger.Nop(), WithRetry(2, time.Millisecond))
	job := &fakeJob{name: "flaky", schedule: "@daily", failN: 2}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJob("flaky")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Empty(t, result.Error)

	stats := s.GetJobStats()["flaky"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.SuccessCount)
	assert.NotNil(t, stats.LastSuccess)
	assert.Nil(t, stats.LastFailure)
}

func TestRunJob_ExhaustsRetries(t *testing.T) {
	s := New(logger.Nop(), WithRetry(1, time.Millisecond))
	require.NoError(t, s.AddJob(&fakeJob{name: "broken", schedule: "@daily", failN: 100}))

	result, err := s.RunJob("broken")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, "transient", result.Error)

	history, err := s.GetJobHistory("broken")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.Equal(t, 0.0, history.SuccessRate())
}

func TestStop_CancelsRetryWait(t *testing.T) {
	s := New(logger.Nop(), WithRetry(3, time.Hour))
	require.NoError(t, s.AddJob(&fakeJob{name: "slow", schedule: "@daily", failN: 100}))
	s.Start()

	done := make(chan JobResult)
	go func() {
		result, _ := s.RunJob("slow")
		done <- result
	}()

	time.Sleep(20 * time.Millisecond)
	s.Stop()

	select {
	case result := <-done:
		assert.False(t, result.Success)
		assert.Less(t, result.Attempts, 4)
	case <-time.After(5 * time.Second):
		t.Fatal("job did not stop")
	}
}

func TestWithLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	s := New(logger.Nop(), WithLocation(loc))
	require.NoError(t, s.AddJob(&fakeJob{name: "close", schedule: "0 30 16 * * 1-5"}))
	s.Start()
	defer s.Stop()

	next, err := s.NextRun("close")
	require.NoError(t, err)
	next = next.In(loc)
	assert.Equal(t, 16, next.Hour())
	assert.Equal(t, 30, next.Minute())
	assert.NotEqual(t, time.Saturday, next.Weekday())
	assert.NotEqual(t, time.Sunday, next.Weekday())
}

func TestJobHistory_Bounded(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < maxHistory+10; i++ {
		h.AddResult(JobResult{Success: i%2 == 0, Attempts: i})
	}

	assert.Len(t, h.Results, maxHistory)
	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, maxHistory+9, last.Attempts)
	assert.InDelta(t, 0.5, h.SuccessRate(), 1e-9)
}
