package scheduler

import (
	"context"
	"time"
)

// Job represents a scheduled job
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	// Name returns the job name
	Name() string

	// Run executes the job; ctx is cancelled when the scheduler stops
	Run(ctx context.Context) error

	// Schedule returns the cron schedule expression, seconds first
	// Examples: "0 30 16 * * 1-5" (weekdays 16:30 exchange time)
	//           "@daily", "@hourly"
	Schedule() string
}

// JobResult represents the result of one job execution, retries included
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

const maxHistory = 50

// JobHistory stores the most recent job results, oldest first
type JobHistory struct {
	Results []JobResult
}

// AddResult appends a result, dropping the oldest beyond maxHistory
func (h *JobHistory) AddResult(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > maxHistory {
		h.Results = h.Results[len(h.Results)-maxHistory:]
	}
}

// Last returns the most recent result
func (h *JobHistory) Last() (JobResult, bool) {
	if len(h.Results) == 0 {
		return JobResult{}, false
	}
	return h.Results[len(h.Results)-1], true
}

// FailureCount returns how many stored results failed
func (h *JobHistory) FailureCount() int {
	n := 0
	for _, result := range h.Results {
		if !result.Success {
			n++
		}
	}
	return n
}

// SuccessRate returns the success rate (0.0 - 1.0)
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0.0
	}
	return float64(len(h.Results)-h.FailureCount()) / float64(len(h.Results))
}
