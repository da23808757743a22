package pipeline

import (
	"fmt"
	"time"

	errs "diuresults/pkg/errors"
	"diuresults/pkg/store"

	"github.com/google/uuid"
)

// Status is the outcome of one fetch key
type Status string

const (
	// StatusFetched means a new artifact was written
	StatusFetched Status = "fetched"
	// StatusCached means the artifact already existed and nothing was sent
	StatusCached Status = "cached"
	// StatusEmpty means the service answered with no records
	StatusEmpty Status = "empty"
	// StatusFailed means the key produced no artifact; Reason says why
	StatusFailed Status = "failed"
	// StatusInvalid means the semester id is malformed and nothing was sent
	StatusInvalid Status = "invalid"
)

// KeyResult is the outcome of one (semester, student) key
type KeyResult struct {
	Semester  string         `json:"semester,omitempty"`
	StudentID string         `json:"student_id"`
	Status    Status         `json:"status"`
	Reason    errs.ErrorType `json:"reason,omitempty"`
	Code      int            `json:"code,omitempty"`
	Attempts  int            `json:"attempts"`
	Records   int            `json:"records,omitempty"`
	Error     string         `json:"error,omitempty"`
	Err       error          `json:"-"`
}

// Label names the key for progress output
func (r KeyResult) Label() string {
	if r.Semester == "" {
		return r.StudentID
	}
	return r.Semester + " " + r.StudentID
}

func failedResult(r KeyResult, err error) KeyResult {
	r.Status = StatusFailed
	r.Reason = errs.TypeOf(err)
	r.Code = errs.CodeOf(err)
	r.Err = err
	r.Error = err.Error()
	return r
}

// Summary is the report of one fetch-like run
type Summary struct {
	RunID       string         `json:"run_id"`
	Stage       string         `json:"stage"`
	StartedAt   time.Time      `json:"started_at"`
	Duration    time.Duration  `json:"duration"`
	Counts      map[Status]int `json:"counts"`
	Interrupted bool           `json:"interrupted"`
	// Output is the assembled file of the student-info stage, if written
	Output        string      `json:"output,omitempty"`
	OutputRecords int         `json:"output_records,omitempty"`
	Results       []KeyResult `json:"results"`
}

func newSummary(stage string) *Summary {
	return &Summary{
		RunID:     uuid.NewString(),
		Stage:     stage,
		StartedAt: time.Now(),
		Counts:    make(map[Status]int),
		Results:   []KeyResult{},
	}
}

func (s *Summary) add(r KeyResult) {
	s.Results = append(s.Results, r)
	s.Counts[r.Status]++
}

func (s *Summary) finish() {
	s.Duration = time.Since(s.StartedAt)
}

// Count returns how many keys ended with status
func (s *Summary) Count(status Status) int {
	return s.Counts[status]
}

// Total returns the number of keys processed
func (s *Summary) Total() int {
	return len(s.Results)
}

// Failed returns the keys that ended in StatusFailed
func (s *Summary) Failed() []KeyResult {
	var failed []KeyResult
	for _, r := range s.Results {
		if r.Status == StatusFailed {
			failed = append(failed, r)
		}
	}
	return failed
}

// ReportKey is the store key SaveReport writes to
func (s *Summary) ReportKey() string {
	return fmt.Sprintf("%s-%s.json", s.Stage, s.RunID)
}

// SaveReport writes the summary as JSON and returns its key
func (s *Summary) SaveReport(st store.Store) (string, error) {
	data, err := encodeJSON(s)
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeStorage, err, "failed to encode report")
	}
	key := s.ReportKey()
	if err := st.Put(key, data); err != nil {
		return "", err
	}
	return key, nil
}
