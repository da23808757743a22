package pipeline

import (
	"context"
	"encoding/json"

	"diuresults/pkg/models"
)

// ResultsClient fetches one student's results for one semester
type ResultsClient interface {
	FetchResults(ctx context.Context, semesterID, studentID string) (models.ResultSet, error)
}

// StudentInfoClient fetches one student's profile
type StudentInfoClient interface {
	FetchStudentInfo(ctx context.Context, studentID string) (json.RawMessage, error)
}

// ProgressReporter is told about every processed key
type ProgressReporter interface {
	Start(total int)
	Advance(label string, status string)
	Finish()
}

type nopProgress struct{}

func (nopProgress) Start(int)              {}
func (nopProgress) Advance(string, string) {}
func (nopProgress) Finish()                {}
