package results

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultBaseURL is the public result service
	DefaultBaseURL = "http://peoplepulse.diu.edu.bd:8189"

	// ResultsEndpoint returns per-semester course records
	ResultsEndpoint = "/result"

	// StudentInfoEndpoint returns a student's profile
	StudentInfoEndpoint = "/result/studentInfo"
)

// Endpoints builds request URLs for one service deployment
type Endpoints struct {
	BaseURL         string
	ResultsPath     string
	StudentInfoPath string
}

// DefaultEndpoints points at the public service
func DefaultEndpoints() Endpoints {
	return Endpoints{
		BaseURL:         DefaultBaseURL,
		ResultsPath:     ResultsEndpoint,
		StudentInfoPath: StudentInfoEndpoint,
	}
}

// ResultsURL constructs the URL for one student's results in one semester
func (e Endpoints) ResultsURL(semesterID, studentID string) string {
	params := url.Values{}
	params.Set("semesterId", semesterID)
	params.Set("studentId", studentID)

	return fmt.Sprintf("%s%s?%s", e.base(), e.ResultsPath, params.Encode())
}

// StudentInfoURL constructs the URL for one student's profile
func (e Endpoints) StudentInfoURL(studentID string) string {
	params := url.Values{}
	params.Set("studentId", studentID)

	return fmt.Sprintf("%s%s?%s", e.base(), e.StudentInfoPath, params.Encode())
}

func (e Endpoints) base() string {
	return strings.TrimRight(e.BaseURL, "/")
}
