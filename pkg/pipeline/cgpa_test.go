package pipeline

import (
	"encoding/json"
	"testing"

	"diuresults/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseRecords(t *testing.T, data string) []models.ResultRecord {
	t.Helper()
	var recs []models.ResultRecord
	require.NoError(t, json.Unmarshal([]byte(data), &recs))
	return recs
}

func TestWeightedAverage(t *testing.T) {
	recs := parseRecords(t, `[
		{"customCourseId":"A","pointEquivalent":4.0,"totalCredit":3},
		{"customCourseId":"B","pointEquivalent":3.0,"totalCredit":2}
	]`)
	assert.InDelta(t, 3.6, CalculateCGPA(recs), 1e-9)
	assert.Equal(t, 3.6, RoundCGPA(CalculateCGPA(recs)))
}

func TestBestAttemptKeepsMaximum(t *testing.T) {
	forward := parseRecords(t, `[
		{"customCourseId":"A","pointEquivalent":3.00,"totalCredit":3},
		{"customCourseId":"A","pointEquivalent":3.50,"totalCredit":3}
	]`)
	reversed := parseRecords(t, `[
		{"customCourseId":"A","pointEquivalent":3.50,"totalCredit":3},
		{"customCourseId":"A","pointEquivalent":3.00,"totalCredit":3}
	]`)

	for name, recs := range map[string][]models.ResultRecord{"forward": forward, "reversed": reversed} {
		courses, unreadable := BestAttempts(recs)
		require.Len(t, courses, 1, name)
		assert.Equal(t, 3.5, courses[0].PointEquivalent, name)
		assert.Zero(t, unreadable, name)
		assert.Equal(t, 3.5, CalculateCGPA(recs), name)
	}
}

func TestBestAttemptTieKeepsFirstCredit(t *testing.T) {
	recs := parseRecords(t, `[
		{"customCourseId":"A","pointEquivalent":3.5,"totalCredit":3},
		{"customCourseId":"A","pointEquivalent":3.5,"totalCredit":1},
		{"customCourseId":"B","pointEquivalent":2.0,"totalCredit":1}
	]`)
	courses, _ := BestAttempts(recs)
	require.Len(t, courses, 2)
	assert.Equal(t, CourseRecord{CourseID: "A", PointEquivalent: 3.5, TotalCredit: 3}, courses[0])
	// (3*3.5 + 1*2.0) / 4
	assert.InDelta(t, 3.125, WeightedAverage(courses), 1e-9)
}

func TestZeroCreditYieldsZero(t *testing.T) {
	tests := map[string]string{
		"no records":      `[]`,
		"missing credits": `[{"customCourseId":"A","pointEquivalent":4.0}]`,
		"zero credits":    `[{"customCourseId":"A","pointEquivalent":4.0,"totalCredit":0}]`,
		"no course ids":   `[{"pointEquivalent":4.0,"totalCredit":3}]`,
		"null points":     `[{"customCourseId":"A","pointEquivalent":null,"totalCredit":3}]`,
	}
	for name, data := range tests {
		assert.Equal(t, 0.0, CalculateCGPA(parseRecords(t, data)), name)
	}
}

func TestNumericStringsAreCoerced(t *testing.T) {
	recs := parseRecords(t, `[
		{"customCourseId":"A","pointEquivalent":"4.00","totalCredit":"3.0"},
		{"customCourseId":"B","pointEquivalent":3,"totalCredit":2}
	]`)
	assert.InDelta(t, 3.6, CalculateCGPA(recs), 1e-9)
}

func TestUnreadableNumbersAreSkipped(t *testing.T) {
	recs := parseRecords(t, `[
		{"customCourseId":"A","pointEquivalent":"A+","totalCredit":3},
		{"customCourseId":"B","pointEquivalent":3.0,"totalCredit":"three"},
		{"customCourseId":"C","pointEquivalent":2.0,"totalCredit":2}
	]`)
	courses, unreadable := BestAttempts(recs)
	assert.Equal(t, 2, unreadable)
	require.Len(t, courses, 1)
	assert.Equal(t, "C", courses[0].CourseID)
}

func TestNumericAndStringCourseIDsAreDistinct(t *testing.T) {
	recs := parseRecords(t, `[
		{"customCourseId":101,"pointEquivalent":2.0,"totalCredit":3},
		{"customCourseId":"101","pointEquivalent":4.0,"totalCredit":3}
	]`)
	courses, _ := BestAttempts(recs)
	require.Len(t, courses, 2)
	assert.Equal(t, "101", courses[0].CourseID)
	assert.Equal(t, "101", courses[1].CourseID)
	assert.InDelta(t, 3.0, CalculateCGPA(recs), 1e-9)
}

func TestNonFiniteStringsAreUnreadable(t *testing.T) {
	recs := parseRecords(t, `[
		{"customCourseId":"A","pointEquivalent":"NaN","totalCredit":3},
		{"customCourseId":"B","pointEquivalent":"Inf","totalCredit":3},
		{"customCourseId":"C","pointEquivalent":3.0,"totalCredit":"-Infinity"},
		{"customCourseId":"D","pointEquivalent":3.0,"totalCredit":1}
	]`)
	courses, unreadable := BestAttempts(recs)
	assert.Equal(t, 3, unreadable)
	require.Len(t, courses, 1)
	assert.Equal(t, 3.0, CalculateCGPA(recs))
}

func TestRoundCGPA(t *testing.T) {
	assert.Equal(t, 3.333, RoundCGPA(10.0/3.0))
	assert.Equal(t, 3.667, RoundCGPA(11.0/3.0))
	assert.Equal(t, 4.0, RoundCGPA(4.0))
	assert.Equal(t, 0.0, RoundCGPA(0))
}
