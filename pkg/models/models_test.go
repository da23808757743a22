package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultRecordDecoding(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		course     string
		hasCourse  bool
		point      float64
		pointValid bool
		hasPoint   bool
		hasCredit  bool
	}{
		{"numbers", `{"customCourseId":"CSE101","pointEquivalent":3.5,"totalCredit":3}`, "CSE101", true, 3.5, true, true, true},
		{"numeric strings", `{"customCourseId":"CSE101","pointEquivalent":"3.75","totalCredit":"1.5"}`, "CSE101", true, 3.75, true, true, true},
		{"numeric course id", `{"customCourseId":101,"pointEquivalent":4}`, "101", true, 4, true, true, false},
		{"null fields", `{"customCourseId":null,"pointEquivalent":null}`, "", false, 0, false, false, false},
		{"letter grade", `{"customCourseId":"CSE101","pointEquivalent":"A+"}`, "CSE101", true, 0, false, true, false},
		{"nan string", `{"customCourseId":"CSE101","pointEquivalent":"NaN"}`, "CSE101", true, 0, false, true, false},
		{"infinity string", `{"customCourseId":"CSE101","pointEquivalent":"-Infinity"}`, "CSE101", true, 0, false, true, false},
		{"overflowing number", `{"customCourseId":"CSE101","pointEquivalent":1e400}`, "CSE101", true, 0, false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec ResultRecord
			require.NoError(t, json.Unmarshal([]byte(tt.input), &rec))

			assert.Equal(t, tt.hasCourse, rec.CustomCourseID != nil)
			if tt.hasCourse {
				assert.Equal(t, tt.course, rec.CustomCourseID.Value)
			}
			assert.Equal(t, tt.hasPoint, rec.PointEquivalent != nil)
			if tt.hasPoint {
				assert.Equal(t, tt.pointValid, rec.PointEquivalent.Valid)
				assert.Equal(t, tt.point, rec.PointEquivalent.Value)
			}
			assert.Equal(t, tt.hasCredit, rec.TotalCredit != nil)
		})
	}
}

func TestCourseIDKeepsKind(t *testing.T) {
	var recs []ResultRecord
	require.NoError(t, json.Unmarshal([]byte(`[{"customCourseId":101},{"customCourseId":"101"}]`), &recs))
	require.Len(t, recs, 2)

	assert.Equal(t, CourseID{Value: "101", Numeric: true}, *recs[0].CustomCourseID)
	assert.Equal(t, CourseID{Value: "101"}, *recs[1].CustomCourseID)
	assert.NotEqual(t, *recs[0].CustomCourseID, *recs[1].CustomCourseID)
	assert.Equal(t, "101", recs[0].CustomCourseID.String())
}

func TestResultSetKeepsUnknownFields(t *testing.T) {
	input := `[{"customCourseId":"CSE101","courseTitle":"Structured Programming","semesterName":"Spring"}]`
	var set ResultSet
	require.NoError(t, json.Unmarshal([]byte(input), &set))
	require.Len(t, set, 1)
	assert.JSONEq(t, `{"customCourseId":"CSE101","courseTitle":"Structured Programming","semesterName":"Spring"}`, string(set[0]))
}

func TestStudentCGPAEncoding(t *testing.T) {
	data, err := json.Marshal([]StudentCGPA{{StudentID: "202-35-652", CGPA: 3.6}, {StudentID: "202-35-653", CGPA: 0}})
	require.NoError(t, err)
	assert.Equal(t, `[{"student_id":"202-35-652","cgpa":3.6},{"student_id":"202-35-653","cgpa":0}]`, string(data))
}
