package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ResultSet is the list of course records returned for one student in one
// semester. Records stay raw so fields the pipeline ignores survive every
// stage untouched.
type ResultSet []json.RawMessage

// ResultRecord holds the only fields the aggregator reads from a course
// record. A nil pointer means the field was absent or null.
type ResultRecord struct {
	CustomCourseID  *CourseID  `json:"customCourseId"`
	PointEquivalent *FlexFloat  `json:"pointEquivalent"`
	TotalCredit     *FlexFloat  `json:"totalCredit"`
}

// StudentCGPA is one entry of student_cgpas.json
type StudentCGPA struct {
	StudentID string  `json:"student_id"`
	CGPA      float64 `json:"cgpa"`
}

// CourseID accepts a JSON string or number. The number 101 and the string
// "101" are different ids; Value holds the text of either.
type CourseID struct {
	Value   string
	Numeric bool
}

func (c *CourseID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*c = CourseID{Value: v}
		return nil
	}
	*c = CourseID{Value: string(data), Numeric: true}
	return nil
}

func (c CourseID) String() string {
	return c.Value
}

// FlexFloat accepts a JSON number or a numeric string. Values that cannot be
// read as a finite number (including "NaN" and "Inf") decode without error
// and report Valid false.
type FlexFloat struct {
	Value float64
	Valid bool
	Raw   string
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	f.Raw = string(data)

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		f.Value, f.Valid = 0, false
		return nil
	}
	f.Value, f.Valid = v, true
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
