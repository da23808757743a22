package pipeline

import (
	"math"

	"diuresults/pkg/models"
)

// CourseRecord is the attempt of a course that counts toward the CGPA
type CourseRecord struct {
	CourseID        string
	PointEquivalent float64
	TotalCredit     float64
}

// BestAttempts keeps, per customCourseId (a numeric id and a string id with
// the same text count as different courses), the attempt with the highest
// pointEquivalent. A later attempt replaces the kept one only when strictly
// greater, so ties keep the first. Records without a course id or point are
// ignored; records whose numbers cannot be read are ignored and counted in
// unreadable. Courses are returned in first-seen order.
func BestAttempts(records []models.ResultRecord) (courses []CourseRecord, unreadable int) {
	index := make(map[models.CourseID]int)

	for _, rec := range records {
		if rec.CustomCourseID == nil || rec.PointEquivalent == nil {
			continue
		}
		if !rec.PointEquivalent.Valid || (rec.TotalCredit != nil && !rec.TotalCredit.Valid) {
			unreadable++
			continue
		}

		id := *rec.CustomCourseID
		point := rec.PointEquivalent.Value
		credit := 0.0
		if rec.TotalCredit != nil {
			credit = rec.TotalCredit.Value
		}

		i, seen := index[id]
		switch {
		case !seen:
			index[id] = len(courses)
			courses = append(courses, CourseRecord{CourseID: id.Value, PointEquivalent: point, TotalCredit: credit})
		case point > courses[i].PointEquivalent:
			courses[i].PointEquivalent = point
			courses[i].TotalCredit = credit
		}
	}
	return courses, unreadable
}

// WeightedAverage is Σ credit·point / Σ credit, or 0 when no credit counts
func WeightedAverage(courses []CourseRecord) float64 {
	var weighted, credits float64
	for _, c := range courses {
		weighted += c.TotalCredit * c.PointEquivalent
		credits += c.TotalCredit
	}
	if credits > 0 {
		return weighted / credits
	}
	return 0.0
}

// CalculateCGPA deduplicates records to their best attempts and returns the
// credit-weighted average, unrounded
func CalculateCGPA(records []models.ResultRecord) float64 {
	courses, _ := BestAttempts(records)
	return WeightedAverage(courses)
}

// RoundCGPA rounds to three decimals, halves away from zero
func RoundCGPA(cgpa float64) float64 {
	return math.Round(cgpa*1000) / 1000
}
