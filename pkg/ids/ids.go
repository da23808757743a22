// Package ids enumerates the semester and student identifiers the pipeline
// works through. Everything here is pure: no I/O and no error paths.
package ids

import (
	"fmt"
	"sort"
	"strconv"
)

const (
	firstTerm = 1
	lastTerm  = 3
)

// IsValidSemesterID reports whether id has the YYS shape: two digits
// followed by a term in 1..3.
func IsValidSemesterID(id string) bool {
	if len(id) != 3 {
		return false
	}
	if !isDigit(id[0]) || !isDigit(id[1]) {
		return false
	}
	return id[2] >= '1' && id[2] <= '3'
}

// GenerateSemesterIDs expands the closed range [start, end]. Interior years
// get all three terms; the boundary years begin and end at the given terms.
// Endpoints that cannot be parsed yield an empty slice.
func GenerateSemesterIDs(start, end string) []string {
	startYear, startTerm, ok := splitSemester(start)
	if !ok {
		return []string{}
	}
	endYear, endTerm, ok := splitSemester(end)
	if !ok {
		return []string{}
	}

	semesters := []string{}
	for year := startYear; year <= endYear; year++ {
		from := firstTerm
		if year == startYear {
			from = startTerm
		}
		to := lastTerm
		if year == endYear {
			to = endTerm
		}
		for term := from; term <= to; term++ {
			semesters = append(semesters, fmt.Sprintf("%02d%d", year, term))
		}
	}
	return semesters
}

// GenerateStudentIDs returns prefix+n for every n in [start, end] merged with
// extra, deduplicated and sorted lexically.
func GenerateStudentIDs(start, end int, prefix string, extra []string) []string {
	seen := make(map[string]struct{}, len(extra))
	for _, id := range extra {
		seen[id] = struct{}{}
	}
	if start <= end {
		// n == end breaks before n++ could overflow
		for n := start; ; n++ {
			seen[prefix+strconv.Itoa(n)] = struct{}{}
			if n == end {
				break
			}
		}
	}

	students := make([]string, 0, len(seen))
	for id := range seen {
		students = append(students, id)
	}
	sort.Strings(students)
	return students
}

// splitSemester parses "YYS" loosely: the year is the first two characters
// and the term the third, both numeric. Term range is not enforced here so
// that ranges behave like the plain integer arithmetic callers expect.
func splitSemester(id string) (year, term int, ok bool) {
	if len(id) != 3 {
		return 0, 0, false
	}
	year, err := strconv.Atoi(id[:2])
	if err != nil || !isDigit(id[0]) || !isDigit(id[1]) {
		return 0, 0, false
	}
	if !isDigit(id[2]) {
		return 0, 0, false
	}
	return year, int(id[2] - '0'), true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
