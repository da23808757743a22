package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"diuresults/pkg/ids"
	"diuresults/pkg/logger"
	"diuresults/pkg/models"
	"diuresults/pkg/store"

	"github.com/google/uuid"
)

// CombinedKey is the merged artifact of one student
func CombinedKey(studentID string) string {
	return "combined_" + studentID + ".json"
}

// MergeSummary reports one merge run
type MergeSummary struct {
	RunID            string        `json:"run_id"`
	StartedAt        time.Time     `json:"started_at"`
	Duration         time.Duration `json:"duration"`
	SemestersScanned int           `json:"semesters_scanned"`
	FilesMerged      int           `json:"files_merged"`
	FilesSkipped     int           `json:"files_skipped"`
	RecordsMerged    int           `json:"records_merged"`
	StudentsWritten  int           `json:"students_written"`
	WriteFailures    int           `json:"write_failures"`
	Students         []string      `json:"students"`
}

// Merger concatenates every student's semester artifacts
type Merger struct {
	results store.Store
	merged  store.Store
	logger  logger.Logger
}

// NewMerger reads from the results store and writes into the merged store
func NewMerger(results, merged store.Store, log logger.Logger) *Merger {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Merger{results: results, merged: merged, logger: log}
}

// Run scans every semester directory and rewrites combined_<student>.json
// for each student seen. Only an unlistable results root is fatal.
func (m *Merger) Run(ctx context.Context) (*MergeSummary, error) {
	summary := &MergeSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Students:  []string{},
	}
	defer func() { summary.Duration = time.Since(summary.StartedAt) }()

	semesters, err := m.results.List("")
	if err != nil {
		return summary, fmt.Errorf("failed to list results: %w", err)
	}

	combined := make(map[string]models.ResultSet)
	var order []string

	for _, dir := range semesters {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("merge interrupted: %w", err)
		}
		if !dir.IsDir {
			continue
		}
		if !ids.IsValidSemesterID(dir.Name) {
			m.logger.DebugWithFields("ignoring non-semester directory", map[string]interface{}{
				"directory": dir.Name,
			})
			continue
		}

		entries, err := m.results.List(dir.Name)
		if err != nil {
			m.logger.WithError(err).WithField("semester", dir.Name).Error("failed to list semester")
			continue
		}
		summary.SemestersScanned++
		m.logger.DebugWithFields("processing semester", map[string]interface{}{
			"semester": dir.Name,
			"files":    len(entries),
		})

		for _, entry := range entries {
			if entry.IsDir || !strings.HasSuffix(entry.Name, ".json") {
				continue
			}
			student := strings.TrimSuffix(entry.Name, ".json")
			key := store.Join(dir.Name, entry.Name)
			log := m.logger.WithFields(map[string]interface{}{
				"semester":   dir.Name,
				"student_id": student,
			})

			data, err := m.results.Get(key)
			if err != nil {
				log.WithError(err).Error("failed to read artifact")
				summary.FilesSkipped++
				continue
			}

			records, err := decodeList(data)
			if err != nil {
				if errors.Is(err, errNotList) {
					log.Warn("expected a list in artifact, skipping its content")
				} else {
					log.WithError(err).Error("could not decode artifact")
				}
				summary.FilesSkipped++
				continue
			}

			if _, seen := combined[student]; !seen {
				order = append(order, student)
				combined[student] = models.ResultSet{}
			}
			combined[student] = append(combined[student], records...)
			summary.FilesMerged++
			summary.RecordsMerged += len(records)
		}
	}

	for _, student := range order {
		data, err := encodeJSON(combined[student])
		if err == nil {
			err = m.merged.Put(CombinedKey(student), data)
		}
		if err != nil {
			m.logger.WithError(err).WithField("student_id", student).Error("failed to write combined results")
			summary.WriteFailures++
			continue
		}
		summary.StudentsWritten++
		summary.Students = append(summary.Students, student)
		m.logger.DebugWithFields("combined results saved", map[string]interface{}{
			"student_id": student,
			"records":    len(combined[student]),
		})
	}

	m.logger.InfoWithFields("merge completed", map[string]interface{}{
		"run_id":            summary.RunID,
		"semesters_scanned": summary.SemestersScanned,
		"files_merged":      summary.FilesMerged,
		"files_skipped":     summary.FilesSkipped,
		"students_written":  summary.StudentsWritten,
		"write_failures":    summary.WriteFailures,
	})
	return summary, nil
}
