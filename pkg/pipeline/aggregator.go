package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	errs "diuresults/pkg/errors"
	"diuresults/pkg/logger"
	"diuresults/pkg/models"
	"diuresults/pkg/store"

	"github.com/google/uuid"
)

// SummaryKey is the CGPA summary written by the aggregation stage
const SummaryKey = "student_cgpas.json"

// AggregateSummary reports one aggregation run
type AggregateSummary struct {
	RunID             string               `json:"run_id"`
	StartedAt         time.Time            `json:"started_at"`
	Duration          time.Duration        `json:"duration"`
	StudentsProcessed int                  `json:"students_processed"`
	StudentsSkipped   int                  `json:"students_skipped"`
	RecordsSkipped    int                  `json:"records_skipped"`
	Output            string               `json:"output"`
	CGPAs             []models.StudentCGPA `json:"cgpas"`
}

// Aggregator turns combined results into one CGPA per student
type Aggregator struct {
	merged  store.Store
	summary store.Store
	logger  logger.Logger
}

// NewAggregator reads combined files from merged and writes the summary
// file into summary
func NewAggregator(merged, summary store.Store, log logger.Logger) *Aggregator {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Aggregator{merged: merged, summary: summary, logger: log}
}

// Run computes every student's CGPA and rewrites student_cgpas.json. An
// unlistable input or an unwritable summary file is fatal; a bad student
// file is skipped.
func (a *Aggregator) Run(ctx context.Context) (*AggregateSummary, error) {
	summary := &AggregateSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Output:    SummaryKey,
		CGPAs:     []models.StudentCGPA{},
	}
	defer func() { summary.Duration = time.Since(summary.StartedAt) }()

	entries, err := a.merged.List("")
	if err != nil {
		return summary, fmt.Errorf("failed to list combined results: %w", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("aggregation interrupted: %w", err)
		}
		if entry.IsDir || !strings.HasPrefix(entry.Name, "combined_") || !strings.HasSuffix(entry.Name, ".json") {
			continue
		}
		student := strings.TrimSuffix(strings.TrimPrefix(entry.Name, "combined_"), ".json")
		log := a.logger.WithField("student_id", student)

		data, err := a.merged.Get(entry.Name)
		if err != nil {
			log.WithError(err).Error("failed to read combined results")
			summary.StudentsSkipped++
			continue
		}

		items, err := decodeList(data)
		if err != nil {
			if errors.Is(err, errNotList) {
				log.Warn("expected a list in combined results, skipping CGPA calculation")
			} else {
				log.WithError(err).Error("could not decode combined results")
			}
			summary.StudentsSkipped++
			continue
		}

		records, undecodable := decodeRecords(items)
		courses, unreadable := BestAttempts(records)
		if skipped := undecodable + unreadable; skipped > 0 {
			log.WarnWithFields("skipped records with unreadable fields", map[string]interface{}{
				"records": skipped,
			})
			summary.RecordsSkipped += skipped
		}

		average := WeightedAverage(courses)
		if math.IsNaN(average) || math.IsInf(average, 0) {
			log.Warn("cgpa is not a finite number, skipping student")
			summary.StudentsSkipped++
			continue
		}
		cgpa := RoundCGPA(average)
		summary.CGPAs = append(summary.CGPAs, models.StudentCGPA{StudentID: student, CGPA: cgpa})
		summary.StudentsProcessed++
		log.DebugWithFields("cgpa calculated", map[string]interface{}{
			"cgpa":    cgpa,
			"courses": len(courses),
		})
	}

	data, err := encodeJSON(summary.CGPAs)
	if err != nil {
		return summary, errs.Wrap(errs.ErrorTypeStorage, err, "failed to encode cgpa summary")
	}
	if err := a.summary.Put(SummaryKey, data); err != nil {
		return summary, fmt.Errorf("failed to write %s: %w", SummaryKey, err)
	}

	a.logger.InfoWithFields("cgpa summary saved", map[string]interface{}{
		"run_id":   summary.RunID,
		"output":   SummaryKey,
		"students": summary.StudentsProcessed,
		"skipped":  summary.StudentsSkipped,
	})
	return summary, nil
}

// decodeRecords reads the fields the aggregator needs from each element.
// Elements that are not objects are counted and dropped.
func decodeRecords(items []json.RawMessage) ([]models.ResultRecord, int) {
	records := make([]models.ResultRecord, 0, len(items))
	skipped := 0
	for _, item := range items {
		var rec models.ResultRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped
}
