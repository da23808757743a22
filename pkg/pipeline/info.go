package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	errs "diuresults/pkg/errors"
	"diuresults/pkg/logger"
	"diuresults/pkg/retry"
	"diuresults/pkg/store"
)

// InfoFetcher downloads student profiles one file per student and then
// assembles them into a single array
type InfoFetcher struct {
	client    StudentInfoClient
	store     store.Store
	output    store.Store
	outputKey string
	retry     *retry.Config
	progress  ProgressReporter
	logger    logger.Logger
}

// NewInfoFetcher creates the student-info stage over the per-student store
func NewInfoFetcher(client StudentInfoClient, st store.Store, retryCfg *retry.Config, log logger.Logger) *InfoFetcher {
	if log == nil {
		log = logger.GetLogger()
	}
	if retryCfg == nil {
		retryCfg = retry.DefaultConfig()
	}
	return &InfoFetcher{
		client:   client,
		store:    st,
		retry:    retryCfg,
		progress: nopProgress{},
		logger:   log,
	}
}

// SetOutput names where the assembled array is written. Without an output
// Run only fills the per-student store.
func (f *InfoFetcher) SetOutput(st store.Store, key string) {
	f.output = st
	f.outputKey = key
}

// SetProgress attaches a progress reporter
func (f *InfoFetcher) SetProgress(p ProgressReporter) {
	if p == nil {
		p = nopProgress{}
	}
	f.progress = p
}

// Run fetches every student missing from the store, then assembles the
// output. A failure to write the assembled file is returned as an error.
func (f *InfoFetcher) Run(ctx context.Context, students []string) (*Summary, error) {
	summary := newSummary("info")
	defer summary.finish()

	f.logger.InfoWithFields("starting student info fetch", map[string]interface{}{
		"run_id":   summary.RunID,
		"students": len(students),
	})

	f.progress.Start(len(students))
	for _, student := range students {
		if err := ctx.Err(); err != nil {
			f.progress.Finish()
			return f.interrupted(summary, err)
		}

		r := f.fetchOne(ctx, student)
		if r.Err != nil && ctx.Err() != nil {
			f.progress.Finish()
			return f.interrupted(summary, ctx.Err())
		}
		summary.add(r)
		f.progress.Advance(r.Label(), string(r.Status))
	}
	f.progress.Finish()

	if f.output != nil {
		count, err := f.assemble(students)
		if err != nil {
			return summary, err
		}
		if count > 0 {
			summary.Output = f.outputKey
			summary.OutputRecords = count
		}
	}

	f.logger.InfoWithFields("student info fetch completed", map[string]interface{}{
		"run_id":  summary.RunID,
		"fetched": summary.Count(StatusFetched),
		"cached":  summary.Count(StatusCached),
		"empty":   summary.Count(StatusEmpty),
		"failed":  summary.Count(StatusFailed),
	})
	return summary, nil
}

func (f *InfoFetcher) interrupted(summary *Summary, err error) (*Summary, error) {
	summary.Interrupted = true
	f.logger.WarnWithFields("student info fetch interrupted", map[string]interface{}{
		"run_id":    summary.RunID,
		"processed": summary.Total(),
	})
	return summary, fmt.Errorf("student info fetch interrupted: %w", err)
}

func (f *InfoFetcher) fetchOne(ctx context.Context, student string) KeyResult {
	r := KeyResult{StudentID: student}
	key := student + ".json"
	log := f.logger.WithField("student_id", student)

	exists, err := f.store.Exists(key)
	if err != nil {
		log.WithError(err).Error("failed to check for existing student info")
		return failedResult(r, asStorageError(err))
	}
	if exists {
		log.Debug("student info already exists, skipping")
		r.Status = StatusCached
		return r
	}

	payload, attempts, err := retry.DoWithResult(ctx, func() (json.RawMessage, error) {
		return f.client.FetchStudentInfo(ctx, student)
	}, f.retry)
	r.Attempts = attempts
	if err != nil {
		if ctx.Err() == nil {
			log.WithError(err).WarnWithFields("failed to fetch student info", map[string]interface{}{
				"attempts": attempts,
				"reason":   string(errs.TypeOf(err)),
			})
		}
		return failedResult(r, err)
	}

	if len(payload) == 0 {
		log.Info("no student info returned")
		r.Status = StatusEmpty
		return r
	}

	data, err := encodeJSON(payload)
	if err != nil {
		log.WithError(err).Error("failed to encode student info")
		return failedResult(r, errs.Wrap(errs.ErrorTypeMalformed, err, "failed to encode student info"))
	}
	if err := f.store.Put(key, data); err != nil {
		log.WithError(err).Error("failed to save student info")
		return failedResult(r, asStorageError(err))
	}

	log.Info("student info saved")
	r.Status = StatusFetched
	r.Records = 1
	return r
}

// assemble builds the output array from the stored profiles of students,
// in the given order. List profiles contribute each element. Nothing is
// written when no student has a profile.
func (f *InfoFetcher) assemble(students []string) (int, error) {
	combined := []json.RawMessage{}

	for _, student := range students {
		data, err := f.store.Get(student + ".json")
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				f.logger.WithError(err).WithField("student_id", student).Error("failed to read student info")
			}
			continue
		}

		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			items, err := decodeList(trimmed)
			if err != nil {
				f.logger.WithError(err).WithField("student_id", student).Error("failed to decode student info")
				continue
			}
			combined = append(combined, items...)
			continue
		}
		if !json.Valid(trimmed) {
			f.logger.WithField("student_id", student).Error("stored student info is not valid JSON")
			continue
		}
		combined = append(combined, json.RawMessage(trimmed))
	}

	if len(combined) == 0 {
		f.logger.Warn("no student information was fetched, not writing output")
		return 0, nil
	}

	data, err := encodeJSON(combined)
	if err != nil {
		return 0, errs.Wrap(errs.ErrorTypeStorage, err, "failed to encode student info")
	}
	if err := f.output.Put(f.outputKey, data); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", f.outputKey, err)
	}

	f.logger.InfoWithFields("student info saved", map[string]interface{}{
		"output":   f.outputKey,
		"students": len(combined),
	})
	return len(combined), nil
}
