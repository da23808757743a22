package pipeline

import (
	"context"
	"errors"
	"fmt"

	errs "diuresults/pkg/errors"
	"diuresults/pkg/ids"
	"diuresults/pkg/logger"
	"diuresults/pkg/models"
	"diuresults/pkg/retry"
	"diuresults/pkg/store"
)

// Fetcher downloads per-semester results into a store, resuming from
// whatever artifacts already exist
type Fetcher struct {
	client   ResultsClient
	store    store.Store
	retry    *retry.Config
	progress ProgressReporter
	logger   logger.Logger
}

// NewFetcher creates a fetch stage. A nil retry config means
// retry.DefaultConfig.
func NewFetcher(client ResultsClient, st store.Store, retryCfg *retry.Config, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}
	if retryCfg == nil {
		retryCfg = retry.DefaultConfig()
	}
	return &Fetcher{
		client:   client,
		store:    st,
		retry:    retryCfg,
		progress: nopProgress{},
		logger:   log,
	}
}

// SetProgress attaches a progress reporter
func (f *Fetcher) SetProgress(p ProgressReporter) {
	if p == nil {
		p = nopProgress{}
	}
	f.progress = p
}

// ArtifactKey is where the results of one student in one semester live
func ArtifactKey(semesterID, studentID string) string {
	return store.Join(semesterID, studentID+".json")
}

// Run processes every semester × student key in order. Key-scoped faults
// are recorded in the summary. The returned error is non-nil only when ctx
// ends before every key was processed.
func (f *Fetcher) Run(ctx context.Context, semesters, students []string) (*Summary, error) {
	summary := newSummary("fetch")
	defer summary.finish()

	f.logger.InfoWithFields("starting result fetch", map[string]interface{}{
		"run_id":    summary.RunID,
		"semesters": len(semesters),
		"students":  len(students),
	})

	f.progress.Start(len(semesters) * len(students))
	defer f.progress.Finish()

	for _, semester := range semesters {
		if !ids.IsValidSemesterID(semester) {
			f.logger.WarnWithFields("invalid semester id, skipping", map[string]interface{}{
				"semester": semester,
			})
			for _, student := range students {
				r := KeyResult{Semester: semester, StudentID: student, Status: StatusInvalid}
				summary.add(r)
				f.progress.Advance(r.Label(), string(r.Status))
			}
			continue
		}

		for _, student := range students {
			if err := ctx.Err(); err != nil {
				return f.interrupted(summary, err)
			}

			r := f.fetchOne(ctx, semester, student)
			if r.Err != nil && ctx.Err() != nil {
				// the key was cut short, not failed
				return f.interrupted(summary, ctx.Err())
			}
			summary.add(r)
			f.progress.Advance(r.Label(), string(r.Status))
		}
	}

	f.logger.InfoWithFields("result fetch completed", map[string]interface{}{
		"run_id":  summary.RunID,
		"fetched": summary.Count(StatusFetched),
		"cached":  summary.Count(StatusCached),
		"empty":   summary.Count(StatusEmpty),
		"failed":  summary.Count(StatusFailed),
		"invalid": summary.Count(StatusInvalid),
	})
	return summary, nil
}

func (f *Fetcher) interrupted(summary *Summary, err error) (*Summary, error) {
	summary.Interrupted = true
	f.logger.WarnWithFields("result fetch interrupted", map[string]interface{}{
		"run_id":    summary.RunID,
		"processed": summary.Total(),
	})
	return summary, fmt.Errorf("fetch interrupted: %w", err)
}

// fetchOne applies the skip rule, then fetches with retry and persists a
// non-empty result set
func (f *Fetcher) fetchOne(ctx context.Context, semester, student string) KeyResult {
	r := KeyResult{Semester: semester, StudentID: student}
	key := ArtifactKey(semester, student)
	log := f.logger.WithFields(map[string]interface{}{
		"semester":   semester,
		"student_id": student,
	})

	exists, err := f.store.Exists(key)
	if err != nil {
		log.WithError(err).Error("failed to check for existing artifact")
		return failedResult(r, asStorageError(err))
	}
	if exists {
		log.Debug("artifact already exists, skipping")
		r.Status = StatusCached
		return r
	}

	records, attempts, err := retry.DoWithResult(ctx, func() (models.ResultSet, error) {
		return f.client.FetchResults(ctx, semester, student)
	}, f.retry)
	r.Attempts = attempts
	if err != nil {
		if ctx.Err() == nil {
			log.WithError(err).WarnWithFields("failed to fetch results", map[string]interface{}{
				"attempts": attempts,
				"reason":   string(errs.TypeOf(err)),
			})
		}
		return failedResult(r, err)
	}

	if len(records) == 0 {
		log.Info("empty result returned, not retrying")
		r.Status = StatusEmpty
		return r
	}

	data, err := encodeJSON(records)
	if err != nil {
		log.WithError(err).Error("failed to encode results")
		return failedResult(r, errs.Wrap(errs.ErrorTypeMalformed, err, "failed to encode results"))
	}
	if err := f.store.Put(key, data); err != nil {
		log.WithError(err).Error("failed to save results")
		return failedResult(r, asStorageError(err))
	}

	log.InfoWithFields("results saved", map[string]interface{}{
		"records":  len(records),
		"attempts": attempts,
	})
	r.Status = StatusFetched
	r.Records = len(records)
	return r
}

// asStorageError tags untyped store failures so the summary reason is
// storage
func asStorageError(err error) error {
	var typed *errs.Error
	if errors.As(err, &typed) {
		return err
	}
	return errs.Wrap(errs.ErrorTypeStorage, err, "store operation failed")
}
