package pipeline

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	errs "diuresults/pkg/errors"
	"diuresults/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryCounts(t *testing.T) {
	s := newSummary("fetch")
	s.add(KeyResult{Semester: "241", StudentID: "a", Status: StatusFetched})
	s.add(KeyResult{Semester: "241", StudentID: "b", Status: StatusCached})
	s.add(failedResult(KeyResult{Semester: "241", StudentID: "c"}, errs.New(errs.ErrorTypeRejected, 404, "not found")))
	s.finish()

	_, err := uuid.Parse(s.RunID)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Total())
	assert.Equal(t, 1, s.Count(StatusFetched))
	assert.Equal(t, 0, s.Count(StatusEmpty))

	failed := s.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, errs.ErrorTypeRejected, failed[0].Reason)
	assert.Equal(t, 404, failed[0].Code)
	assert.Equal(t, "241 c", failed[0].Label())
}

func TestSummarySaveReport(t *testing.T) {
	s := newSummary("fetch")
	s.add(failedResult(KeyResult{Semester: "241", StudentID: "a", Attempts: 3}, networkErr()))
	s.finish()

	st := store.NewMemoryStore()
	key, err := s.SaveReport(st)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "fetch-"+s.RunID))

	data, err := st.Get(key)
	require.NoError(t, err)

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, s.RunID, report["run_id"])
	assert.Equal(t, map[string]interface{}{"failed": float64(1)}, report["counts"])

	results := report["results"].([]interface{})
	first := results[0].(map[string]interface{})
	assert.Equal(t, "network", first["reason"])
	assert.Equal(t, float64(3), first["attempts"])
	assert.Contains(t, first["error"], "connection reset")
}

func TestSummarySaveReportFailure(t *testing.T) {
	st := store.NewMemoryStore()
	st.PutError = errors.New("disk full")
	_, err := newSummary("fetch").SaveReport(st)
	assert.Error(t, err)
}
