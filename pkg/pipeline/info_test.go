package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	errs "diuresults/pkg/errors"
	"diuresults/pkg/logger"
	"diuresults/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoFetcherAssemblesProfiles(t *testing.T) {
	client := newFakeClient()
	client.info = func(call int, student string) (json.RawMessage, error) {
		switch student {
		case "211-35-713":
			return json.RawMessage(`{"studentId":"211-35-713","studentName":"A"}`), nil
		case "212-35-720":
			return json.RawMessage(`[{"studentId":"212-35-720"},{"studentId":"212-35-720","deptShortName":"SWE"}]`), nil
		case "212-35-721":
			return nil, nil
		default:
			return nil, errs.New(errs.ErrorTypeRejected, 404, "unexpected status code: 404")
		}
	}

	raw := store.NewMemoryStore()
	out := store.NewMemoryStore()
	f := NewInfoFetcher(client, raw, testRetry(&recordingSleeper{}), logger.NewTestLogger())
	f.SetOutput(out, "students-info.json")

	students := []string{"211-35-713", "212-35-720", "212-35-721", "212-35-722"}
	summary, err := f.Run(context.Background(), students)
	require.NoError(t, err)

	assert.Equal(t, "info", summary.Stage)
	assert.Equal(t, 2, summary.Count(StatusFetched))
	assert.Equal(t, 1, summary.Count(StatusEmpty))
	assert.Equal(t, 1, summary.Count(StatusFailed))
	assert.Equal(t, "students-info.json", summary.Output)
	assert.Equal(t, 3, summary.OutputRecords)

	assert.Equal(t, []string{"211-35-713.json", "212-35-720.json"}, raw.Keys())

	data, err := out.Get("students-info.json")
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"studentId":"211-35-713","studentName":"A"},
		{"studentId":"212-35-720"},
		{"studentId":"212-35-720","deptShortName":"SWE"}
	]`, string(data))
}

func TestInfoFetcherSkipsCachedProfiles(t *testing.T) {
	client := newFakeClient()
	client.info = func(call int, student string) (json.RawMessage, error) {
		return json.RawMessage(`{"studentId":"` + student + `"}`), nil
	}
	raw := store.NewMemoryStore()
	require.NoError(t, raw.Put("a.json", []byte(`{"studentId":"a","cached":true}`)))
	out := store.NewMemoryStore()

	f := NewInfoFetcher(client, raw, testRetry(&recordingSleeper{}), logger.NewTestLogger())
	f.SetOutput(out, "all.json")

	summary, err := f.Run(context.Background(), []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, StatusCached, summary.Results[0].Status)
	assert.Equal(t, StatusFetched, summary.Results[1].Status)
	assert.Zero(t, client.callsFor("a"))

	data, err := out.Get("all.json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"studentId":"a","cached":true},{"studentId":"b"}]`, string(data))
}

func TestInfoFetcherWritesNothingWithoutProfiles(t *testing.T) {
	client := newFakeClient()
	client.info = func(call int, student string) (json.RawMessage, error) {
		return nil, nil
	}
	out := store.NewMemoryStore()
	log := logger.NewTestLogger()
	f := NewInfoFetcher(client, store.NewMemoryStore(), testRetry(&recordingSleeper{}), log)
	f.SetOutput(out, "all.json")

	summary, err := f.Run(context.Background(), []string{"a", "b"})
	require.NoError(t, err)

	assert.Empty(t, summary.Output)
	assert.Empty(t, out.Keys())
	assert.True(t, log.HasMessage("no student information was fetched"))
}

func TestInfoFetcherOutputWriteFailureIsFatal(t *testing.T) {
	client := newFakeClient()
	client.info = func(call int, student string) (json.RawMessage, error) {
		return json.RawMessage(`{"studentId":"a"}`), nil
	}
	out := store.NewMemoryStore()
	out.PutError = errors.New("read-only file system")

	f := NewInfoFetcher(client, store.NewMemoryStore(), testRetry(&recordingSleeper{}), logger.NewTestLogger())
	f.SetOutput(out, "all.json")

	summary, err := f.Run(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all.json")
	assert.Equal(t, 1, summary.Count(StatusFetched))
}

func TestInfoFetcherRetriesTransportFaults(t *testing.T) {
	client := newFakeClient()
	client.info = func(call int, student string) (json.RawMessage, error) {
		return nil, networkErr()
	}
	sleeper := &recordingSleeper{}
	f := NewInfoFetcher(client, store.NewMemoryStore(), testRetry(sleeper), logger.NewTestLogger())

	summary, err := f.Run(context.Background(), []string{"a"})
	require.NoError(t, err)

	assert.Equal(t, 3, client.callsFor("a"))
	assert.Equal(t, errs.ErrorTypeNetwork, summary.Results[0].Reason)
	assert.Len(t, sleeper.delays, 2)
}

func TestInfoFetcherStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newFakeClient()
	f := NewInfoFetcher(client, store.NewMemoryStore(), testRetry(&recordingSleeper{}), logger.NewTestLogger())

	summary, err := f.Run(ctx, []string{"a"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, summary.Interrupted)
	assert.Zero(t, client.totalCalls())
}
