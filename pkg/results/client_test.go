package results

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"diuresults/pkg/config"
	errs "diuresults/pkg/errors"
	"diuresults/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *logger.TestLogger) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig().API
	cfg.BaseURL = server.URL
	cfg.Timeout = 5 * time.Second

	log := logger.NewTestLogger()
	return NewClient(cfg, log), log
}

func TestFetchResultsSuccess(t *testing.T) {
	var gotQuery, gotUA string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/result", r.URL.Path)
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`[{"customCourseId":"CSE101","pointEquivalent":3.5,"courseTitle":"Intro"},{"customCourseId":"CSE102"}]`))
	})

	records, err := client.FetchResults(context.Background(), "241", "202-35-652")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.JSONEq(t, `{"customCourseId":"CSE101","pointEquivalent":3.5,"courseTitle":"Intro"}`, string(records[0]))
	assert.Equal(t, "semesterId=241&studentId=202-35-652", gotQuery)
	assert.Equal(t, "diuresults/1.0", gotUA)
}

func TestFetchResultsEmpty(t *testing.T) {
	for _, body := range []string{`[]`, ` [ ] `, `null`} {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		})

		records, err := client.FetchResults(context.Background(), "241", "202-35-652")
		require.NoError(t, err, body)
		assert.Empty(t, records, body)
	}
}

func TestFetchResultsRejected(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("oops"))
	})

	_, err := client.FetchResults(context.Background(), "241", "202-35-652")
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeRejected, errs.TypeOf(err))
	assert.Equal(t, http.StatusInternalServerError, errs.CodeOf(err))
	assert.False(t, errs.IsRetryable(errs.TypeOf(err)))
}

func TestFetchResultsMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `[{"a":`},
		{"object", `{"error":"nope"}`},
		{"list of numbers", `[1,2,3]`},
		{"mixed list", `[{"a":1},"b"]`},
		{"html", `<html></html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, log := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			_, err := client.FetchResults(context.Background(), "241", "202-35-652")
			require.Error(t, err)
			assert.Equal(t, errs.ErrorTypeMalformed, errs.TypeOf(err))
			assert.True(t, log.HasMessage("failed to parse result payload"))
		})
	}
}

func TestFetchResultsNetworkError(t *testing.T) {
	// grab a free port and close it so the dial is refused
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	cfg := config.DefaultConfig().API
	cfg.BaseURL = "http://" + addr
	client := NewClient(cfg, logger.NewTestLogger())

	_, err = client.FetchResults(context.Background(), "241", "202-35-652")
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeNetwork, errs.TypeOf(err))
	assert.True(t, errs.IsRetryable(errs.TypeOf(err)))
}

func TestFetchResultsTimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	client.SetHTTPClient(&http.Client{Timeout: 50 * time.Millisecond})

	_, err := client.FetchResults(context.Background(), "241", "202-35-652")
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeNetwork, errs.TypeOf(err))
}

func TestFetchResultsCancelled(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchResults(ctx, "241", "202-35-652")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, errs.ErrorTypeUnknown, errs.TypeOf(err))
}

func TestFetchStudentInfo(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr errs.ErrorType
	}{
		{"object", `{"studentId":"212-35-720","studentName":"A"}`, `{"studentId":"212-35-720","studentName":"A"}`, ""},
		{"list", `[{"studentId":"212-35-720"}]`, `[{"studentId":"212-35-720"}]`, ""},
		{"empty object", `{}`, "", ""},
		{"empty list", `[]`, "", ""},
		{"null", `null`, "", ""},
		{"string", `"nope"`, "", errs.ErrorTypeMalformed},
		{"broken", `{"a":`, "", errs.ErrorTypeMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/result/studentInfo", r.URL.Path)
				assert.Equal(t, "212-35-720", r.URL.Query().Get("studentId"))
				w.Write([]byte(tt.body))
			})

			info, err := client.FetchStudentInfo(context.Background(), "212-35-720")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, errs.TypeOf(err))
				return
			}
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, info)
				return
			}
			assert.JSONEq(t, tt.want, string(info))
		})
	}
}

func TestClientUsesLimiter(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	client.SetLimiter(&denyLimiter{})

	_, err := client.FetchResults(context.Background(), "241", "202-35-652")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// denyLimiter refuses every request
type denyLimiter struct{}

func (denyLimiter) Allow() bool                    { return false }
func (denyLimiter) Wait(ctx context.Context) error { return context.DeadlineExceeded }
func (denyLimiter) Reset()                         {}
