package pipeline

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	errs "diuresults/pkg/errors"
	"diuresults/pkg/models"
	"diuresults/pkg/retry"
)

// fakeClient answers from a handler and counts calls per key
type fakeClient struct {
	mu      sync.Mutex
	calls   map[string]int
	results func(call int, semester, student string) (models.ResultSet, error)
	info    func(call int, student string) (json.RawMessage, error)
}

func newFakeClient() *fakeClient {
	return &fakeClient{calls: make(map[string]int)}
}

func (c *fakeClient) FetchResults(ctx context.Context, semester, student string) (models.ResultSet, error) {
	c.mu.Lock()
	key := semester + "/" + student
	c.calls[key]++
	call := c.calls[key]
	c.mu.Unlock()
	return c.results(call, semester, student)
}

func (c *fakeClient) FetchStudentInfo(ctx context.Context, student string) (json.RawMessage, error) {
	c.mu.Lock()
	c.calls[student]++
	call := c.calls[student]
	c.mu.Unlock()
	return c.info(call, student)
}

func (c *fakeClient) callsFor(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[key]
}

func (c *fakeClient) totalCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, n := range c.calls {
		total += n
	}
	return total
}

// recordingSleeper captures requested delays instead of sleeping
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

func testRetry(sleeper *recordingSleeper) *retry.Config {
	return &retry.Config{
		MaxAttempts: 3,
		Backoff:     &retry.ConstantBackoff{Delay: 3 * time.Second},
		Sleep:       sleeper.sleep,
	}
}

// recordingProgress captures progress callbacks
type recordingProgress struct {
	total    int
	labels   []string
	statuses []string
	finished bool
}

func (p *recordingProgress) Start(total int) { p.total = total }

func (p *recordingProgress) Advance(label, status string) {
	p.labels = append(p.labels, label)
	p.statuses = append(p.statuses, status)
}

func (p *recordingProgress) Finish() { p.finished = true }

func records(raw ...string) models.ResultSet {
	set := make(models.ResultSet, 0, len(raw))
	for _, r := range raw {
		set = append(set, json.RawMessage(r))
	}
	return set
}

func networkErr() error {
	return errs.New(errs.ErrorTypeNetwork, 0, "connection reset by peer")
}
