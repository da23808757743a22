package results

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"diuresults/pkg/config"
	errs "diuresults/pkg/errors"
	"diuresults/pkg/logger"
	"diuresults/pkg/models"
	"diuresults/pkg/ratelimit"
)

// Client talks to the result service
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	endpoints  Endpoints
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// NewClient creates a client from the api section of the configuration
func NewClient(cfg config.APIConfig, log logger.Logger) *Client {
	// Use default logger if none provided
	if log == nil {
		log = logger.GetLogger()
	}

	endpoints := DefaultEndpoints()
	if cfg.BaseURL != "" {
		endpoints.BaseURL = cfg.BaseURL
	}
	if cfg.ResultsPath != "" {
		endpoints.ResultsPath = cfg.ResultsPath
	}
	if cfg.StudentInfoPath != "" {
		endpoints.StudentInfoPath = cfg.StudentInfoPath
	}

	headers := map[string]string{
		"Accept": "application/json",
	}
	if cfg.UserAgent != "" {
		headers["User-Agent"] = cfg.UserAgent
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		headers:   headers,
		endpoints: endpoints,
		limiter:   ratelimit.New(cfg.RateLimit.Requests, cfg.RateLimit.Window),
		logger:    log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetHTTPClient replaces the underlying HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// SetLimiter replaces the request pacer
func (c *Client) SetLimiter(l ratelimit.Limiter) {
	c.limiter = l
}

// Endpoints returns the URLs the client requests
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// get performs one GET and returns the body of a 200 response
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("request cancelled: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeInvalid, err, "failed to create request")
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    url,
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctxErr)
		}
		c.logger.WarnWithFields("HTTP request failed", map[string]interface{}{
			"url":      url,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.Wrap(errs.ErrorTypeNetwork, err, "request failed")
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      url,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	if resp.StatusCode != http.StatusOK {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, errs.New(errs.ErrorTypeRejected, resp.StatusCode, "unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctxErr)
		}
		return nil, errs.Wrap(errs.ErrorTypeNetwork, err, "failed to read response body")
	}
	return body, nil
}

// FetchResults returns the course records of one student in one semester.
// An empty array, or null, yields an empty ResultSet and no error.
func (c *Client) FetchResults(ctx context.Context, semesterID, studentID string) (models.ResultSet, error) {
	body, err := c.get(ctx, c.endpoints.ResultsURL(semesterID, studentID))
	if err != nil {
		return nil, err
	}

	records, err := decodeObjectList(body)
	if err != nil {
		c.logger.ErrorWithFields("failed to parse result payload", map[string]interface{}{
			"semester":     semesterID,
			"student_id":   studentID,
			"error":        err.Error(),
			"body_preview": preview(body),
		})
		return nil, err
	}
	return records, nil
}

// FetchStudentInfo returns a student's profile as raw JSON. The service may
// answer with one object or a list of objects. Empty payloads ({}, [] or
// null) yield nil and no error.
func (c *Client) FetchStudentInfo(ctx context.Context, studentID string) (json.RawMessage, error) {
	body, err := c.get(ctx, c.endpoints.StudentInfoURL(studentID))
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	switch {
	case len(trimmed) > 0 && trimmed[0] == '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, c.malformed(studentID, body, err)
		}
		if len(obj) == 0 {
			return nil, nil
		}
		return json.RawMessage(trimmed), nil
	default:
		list, err := decodeObjectList(trimmed)
		if err != nil {
			return nil, c.malformed(studentID, body, err)
		}
		if len(list) == 0 {
			return nil, nil
		}
		return json.RawMessage(trimmed), nil
	}
}

func (c *Client) malformed(studentID string, body []byte, err error) error {
	c.logger.ErrorWithFields("failed to parse student info payload", map[string]interface{}{
		"student_id":   studentID,
		"error":        err.Error(),
		"body_preview": preview(body),
	})
	var typed *errs.Error
	if errors.As(err, &typed) {
		return err
	}
	return errs.Wrap(errs.ErrorTypeMalformed, err, "invalid JSON")
}

// decodeObjectList accepts a JSON array whose elements are all objects
func decodeObjectList(body []byte) (models.ResultSet, error) {
	trimmed := bytes.TrimSpace(body)
	if bytes.Equal(trimmed, []byte("null")) {
		return models.ResultSet{}, nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(trimmed, &list); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, errs.New(errs.ErrorTypeMalformed, http.StatusOK, "expected a JSON array, got %s", typeErr.Value)
		}
		return nil, errs.Wrap(errs.ErrorTypeMalformed, err, "invalid JSON")
	}

	records := make(models.ResultSet, 0, len(list))
	for i, item := range list {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			return nil, errs.New(errs.ErrorTypeMalformed, http.StatusOK, "element %d is not a JSON object", i)
		}
		records = append(records, item)
	}
	return records, nil
}

// preview truncates a body for logging
func preview(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
