package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"sessionresults/domain/feedback"
	"sessionresults/internal"
)

// Backend endpoint paths, relative to the configured base URL
const (
	PathSession           = "/session"
	PathCourseSections    = "/course/sections"
	PathQuestions         = "/questions"
	PathStudents          = "/students"
	PathSubmittedGiverSet = "/session/submitted/giverset"
	PathResult            = "/result"
	PathSessionPublish    = "/session/publish"
)

// maxPlainErrorBody caps how much of a non-JSON error body becomes the user message
const maxPlainErrorBody = 200

// Client is the HTTP client of the feedback backend API
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	logger     *internal.Logger
}

// NewClient creates a backend client; httpClient may be nil
func NewClient(config *ClientConfig, httpClient *http.Client) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backend client configuration: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     internal.DefaultLogger.Named("Backend"),
	}, nil
}

// GetSession fetches session metadata
func (c *Client) GetSession(ctx context.Context, key feedback.SessionKey, intent feedback.Intent) (*feedback.Session, error) {
	var session feedback.Session
	if err := c.do(ctx, http.MethodGet, PathSession, key.WithIntent(intent), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSectionNames fetches the section names of a course
func (c *Client) GetSectionNames(ctx context.Context, courseID string) ([]string, error) {
	params := url.Values{}
	params.Set(feedback.ParamCourseID, courseID)

	var out feedback.SectionNames
	if err := c.do(ctx, http.MethodGet, PathCourseSections, params, &out); err != nil {
		return nil, err
	}
	return out.SectionNames, nil
}

// GetQuestions fetches the questions of a session
func (c *Client) GetQuestions(ctx context.Context, key feedback.SessionKey, intent feedback.Intent) ([]feedback.Question, error) {
	var out feedback.Questions
	if err := c.do(ctx, http.MethodGet, PathQuestions, key.WithIntent(intent), &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

// GetStudents fetches the course roster
func (c *Client) GetStudents(ctx context.Context, key feedback.SessionKey, intent feedback.Intent) ([]feedback.Student, error) {
	var out feedback.Students
	if err := c.do(ctx, http.MethodGet, PathStudents, key.WithIntent(intent), &out); err != nil {
		return nil, err
	}
	return out.Students, nil
}

// GetSubmittedGiverSet fetches the identifiers of everyone who submitted
func (c *Client) GetSubmittedGiverSet(ctx context.Context, key feedback.SessionKey, intent feedback.Intent) (*feedback.SubmittedGiverSet, error) {
	var out feedback.SubmittedGiverSet
	if err := c.do(ctx, http.MethodGet, PathSubmittedGiverSet, key.WithIntent(intent), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetResults fetches results scoped to a question or a section
func (c *Client) GetResults(ctx context.Context, query feedback.ResultQuery) (*feedback.SessionResults, error) {
	params, err := query.Params()
	if err != nil {
		return nil, err
	}

	var out feedback.SessionResults
	if err := c.do(ctx, http.MethodGet, PathResult, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PublishSession publishes the session results
func (c *Client) PublishSession(ctx context.Context, key feedback.SessionKey) error {
	return c.do(ctx, http.MethodPost, PathSessionPublish, key.Params(), nil)
}

// UnpublishSession unpublishes the session results
func (c *Client) UnpublishSession(ctx context.Context, key feedback.SessionKey) error {
	return c.do(ctx, http.MethodDelete, PathSessionPublish, key.Params(), nil)
}

// do issues one request and decodes a JSON body into out when out is non-nil
func (c *Client) do(ctx context.Context, method, path string, params url.Values, out interface{}) error {
	target := c.config.BaseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return &feedback.RequestError{Method: method, Path: path, Message: err.Error(), Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("%s %s failed after %v: %v", method, path, time.Since(start), err)
		return &feedback.RequestError{Method: method, Path: path, Message: err.Error(), Cause: err}
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return &feedback.RequestError{Method: method, Path: path, StatusCode: resp.StatusCode, Message: "failed to read response", Cause: err}
	}

	c.logger.Debug("%s %s -> %d in %v", method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &feedback.RequestError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body, resp.Status),
		}
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &feedback.RequestError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    "invalid response from server",
			Cause:      err,
		}
	}
	return nil
}

// errorMessage extracts the server-supplied message from an error body
func errorMessage(body []byte, status string) string {
	if gjson.ValidBytes(body) {
		if msg := gjson.GetBytes(body, "message"); msg.Exists() && msg.String() != "" {
			return msg.String()
		}
		if msg := gjson.GetBytes(body, "error.message"); msg.Exists() && msg.String() != "" {
			return msg.String()
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= maxPlainErrorBody && !gjson.ValidBytes(body) {
		return text
	}
	return status
}
