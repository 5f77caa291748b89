// Package client provides an HTTP client for the desk REST API.
package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bfcwefc/msme-desk/internal/expert"
	"github.com/bfcwefc/msme-desk/internal/record"
	"github.com/bfcwefc/msme-desk/internal/stats"
)

// Client is an HTTP client for the desk API.
type Client struct {
	http *resty.Client
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusNotFound
}

// New creates a new API client.
func New(baseURL string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

// ListRecords returns visit records matching the filter, newest first.
func (c *Client) ListRecords(f record.Filter) ([]*record.VisitRecord, error) {
	var recs []*record.VisitRecord
	if err := c.do(c.http.R().SetQueryParamsFromValues(f.Query()).SetResult(&recs), http.MethodGet, "/records"); err != nil {
		return nil, err
	}
	return recs, nil
}

// GetRecord returns one visit record.
func (c *Client) GetRecord(id string) (*record.VisitRecord, error) {
	var rec record.VisitRecord
	if err := c.do(c.http.R().SetResult(&rec), http.MethodGet, "/records/"+url.PathEscape(id)); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateRecord applies a partial update to a visit record.
func (c *Client) UpdateRecord(id string, p record.Patch) (*record.VisitRecord, error) {
	var rec record.VisitRecord
	req := c.http.R().SetHeader("Content-Type", "application/json").SetBody(p).SetResult(&rec)
	if err := c.do(req, http.MethodPut, "/records/"+url.PathEscape(id)); err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteRecord removes a visit record.
func (c *Client) DeleteRecord(id string) error {
	return c.do(c.http.R(), http.MethodDelete, "/records/"+url.PathEscape(id))
}

// Stats returns the global dashboard counts.
func (c *Client) Stats() (*stats.Global, error) {
	var g stats.Global
	if err := c.do(c.http.R().SetResult(&g), http.MethodGet, "/records/stats"); err != nil {
		return nil, err
	}
	return &g, nil
}

// ExpertStats returns the activity summary for an expert name.
func (c *Client) ExpertStats(name string) (*stats.Expert, error) {
	var e stats.Expert
	if err := c.do(c.http.R().SetResult(&e), http.MethodGet, "/records/expert-stats/"+url.PathEscape(name)); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListExperts returns all experts.
func (c *Client) ListExperts() ([]*expert.Expert, error) {
	var experts []*expert.Expert
	if err := c.do(c.http.R().SetResult(&experts), http.MethodGet, "/experts"); err != nil {
		return nil, err
	}
	return experts, nil
}

// GetExpert returns one expert with plans and minutes.
func (c *Client) GetExpert(id string) (*expert.Expert, error) {
	var e expert.Expert
	if err := c.do(c.http.R().SetResult(&e), http.MethodGet, "/experts/"+url.PathEscape(id)); err != nil {
		return nil, err
	}
	return &e, nil
}

// DeleteExpert removes an expert.
func (c *Client) DeleteExpert(id string) error {
	return c.do(c.http.R(), http.MethodDelete, "/experts/"+url.PathEscape(id))
}

// AddMonth appends an empty monthly plan to an expert.
func (c *Client) AddMonth(id, month string, year int) (*expert.Expert, error) {
	var e expert.Expert
	body := map[string]interface{}{"month": month, "year": year}
	req := c.http.R().SetHeader("Content-Type", "application/json").SetBody(body).SetResult(&e)
	if err := c.do(req, http.MethodPost, "/experts/"+url.PathEscape(id)+"/plans"); err != nil {
		return nil, err
	}
	return &e, nil
}

// SetCurrentMonth marks plan i as the expert's current plan.
func (c *Client) SetCurrentMonth(id string, i int) (*expert.Expert, error) {
	var e expert.Expert
	path := fmt.Sprintf("/experts/%s/plans/%d/current", url.PathEscape(id), i)
	if err := c.do(c.http.R().SetResult(&e), http.MethodPost, path); err != nil {
		return nil, err
	}
	return &e, nil
}

// ActiveWeek returns the expert's active week on day (YYYY-MM-DD, empty for today).
func (c *Client) ActiveWeek(id, day string) (*expert.ActiveWeek, error) {
	var aw expert.ActiveWeek
	req := c.http.R().SetResult(&aw)
	if day != "" {
		req.SetQueryParam("date", day)
	}
	if err := c.do(req, http.MethodGet, "/experts/"+url.PathEscape(id)+"/active-week"); err != nil {
		return nil, err
	}
	return &aw, nil
}

// Health checks that the server and its database are reachable.
func (c *Client) Health() error {
	return c.do(c.http.R(), http.MethodGet, "/health")
}

// do executes a request and turns error responses into APIError.
func (c *Client) do(req *resty.Request, method, path string) error {
	var errResp struct {
		Error string `json:"error"`
	}
	req.SetError(&errResp)

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if resp.IsError() {
		msg := errResp.Error
		if msg == "" {
			msg = "server error: " + strconv.Itoa(resp.StatusCode()) + " " + http.StatusText(resp.StatusCode())
		}
		return &APIError{Status: resp.StatusCode(), Message: msg}
	}
	return nil
}
