package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kurihiro0119/github-repo-sync/internal/domain"
)

// Client is the API client for the repo-sync run history server
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetRuns retrieves the most recent runs, newest first
func (c *Client) GetRuns(limit int) ([]*domain.RunReport, error) {
	var response struct {
		Data []*domain.RunReport `json:"data"`
	}
	if err := c.get("/api/v1/runs", limitParams(limit), &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetRun retrieves a single run
func (c *Client) GetRun(id string) (*domain.RunReport, error) {
	path := fmt.Sprintf("/api/v1/runs/%s", url.PathEscape(id))

	var response struct {
		Data *domain.RunReport `json:"data"`
	}
	if err := c.get(path, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetRepoHistory retrieves the recorded outcomes of one repository
func (c *Client) GetRepoHistory(repo string, limit int) ([]*domain.RepoHistoryEntry, error) {
	path := fmt.Sprintf("/api/v1/repos/%s/history", url.PathEscape(repo))

	var response struct {
		Data []*domain.RepoHistoryEntry `json:"data"`
	}
	if err := c.get(path, limitParams(limit), &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// HealthCheck checks if the API is healthy
func (c *Client) HealthCheck() error {
	var response struct {
		Status string `json:"status"`
	}
	if err := c.get("/health", nil, &response); err != nil {
		return err
	}
	if response.Status != "ok" {
		return fmt.Errorf("unhealthy status: %s", response.Status)
	}
	return nil
}

func limitParams(limit int) url.Values {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	return params
}

func (c *Client) get(path string, params url.Values, result interface{}) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return err
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	resp, err := c.httpClient.Get(u.String())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: %s - %s", resp.Status, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(result)
}
