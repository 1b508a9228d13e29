// Package labii is a small client for the Labii REST API.
// It covers the calls a migration needs: API-key login, file upload, record
// creation, record listing and section modification. Calls are not retried.
package labii

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

	"github.com/gaurav-prasanna/labmigrate/core"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "labmigrate/1.0 (https://github.com/gaurav-prasanna/labmigrate)"

	// DefaultBaseURL is the public Labii deployment.
	DefaultBaseURL = "https://www.labii.dev"
)

// Client talks to one Labii organization.
type Client struct {
	baseURL      string
	organization string
	token        string
	client       *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithToken sets an already issued session token, skipping Login.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a Client for organizationSID at baseURL.
func New(baseURL, organizationSID string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		organization: organizationSID,
		client:       &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type loginRequest struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges an API key pair for a session token used by later calls.
func (c *Client) Login(ctx context.Context, apiKey, apiSecret string) error {
	var resp loginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/accounts/apikey/login/", nil, loginRequest{APIKey: apiKey, APISecret: apiSecret}, &resp); err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	if resp.Token == "" {
		return fmt.Errorf("logging in: response carries no token")
	}
	c.token = resp.Token
	return nil
}

// CreateRecord creates a record in tableSID.
func (c *Client) CreateRecord(ctx context.Context, tableSID string, req core.EntryRequest) (core.RecordRef, error) {
	var ref core.RecordRef
	query := url.Values{"table__sid": {tableSID}}
	if err := c.doJSON(ctx, http.MethodPost, c.orgPath("records", "create"), query, req, &ref); err != nil {
		return core.RecordRef{}, fmt.Errorf("creating record %q: %w", req.Name, err)
	}
	return ref, nil
}

type recordPage struct {
	Count   int           `json:"count"`
	Next    string        `json:"next"`
	Results []core.Record `json:"results"`
}

// ListRecords returns the detailed records of tableSID. Only the first page
// is fetched unless allPages is set.
func (c *Client) ListRecords(ctx context.Context, tableSID string, allPages bool) ([]core.Record, error) {
	var records []core.Record
	for page := 1; ; page++ {
		query := url.Values{
			"table__sid": {tableSID},
			"serializer": {"detail"},
			"page":       {fmt.Sprint(page)},
		}
		var resp recordPage
		if err := c.doJSON(ctx, http.MethodGet, c.orgPath("records", "list"), query, nil, &resp); err != nil {
			return nil, fmt.Errorf("listing records of %s (page %d): %w", tableSID, page, err)
		}
		records = append(records, resp.Results...)
		if !allPages || resp.Next == "" || len(resp.Results) == 0 {
			return records, nil
		}
	}
}

// ModifySection replaces the data of a record section.
func (c *Client) ModifySection(ctx context.Context, sectionSID string, data core.SectionData) error {
	path := c.orgPath("sections", "modify") + url.PathEscape(sectionSID) + "/"
	if err := c.doJSON(ctx, http.MethodPatch, path, nil, data, nil); err != nil {
		return fmt.Errorf("modifying section %s: %w", sectionSID, err)
	}
	return nil
}

// orgPath builds /tables/<model>/<action>/organization/<org>/.
func (c *Client) orgPath(model, action string) string {
	return "/tables/" + model + "/" + action + "/organization/" + url.PathEscape(c.organization) + "/"
}

// doJSON sends an optional JSON body and decodes a JSON response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Method:     req.Method,
			Path:       req.URL.Path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
