// Package servicenow fetches incident records from a ServiceNow instance
// using the OAuth password grant.
package servicenow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/cloo-solutions/snowbot/internal/domain"
)

const (
	tokenPath    = "/oauth_token.do"
	incidentPath = "/api/now/table/incident"

	defaultTimeout = 30 * time.Second
)

// Config holds the credentials and instance for a ServiceNow client.
type Config struct {
	Instance     string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	// BaseURL overrides the instance-derived base URL. Used by tests to
	// point the client at a fake server.
	BaseURL string
	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client
}

// Client talks to the ServiceNow token and incident endpoints. A single
// attempt per call; retry policy is a caller concern.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	username     string
	password     string
	httpClient   *http.Client
}

// NewClient creates a ServiceNow client from the given configuration.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.service-now.com", cfg.Instance)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		username:     cfg.Username,
		password:     cfg.Password,
		httpClient:   httpClient,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Authenticate performs the password-grant token exchange and returns the
// access token.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type":    {"password"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"username":      {c.username},
		"password":      {c.password},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange failed: %w", domain.NewDomainErrorWithCause(domain.ErrCodeAuthentication, "token exchange failed", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("token endpoint returned %d: %w", resp.StatusCode, domain.ErrAuthenticationFailed)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", domain.ErrAuthenticationFailed)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token: %w", domain.ErrAuthenticationFailed)
	}

	return tr.AccessToken, nil
}

type incidentResponse struct {
	Result []map[string]json.RawMessage `json:"result"`
}

// FetchIncidents performs a single authenticated read of the incident
// collection.
func (c *Client) FetchIncidents(ctx context.Context, token string) ([]domain.IncidentRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+incidentPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build incident request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("incident fetch failed: %w", domain.NewDomainErrorWithCause(domain.ErrCodeUpstreamAPI, "incident fetch failed", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("incident endpoint returned %d: %w", resp.StatusCode, domain.ErrUpstreamAPI)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read incident response: %w", domain.ErrUpstreamAPI)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode incident response: %w", domain.ErrMalformedPayload)
	}
	if _, ok := raw["result"]; !ok {
		return nil, fmt.Errorf("incident response missing result field: %w", domain.ErrMalformedPayload)
	}

	var ir incidentResponse
	if err := json.Unmarshal(body, &ir); err != nil {
		return nil, fmt.Errorf("failed to decode incident list: %w", domain.ErrMalformedPayload)
	}

	records := make([]domain.IncidentRecord, 0, len(ir.Result))
	for _, obj := range ir.Result {
		records = append(records, recordFromObject(obj))
	}
	return records, nil
}

// Export authenticates and fetches the full incident collection in one call.
func (c *Client) Export(ctx context.Context) ([]domain.IncidentRecord, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}
	return c.FetchIncidents(ctx, token)
}

// recordFromObject flattens one incident object into a record. Field order is
// the sorted key set so repeated fetches of the same data render identically.
func recordFromObject(obj map[string]json.RawMessage) domain.IncidentRecord {
	fields := make([]string, 0, len(obj))
	for k := range obj {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	values := make(map[string]string, len(fields))
	for _, f := range fields {
		values[f] = stringifyValue(obj[f])
	}
	return domain.NewIncidentRecord(fields, values)
}

// stringifyValue renders a JSON value as a string. Plain strings are
// unquoted; reference fields and other structures keep their compact JSON
// form verbatim.
func stringifyValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
