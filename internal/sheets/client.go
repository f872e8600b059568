// Package sheets is the Google Sheets collaborator: it reads the month tabs
// and reads/writes the billing-cycle ledger over the Sheets REST v4 API.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2/google"

	"github.com/friskawellness/billing-service/internal/config"
)

const defaultBaseURL = "https://sheets.googleapis.com"

var scopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive.readonly",
}

var readOnlyScopes = []string{
	"https://www.googleapis.com/auth/spreadsheets.readonly",
	"https://www.googleapis.com/auth/drive.readonly",
}

var (
	// ErrPermissionDenied means the service account cannot see the sheet;
	// the operator has to share the document with it.
	ErrPermissionDenied = errors.New("sheets: permission denied; share the spreadsheet with the service account")
	// ErrTabNotFound means no tab matched the requested lookup.
	ErrTabNotFound = errors.New("sheets: tab not found")
)

// StatusError is returned for any non-2xx response that is not a permission
// failure.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sheets: unexpected status %d: %s", e.StatusCode, e.Body)
}

// MetricsRecorder receives one observation per API round trip. A transport
// failure is reported as status 0.
type MetricsRecorder interface {
	RecordSheetsRequest(operation string, status int, duration time.Duration)
}

// Options configure the client. HTTPClient overrides the authenticated
// client (used by tests against a fake backend).
type Options struct {
	Config     config.SheetsConfig
	BaseURL    string
	HTTPClient *http.Client
	Metrics    MetricsRecorder
}

// Client talks to one spreadsheet.
type Client struct {
	http          *http.Client
	baseURL       string
	spreadsheetID string
	metrics       MetricsRecorder
}

// New builds a client with a service-account token source. Credentials come
// from the inline JSON or the file path in the config.
func New(ctx context.Context, opts Options) (*Client, error) {
	cfg := opts.Config
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("sheets: spreadsheet id required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		creds := []byte(cfg.CredentialsJSON)
		if len(bytes.TrimSpace(creds)) == 0 {
			if cfg.CredentialsFile == "" {
				return nil, errors.New("sheets: service account credentials required")
			}
			fileCreds, err := os.ReadFile(cfg.CredentialsFile)
			if err != nil {
				return nil, fmt.Errorf("sheets: read credentials file: %w", err)
			}
			creds = fileCreds
		}
		scopeSet := scopes
		if cfg.ReadOnly {
			scopeSet = readOnlyScopes
		}
		jwtCfg, err := google.JWTConfigFromJSON(creds, scopeSet...)
		if err != nil {
			return nil, fmt.Errorf("sheets: parse credentials: %w", err)
		}
		httpClient = jwtCfg.Client(ctx)
		httpClient.Timeout = cfg.HTTPTimeout
	}
	if httpClient.Timeout == 0 {
		httpClient.Timeout = 30 * time.Second
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		http:          httpClient,
		baseURL:       strings.TrimRight(baseURL, "/"),
		spreadsheetID: cfg.SpreadsheetID,
		metrics:       opts.Metrics,
	}, nil
}

type valueRange struct {
	Range  string  `json:"range,omitempty"`
	Values [][]any `json:"values"`
}

type spreadsheetMeta struct {
	Sheets []struct {
		Properties struct {
			Title string `json:"title"`
		} `json:"properties"`
	} `json:"sheets"`
}

// FetchValues reads a range with unformatted values: numbers stay numbers,
// dates stay serials.
func (c *Client) FetchValues(ctx context.Context, a1Range string) ([][]any, error) {
	u := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s?valueRenderOption=UNFORMATTED_VALUE",
		c.baseURL, c.spreadsheetID, url.PathEscape(a1Range))
	var vr valueRange
	if err := c.do(ctx, "values.get", http.MethodGet, u, nil, &vr); err != nil {
		return nil, err
	}
	return vr.Values, nil
}

// TabTitles lists the spreadsheet's tab names in document order.
func (c *Client) TabTitles(ctx context.Context) ([]string, error) {
	u := fmt.Sprintf("%s/v4/spreadsheets/%s?fields=sheets.properties.title", c.baseURL, c.spreadsheetID)
	var meta spreadsheetMeta
	if err := c.do(ctx, "metadata", http.MethodGet, u, nil, &meta); err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(meta.Sheets))
	for _, sh := range meta.Sheets {
		titles = append(titles, sh.Properties.Title)
	}
	return titles, nil
}

// FindClientListTab locates the month's data tab: exact match on
// "clientlist <month>" first, then the three-letter abbreviation, then any
// tab whose name starts with "clientlist ". All matching is
// case-insensitive. Returns ErrTabNotFound when nothing fits.
func (c *Client) FindClientListTab(ctx context.Context, month time.Month) (string, error) {
	titles, err := c.TabTitles(ctx)
	if err != nil {
		return "", err
	}
	full := strings.ToLower("clientlist " + month.String())
	abbr := strings.ToLower("clientlist " + month.String()[:3])
	for _, t := range titles {
		tl := strings.ToLower(strings.TrimSpace(t))
		if tl == full || tl == abbr {
			return t, nil
		}
	}
	for _, t := range titles {
		if strings.HasPrefix(strings.ToLower(t), "clientlist ") {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: no clientlist tab for %s", ErrTabNotFound, month)
}

// AppendRow appends one row under the tab's A:C range.
func (c *Client) AppendRow(ctx context.Context, tab string, values []any) error {
	u := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s:append?valueInputOption=RAW&insertDataOption=INSERT_ROWS",
		c.baseURL, c.spreadsheetID, url.PathEscape(tab+"!A:C"))
	body := valueRange{Values: [][]any{values}}
	return c.do(ctx, "values.append", http.MethodPost, u, body, nil)
}

// UpdateRow overwrites columns A:C of one specific row (1-based sheet row).
func (c *Client) UpdateRow(ctx context.Context, tab string, row int, values []any) error {
	if row < 1 {
		return fmt.Errorf("sheets: invalid row %d", row)
	}
	rng := fmt.Sprintf("%s!A%d:C%d", tab, row, row)
	u := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s?valueInputOption=RAW",
		c.baseURL, c.spreadsheetID, url.PathEscape(rng))
	body := valueRange{Values: [][]any{values}}
	return c.do(ctx, "values.update", http.MethodPut, u, body, nil)
}

func (c *Client) do(ctx context.Context, operation, method, u string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("sheets: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("sheets: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.record(operation, 0, start)
		return fmt.Errorf("sheets: %w", err)
	}
	defer resp.Body.Close()
	c.record(operation, resp.StatusCode, start)

	if resp.StatusCode == http.StatusForbidden {
		return ErrPermissionDenied
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("sheets: decode response: %w", err)
	}
	return nil
}

func (c *Client) record(operation string, status int, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordSheetsRequest(operation, status, time.Since(start))
}
