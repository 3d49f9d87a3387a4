package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Elagoht/passenger-reborn/pkg/api"
)

// StatusError is returned when the server answers with a non-2xx status.
// The message is taken from the server's error body when it parses.
type StatusError struct {
	Message    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// Client is the HTTP client for the vault server.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Carry the bearer token across redirects.
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// BaseURL returns the server address this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Status reports whether the vault has been initialized. It is the only
// call that works without a token.
func (c *Client) Status(ctx context.Context) (*api.AuthStatusResponse, error) {
	var resp api.AuthStatusResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/auth/status", "", nil, &resp); err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	return &resp, nil
}

// Initialize sets up a fresh vault with a master passphrase and recovery key.
func (c *Client) Initialize(ctx context.Context, req api.InitializeRequest) error {
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/initialize", "", req, nil); err != nil {
		return fmt.Errorf("initialize request failed: %w", err)
	}
	return nil
}

// Login exchanges the master passphrase for a session token.
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", "", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Reset replaces a forgotten master passphrase using the recovery key.
func (c *Client) Reset(ctx context.Context, req api.ResetRequest) error {
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/reset", "", req, nil); err != nil {
		return fmt.Errorf("reset request failed: %w", err)
	}
	return nil
}

func (c *Client) ListCredentials(ctx context.Context, token string) ([]api.CredentialResponse, error) {
	var resp []api.CredentialResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/credentials", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("list credentials request failed: %w", err)
	}
	return resp, nil
}

func (c *Client) GetCredential(ctx context.Context, token, id string) (*api.CredentialResponse, error) {
	var resp api.CredentialResponse
	path := "/api/v1/credentials/" + id
	if err := c.doRequest(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, fmt.Errorf("get credential request failed: %w", err)
	}
	return &resp, nil
}

// RevealPassphrase fetches the decrypted secret of a credential. The
// server counts the call as a clipboard copy.
func (c *Client) RevealPassphrase(ctx context.Context, token, id string) (*api.PassphraseResponse, error) {
	var resp api.PassphraseResponse
	path := "/api/v1/credentials/" + id + "/passphrase"
	if err := c.doRequest(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, fmt.Errorf("reveal passphrase request failed: %w", err)
	}
	return &resp, nil
}

func (c *Client) StrengthGraph(ctx context.Context, token string) ([]api.GraphPointResponse, error) {
	var resp []api.GraphPointResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/stats/strength-graph", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("strength graph request failed: %w", err)
	}
	return resp, nil
}

func (c *Client) Count(ctx context.Context, token string) (*api.CountResponse, error) {
	var resp api.CountResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/stats/count", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("count request failed: %w", err)
	}
	return &resp, nil
}

// GeneratePassphrase asks the server for a fresh random passphrase.
func (c *Client) GeneratePassphrase(ctx context.Context, token string, length int) (*api.GeneratedResponse, error) {
	var resp api.GeneratedResponse
	path := fmt.Sprintf("/api/v1/generate?length=%d", length)
	if err := c.doRequest(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, fmt.Errorf("generate request failed: %w", err)
	}
	return &resp, nil
}

// GenerateAlternative asks the server for a look-alike variant of input.
func (c *Client) GenerateAlternative(ctx context.Context, token, input string) (*api.GeneratedResponse, error) {
	var resp api.GeneratedResponse
	req := api.AlternativeRequest{Input: input}
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/generate/alternative", token, req, &resp); err != nil {
		return nil, fmt.Errorf("generate alternative request failed: %w", err)
	}
	return &resp, nil
}

// AvailableWordlists lists the wordlists that are ready to be analyzed
// against.
func (c *Client) AvailableWordlists(ctx context.Context, token string) ([]api.WordlistResponse, error) {
	var resp []api.WordlistResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/analyses/wordlists", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("available wordlists request failed: %w", err)
	}
	return resp, nil
}

// InitializeAnalysis starts a detached brute-force run against a wordlist.
func (c *Client) InitializeAnalysis(ctx context.Context, token, wordlistID string) (*api.InitializeAnalysisResponse, error) {
	var resp api.InitializeAnalysisResponse
	req := api.InitializeAnalysisRequest{WordlistID: wordlistID}
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/analyses", token, req, &resp); err != nil {
		return nil, fmt.Errorf("initialize analysis request failed: %w", err)
	}
	return &resp, nil
}

func (c *Client) ListAnalyses(ctx context.Context, token string) ([]api.AnalysisResponse, error) {
	var resp []api.AnalysisResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/analyses", token, nil, &resp); err != nil {
		return nil, fmt.Errorf("list analyses request failed: %w", err)
	}
	return resp, nil
}

// ObserveAnalysis fetches a polling snapshot of a run: its logs, parsed
// progress counters and whether it is still active.
func (c *Client) ObserveAnalysis(ctx context.Context, token, id string) (*api.ObserveResponse, error) {
	var resp api.ObserveResponse
	path := "/api/v1/analyses/" + id + "/observe"
	if err := c.doRequest(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, fmt.Errorf("observe analysis request failed: %w", err)
	}
	return &resp, nil
}

// AnalysisReport fetches a finished analysis with its matched credentials.
func (c *Client) AnalysisReport(ctx context.Context, token, id string) (*api.AnalysisReportResponse, error) {
	var resp api.AnalysisReportResponse
	path := "/api/v1/analyses/" + id
	if err := c.doRequest(ctx, http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, fmt.Errorf("analysis report request failed: %w", err)
	}
	return &resp, nil
}

func (c *Client) StopAnalysis(ctx context.Context, token, id string) error {
	path := "/api/v1/analyses/" + id + "/stop"
	if err := c.doRequest(ctx, http.MethodPost, path, token, nil, nil); err != nil {
		return fmt.Errorf("stop analysis request failed: %w", err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, method, path, token string, body, result interface{}) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return &StatusError{StatusCode: resp.StatusCode, Message: errResp.Message}
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
